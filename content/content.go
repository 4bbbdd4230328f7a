// Package content embeds the default game data: archetypes, abilities, NPC
// templates, map layouts and ability scripts.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed archetypes abilities npcs maps scripts
var embedded embed.FS

// Default returns the embedded content tree.
func Default() fs.FS { return embedded }

// Open returns the content tree rooted at dir, or the embedded tree when dir
// is empty.
func Open(dir string) fs.FS {
	if dir == "" {
		return embedded
	}
	return os.DirFS(dir)
}

// YAMLFiles returns the .yaml and .yml files directly under dir, sorted.
//
// Postcondition: Returns an error only if dir cannot be read.
func YAMLFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, path.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
