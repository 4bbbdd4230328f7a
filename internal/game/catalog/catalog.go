// Package catalog loads declarative ability definitions and compiles their
// effect lists into combat.Affect functions.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/scripting"
)

// AbilityFile is the on-disk form of one ability.
type AbilityFile struct {
	InternalName string        `yaml:"internal_name"`
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	ManaCost     float64       `yaml:"mana_cost"`
	Targets      string        `yaml:"targets"`
	Affects      string        `yaml:"affects"`
	Range        string        `yaml:"range"`
	MaxTargets   int           `yaml:"max_targets"`
	Recharge     time.Duration `yaml:"recharge"`
	Effects      []Effect      `yaml:"effects"`
}

// Catalog holds every compiled ability definition by internal name.
type Catalog struct {
	defs    map[string]*combat.Definition
	order   []string
	scripts *scripting.Manager
}

// New returns an empty Catalog. scripts may be nil when no ability uses a
// script effect.
func New(scripts *scripting.Manager) *Catalog {
	return &Catalog{defs: make(map[string]*combat.Definition), scripts: scripts}
}

// Load reads every YAML file under dir of fsys into a new Catalog.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns a Catalog or the first invalid file's error.
func Load(fsys fs.FS, dir string, scripts *scripting.Manager) (*Catalog, error) {
	files, err := content.YAMLFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	c := New(scripts)
	for _, path := range files {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var f AbilityFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing ability file %s: %w", path, err)
		}
		if err := c.Add(f); err != nil {
			return nil, fmt.Errorf("ability file %s: %w", path, err)
		}
	}
	return c, nil
}

// Add compiles f and registers it.
//
// Postcondition: Returns an error if f is invalid or its internal name is
// already registered.
func (c *Catalog) Add(f AbilityFile) error {
	def, err := c.compile(f)
	if err != nil {
		return err
	}
	if _, dup := c.defs[def.InternalName]; dup {
		return fmt.Errorf("duplicate ability %q", def.InternalName)
	}
	c.defs[def.InternalName] = def
	c.order = append(c.order, def.InternalName)
	return nil
}

// Definition returns the definition with internal name.
func (c *Catalog) Definition(name string) (*combat.Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Names returns every internal name in load order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Teach makes u learn every named ability in order.
//
// Postcondition: Returns an error naming the first unknown ability; the
// abilities before it are learned.
func (c *Catalog) Teach(u *combat.Unit, names []string) error {
	for _, name := range names {
		def, ok := c.defs[name]
		if !ok {
			return fmt.Errorf("catalog: unknown ability %q", name)
		}
		u.Abilities.Learn(def)
	}
	return nil
}

func (c *Catalog) compile(f AbilityFile) (*combat.Definition, error) {
	var errs []error
	if f.InternalName == "" {
		errs = append(errs, errors.New("internal_name must not be empty"))
	}
	if f.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if f.ManaCost < 0 {
		errs = append(errs, errors.New("mana_cost must be >= 0"))
	}
	if f.Recharge < 0 {
		errs = append(errs, errors.New("recharge must be >= 0"))
	}
	targets, err := combat.ParsePolicy(f.Targets)
	if err != nil {
		errs = append(errs, fmt.Errorf("targets: %w", err))
	}
	affects := targets
	if f.Affects != "" {
		if affects, err = combat.ParsePolicy(f.Affects); err != nil {
			errs = append(errs, fmt.Errorf("affects: %w", err))
		}
	}
	rng := combat.RangeSelf
	if f.Range != "" {
		if rng, err = combat.ParseRange(f.Range); err != nil {
			errs = append(errs, fmt.Errorf("range: %w", err))
		}
	}
	if len(f.Effects) == 0 {
		errs = append(errs, errors.New("effects must not be empty"))
	}
	for i := range f.Effects {
		if err := c.validateEffect(&f.Effects[i]); err != nil {
			errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	maxTargets := f.MaxTargets
	if maxTargets < 1 {
		maxTargets = 1
	}
	return &combat.Definition{
		InternalName: f.InternalName,
		Name:         f.Name,
		Description:  f.Description,
		ManaCost:     f.ManaCost,
		Targets:      targets,
		Affects:      affects,
		Range:        rng,
		MaxTargets:   maxTargets,
		Recharge:     f.Recharge,
		Affect:       c.affect(f.InternalName, f.Effects),
	}, nil
}
