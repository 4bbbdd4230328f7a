package command

import (
	"fmt"
	"sort"
)

// Registry resolves slash-command names and aliases.
type Registry struct {
	index  map[string]*Command // name or alias → command
	sorted []*Command
}

// NewRegistry creates a Registry populated with cmds.
//
// Precondition: No two commands may share a name or alias, and every
// command must name a Handler.
// Postcondition: Returns a Registry or an error describing the first clash.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{index: make(map[string]*Command, len(cmds))}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Handler == "" {
			return nil, fmt.Errorf("command %q has no handler", cmd.Name)
		}
		for _, key := range append([]string{cmd.Name}, cmd.Aliases...) {
			if prev, taken := r.index[key]; taken {
				return nil, fmt.Errorf("%q of command %q is already used by %q", key, cmd.Name, prev.Name)
			}
			r.index[key] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias. Names are matched as given;
// Parse has already lowercased them.
func (r *Registry) Resolve(name string) (*Command, bool) {
	cmd, ok := r.index[name]
	return cmd, ok
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// Available returns the commands role may run, sorted by name.
func (r *Registry) Available(role string) []*Command {
	var result []*Command
	for _, cmd := range r.sorted {
		if cmd.Allows(role) {
			result = append(result, cmd)
		}
	}
	return result
}
