package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// Binding exposes the units taking part in one scripted effect. Unit ids
// are the only handles scripts see.
type Binding interface {
	// Damage deals amount damage to uid and returns the damage applied.
	Damage(uid string, amount float64) float64
	// Heal restores health to uid and returns the amount restored.
	Heal(uid string, amount float64) float64
	// Mana restores (or with a negative amount drains) mana on uid.
	Mana(uid string, amount float64) float64
	// Stat returns the current value and capacity of a stat on uid.
	Stat(uid, name string) (current, capacity float64, ok bool)
	// Level returns the level of uid, 0 if unknown.
	Level(uid string) int
	// Dodge rolls uid's dodge chance.
	Dodge(uid string) bool
	// Critical rolls uid's critical chance.
	Critical(uid string) bool
}

// Manager owns the sandboxed VM that holds every ability script.
//
// Manager is safe for concurrent use; calls are serialised.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	binding   Binding
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: roller and logger must be non-nil; instLimit <= 0 selects
// DefaultInstructionLimit.
// Postcondition: Returns a Manager whose engine.* module is registered.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	m := &Manager{
		L:         NewSandboxedState(),
		instLimit: instLimit,
		roller:    roller,
		logger:    logger,
	}
	m.registerModules()
	return m
}

// Load executes every *.lua file directly under dir of fsys in lexicographic
// order. A missing directory is not an error.
//
// Postcondition: Returns an error on the first script that fails to load.
func (m *Manager) Load(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", file, err)
		}
		release := budget(m.L, m.instLimit)
		err = m.L.DoString(string(src))
		release()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", file, err)
		}
	}
	return nil
}

// LoadString executes src in the VM.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	release := budget(m.L, m.instLimit)
	defer release()
	if err := m.L.DoString(src); err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallEffect calls hook(caster, target, relationship) with b bound to the
// engine module for the duration of the call. A hook returning false
// reports a miss; any other return value, including nil, reports a hit.
// Runtime errors, including an exhausted instruction budget, are logged at
// Warn and reported as a miss.
func (m *Manager) CallEffect(hook string, b Binding, caster, target, rel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		m.logger.Warn("scripting: hook not defined", zap.String("hook", hook))
		return false
	}

	m.binding = b
	defer func() { m.binding = nil }()
	release := budget(m.L, m.instLimit)
	defer release()

	err := m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(caster), lua.LString(target), lua.LString(rel))
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return false
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret != lua.LFalse
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}
