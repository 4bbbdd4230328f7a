package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

const (
	// DefaultRespawnDelay is how long a dead player waits before respawning.
	DefaultRespawnDelay = 10 * time.Second
	// DefaultPopulationLimit applies to maps that do not set their own.
	DefaultPopulationLimit = 8
)

// Config tunes every instance a Manager creates.
type Config struct {
	TickInterval    time.Duration
	RespawnDelay    time.Duration
	PopulationLimit int
}

// Manager creates, indexes and destroys map instances.
//
// Invariant: an instance is registered iff it has not been destroyed.
type Manager struct {
	atlas    *world.Atlas
	bestiary *npc.Bestiary
	spawner  *npc.Spawner
	brain    *ai.Brain
	sched    sched.Scheduler
	progress ProgressSaver
	cfg      Config
	logger   *zap.Logger

	instances map[string]*Instance
	order     []string
}

// NewManager returns a Manager with no instances.
//
// Precondition: every argument except progress must be non-nil.
// Postcondition: zero Config fields take their defaults.
func NewManager(
	atlas *world.Atlas,
	bestiary *npc.Bestiary,
	spawner *npc.Spawner,
	brain *ai.Brain,
	s sched.Scheduler,
	progress ProgressSaver,
	cfg Config,
	logger *zap.Logger,
) *Manager {
	if cfg.RespawnDelay <= 0 {
		cfg.RespawnDelay = DefaultRespawnDelay
	}
	if cfg.PopulationLimit <= 0 {
		cfg.PopulationLimit = DefaultPopulationLimit
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = ai.DefaultTickInterval
	}
	return &Manager{
		atlas:     atlas,
		bestiary:  bestiary,
		spawner:   spawner,
		brain:     brain,
		sched:     s,
		progress:  progress,
		cfg:       cfg,
		logger:    logger,
		instances: make(map[string]*Instance),
	}
}

// Create builds a populated instance of mapType and starts its AI.
//
// Postcondition: Returns ErrMapNotFound for an unknown type and
// ErrBadRequest for an unknown difficulty.
func (m *Manager) Create(mapType, customName, password, difficulty string) (*Instance, error) {
	layout, ok := m.atlas.Map(mapType)
	if !ok {
		return nil, gameerr.ErrMapNotFound
	}
	d, err := npc.ParseDifficulty(difficulty)
	if err != nil {
		return nil, gameerr.Wrap(gameerr.ErrBadRequest, err)
	}
	limit := layout.PopulationLimit
	if limit <= 0 {
		limit = m.cfg.PopulationLimit
	}
	if customName == "" {
		customName = layout.Name
	}
	id := uuid.NewString()
	inst := &Instance{
		ID:         id,
		Type:       mapType,
		CustomName: customName,
		Difficulty: d,
		Layout:     layout,
		password:   password,
		limit:      limit,
		sched:      m.sched,
		respawn:    m.cfg.RespawnDelay,
		progress:   m.progress,
		logger:     observability.ForMap(m.logger, id, mapType),
	}
	inst.init()
	if err := inst.populate(m.spawner, m.bestiary); err != nil {
		inst.Destroy()
		return nil, fmt.Errorf("populating map %q: %w", mapType, err)
	}
	inst.ai = m.brain.Start(m.sched, m.cfg.TickInterval, inst)
	m.instances[id] = inst
	m.order = append(m.order, id)
	inst.logger.Info("map created",
		zap.String("difficulty", string(d)),
		zap.Int("units", len(inst.units)),
	)
	return inst, nil
}

// Get returns the live instance with id.
func (m *Manager) Get(id string) (*Instance, bool) {
	inst, ok := m.instances[id]
	return inst, ok
}

// List returns a summary of every live instance in creation order.
func (m *Manager) List() []protocol.MapSummary {
	out := make([]protocol.MapSummary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.instances[id].Summary())
	}
	return out
}

// Join adds member to the instance id.
func (m *Manager) Join(id string, member Member, player *combat.Unit, password string) (*Instance, error) {
	inst, ok := m.instances[id]
	if !ok {
		return nil, gameerr.ErrMapNotFound
	}
	if err := inst.AddUser(member, player, password); err != nil {
		return nil, err
	}
	return inst, nil
}

// Leave removes member from the instance id, destroying it when it empties.
func (m *Manager) Leave(id string, member Member) error {
	inst, ok := m.instances[id]
	if !ok {
		return gameerr.ErrMapNotFound
	}
	if err := inst.RemoveUser(member); err != nil {
		return err
	}
	m.DestroyIfEmpty(id)
	return nil
}

// DestroyIfEmpty destroys the instance id if nobody has joined it.
func (m *Manager) DestroyIfEmpty(id string) {
	if inst, ok := m.instances[id]; ok && inst.Population() == 0 {
		m.Destroy(id)
	}
}

// Destroy tears down and unregisters the instance id.
func (m *Manager) Destroy(id string) {
	inst, ok := m.instances[id]
	if !ok {
		return
	}
	inst.Destroy()
	delete(m.instances, id)
	for n, other := range m.order {
		if other == id {
			m.order = append(m.order[:n], m.order[n+1:]...)
			break
		}
	}
}

// DestroyAll tears down every instance.
func (m *Manager) DestroyAll() {
	for _, id := range append([]string(nil), m.order...) {
		m.Destroy(id)
	}
}

// Count returns the number of live instances.
func (m *Manager) Count() int { return len(m.instances) }
