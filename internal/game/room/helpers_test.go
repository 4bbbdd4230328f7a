package room_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/catalog"
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/scripting"
	"github.com/cory-johannsen/warband/internal/sched"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// critSource draws integers from a seeded source and returns 0 from every
// Float64, so every chance with p > 0 succeeds.
type critSource struct{ dice.Source }

func (critSource) Float64() float64 { return 0 }

type member struct {
	id  string
	got []protocol.Envelope
}

func newMember(id string) *member { return &member{id: id} }

func (m *member) ID() string { return m.id }

func (m *member) Send(env protocol.Envelope) error {
	m.got = append(m.got, env)
	return nil
}

func (m *member) count(typ string) int {
	n := 0
	for _, env := range m.got {
		if env.Type == typ {
			n++
		}
	}
	return n
}

func (m *member) chats() []string {
	var out []string
	for _, env := range m.got {
		if env.Type != protocol.TypeChat {
			continue
		}
		var msg protocol.ChatMessage
		if err := env.Decode(&msg); err == nil {
			out = append(out, msg.Chat)
		}
	}
	return out
}

type savedProgress struct {
	name  string
	patch character.Patch
}

type progressLog struct{ saved []savedProgress }

func (p *progressLog) SaveProgress(name string, patch character.Patch) {
	p.saved = append(p.saved, savedProgress{name: name, patch: patch})
}

type fixture struct {
	clock      *sched.Manual
	roller     *dice.Roller
	catalog    *catalog.Catalog
	archetypes *ruleset.Registry
	progress   *progressLog
	rooms      *room.Manager
}

func newFixture(t *testing.T, seed uint64) *fixture {
	t.Helper()
	fsys := content.Default()
	logger := zap.NewNop()
	f := &fixture{
		clock:    sched.NewManual(epoch),
		roller:   dice.NewLoggedRoller(critSource{dice.NewSeededSource(seed)}, logger),
		progress: &progressLog{},
	}

	scripts := scripting.NewManager(f.roller, logger, 0)
	t.Cleanup(scripts.Close)
	require.NoError(t, scripts.Load(fsys, "scripts"))
	cat, err := catalog.Load(fsys, "abilities", scripts)
	require.NoError(t, err)
	f.catalog = cat

	archetypes, err := ruleset.LoadArchetypes(fsys, "archetypes")
	require.NoError(t, err)
	f.archetypes = ruleset.NewRegistry(archetypes)

	templates, err := npc.LoadTemplates(fsys, "npcs")
	require.NoError(t, err)
	bestiary, err := npc.NewBestiary(templates)
	require.NoError(t, err)

	maps, err := world.LoadMaps(fsys, "maps")
	require.NoError(t, err)
	atlas, err := world.NewAtlas(maps)
	require.NoError(t, err)

	f.rooms = room.NewManager(
		atlas,
		bestiary,
		npc.NewSpawner(cat, f.clock, f.roller),
		ai.NewBrain(f.roller, logger),
		f.clock,
		f.progress,
		room.Config{},
		logger,
	)
	return f
}

func (f *fixture) knight(t *testing.T, m *member, name string) *combat.Unit {
	t.Helper()
	arch, ok := f.archetypes.Archetype("knight")
	require.True(t, ok)
	rec := &character.Player{Name: name, Archetype: arch.ID, Level: 1}
	u := combat.NewPlayer(combat.Config{OwnerID: m.ID(), Faction: arch.Faction}, rec, arch.Growth(), f.clock, f.roller)
	require.NoError(t, f.catalog.Teach(u, arch.Abilities))
	return u
}

func (f *fixture) create(t *testing.T, password, difficulty string) *room.Instance {
	t.Helper()
	inst, err := f.rooms.Create("test", "", password, difficulty)
	require.NoError(t, err)
	return inst
}

func npcs(inst *room.Instance) []*combat.Unit {
	var out []*combat.Unit
	for _, u := range inst.Units() {
		if u.NPC != nil {
			out = append(out, u)
		}
	}
	return out
}

// combatKnight is knight for callers without a *testing.T.
func combatKnight(f *fixture, m *member) *combat.Unit {
	arch, _ := f.archetypes.Archetype("knight")
	rec := &character.Player{Name: m.ID(), Archetype: arch.ID, Level: 1}
	u := combat.NewPlayer(combat.Config{OwnerID: m.ID(), Faction: arch.Faction}, rec, arch.Growth(), f.clock, f.roller)
	_ = f.catalog.Teach(u, arch.Abilities)
	return u
}
