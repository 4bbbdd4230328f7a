// Package room runs live map instances: membership, unit bookkeeping, event
// fan-out to members, NPC population and respawns.
//
// Nothing in this package locks. Every method must run on the simulation
// goroutine.
package room

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// ServerName is the sender of system chat lines.
const ServerName = "Server"

// Member is a session joined to an instance.
type Member interface {
	ID() string
	Send(protocol.Envelope) error
}

// ProgressSaver persists player progression changes.
type ProgressSaver interface {
	SaveProgress(name string, patch character.Patch)
}

// Instance is one live map.
//
// Invariant: len(members) <= limit; every unit in units has MapID == ID.
type Instance struct {
	ID         string
	Type       string
	CustomName string
	Difficulty npc.Difficulty
	Layout     *world.Map

	password string
	limit    int

	sched    sched.Scheduler
	respawn  time.Duration
	progress ProgressSaver
	logger   *zap.Logger

	bus         *combat.Bus
	unsubscribe func()
	ai          sched.Timer

	members   []Member
	memberGen map[string]uint64
	players   map[string]*combat.Unit // member id → player unit
	units     []*combat.Unit
	byID      map[string]*combat.Unit
	objects   []world.Object
	destroyed bool
}

func (i *Instance) init() {
	i.bus = combat.NewBus()
	i.unsubscribe = i.bus.Subscribe(i.onEvent)
	i.memberGen = make(map[string]uint64)
	i.players = make(map[string]*combat.Unit)
	i.byID = make(map[string]*combat.Unit)
	i.objects = i.Layout.Objects()
}

// populate spawns one NPC per nonzero cell of the NPC layer.
func (i *Instance) populate(spawner *npc.Spawner, bestiary *npc.Bestiary) error {
	for _, sp := range i.Layout.Spawns() {
		tmpl, ok := bestiary.Variant(i.Layout.EnemyFaction, sp.Value)
		if !ok {
			return fmt.Errorf("map %q: no %q variant for spawn value %d", i.Type, i.Layout.EnemyFaction, sp.Value)
		}
		r := i.Layout.TileRect(sp.Tile.X, sp.Tile.Y)
		u, err := spawner.Spawn(tmpl, spawner.Level(i.Difficulty), i.ID, r.X, r.Y)
		if err != nil {
			return err
		}
		if err := i.AddUnit(u); err != nil {
			return err
		}
	}
	return nil
}

// Population returns the number of joined members.
func (i *Instance) Population() int { return len(i.members) }

// Limit returns the population limit.
func (i *Instance) Limit() int { return i.limit }

// Locked reports whether joining requires a password.
func (i *Instance) Locked() bool { return i.password != "" }

// Destroyed reports whether Destroy has run.
func (i *Instance) Destroyed() bool { return i.destroyed }

// Summary returns the map-list entry.
func (i *Instance) Summary() protocol.MapSummary {
	return protocol.MapSummary{
		ID:              i.ID,
		Type:            i.Type,
		CustomName:      i.CustomName,
		Difficulty:      string(i.Difficulty),
		Population:      len(i.members),
		PopulationLimit: i.limit,
		Locked:          i.Locked(),
	}
}

// Units returns every unit in insertion order.
func (i *Instance) Units() []*combat.Unit {
	return append([]*combat.Unit(nil), i.units...)
}

// Unit returns the unit with id.
func (i *Instance) Unit(id string) (*combat.Unit, bool) {
	u, ok := i.byID[id]
	return u, ok
}

// Player returns the player unit of member id, whether or not it is alive.
func (i *Instance) Player(memberID string) (*combat.Unit, bool) {
	u, ok := i.players[memberID]
	return u, ok
}

// Members returns the joined members in join order.
func (i *Instance) Members() []Member {
	return append([]Member(nil), i.members...)
}

// Collides reports whether r overlaps blocked terrain.
func (i *Instance) Collides(r geom.Rect) bool {
	return i.Layout.Collides(r)
}

// Snapshot returns the map-join payload.
func (i *Instance) Snapshot() protocol.MapJoinResponse {
	views := make([]combat.View, len(i.units))
	for n, u := range i.units {
		views[n] = u.View()
	}
	return protocol.MapJoinResponse{
		MapID:      i.ID,
		TileLayout: i.Layout.Layout(),
		Units:      views,
		Objects:    i.objects,
	}
}

// AddUser joins m with its player unit.
//
// Postcondition: On success the player stands at the spawn point with full
// stats if it had died, is a unit of the instance, m has received the
// map-join snapshot and then every member has seen the join line. On error
// nothing changed.
func (i *Instance) AddUser(m Member, player *combat.Unit, password string) error {
	if i.destroyed {
		return gameerr.ErrMapNotFound
	}
	if len(i.members) >= i.limit {
		return gameerr.ErrMapFull
	}
	if i.password != "" && password != i.password {
		return gameerr.ErrWrongPassword
	}
	if _, joined := i.players[m.ID()]; joined {
		return gameerr.ErrAlreadyJoined
	}
	if player.MapID != "" {
		return gameerr.ErrUnitInMap
	}
	if player.IsDead() {
		player.ResetToBase()
	}
	i.placeAtSpawn(player)
	if err := i.AddUnit(player); err != nil {
		return err
	}
	i.members = append(i.members, m)
	i.memberGen[m.ID()]++
	i.players[m.ID()] = player
	i.send(m, protocol.Must(protocol.TypeMapJoin, i.Snapshot()))
	i.Chat(ServerName, player.Name+" joined the map.")
	i.logger.Info("member joined", zap.String("member", m.ID()), zap.String("player", player.Name))
	return nil
}

// RemoveUser removes m and its player unit.
//
// Postcondition: Any pending respawn for m is cancelled.
func (i *Instance) RemoveUser(m Member) error {
	player, joined := i.players[m.ID()]
	if !joined {
		return gameerr.ErrNotInMap
	}
	for n, other := range i.members {
		if other.ID() == m.ID() {
			i.members = append(i.members[:n], i.members[n+1:]...)
			break
		}
	}
	i.memberGen[m.ID()]++
	delete(i.players, m.ID())
	if _, present := i.byID[player.ID]; present {
		_ = i.RemoveUnit(player)
	}
	player.MapID = ""
	i.Chat(ServerName, player.Name+" left the map.")
	i.logger.Info("member left", zap.String("member", m.ID()), zap.String("player", player.Name))
	return nil
}

// AddUnit adds u and announces it to every member.
func (i *Instance) AddUnit(u *combat.Unit) error {
	if _, dup := i.byID[u.ID]; dup || u.MapID != "" {
		return gameerr.ErrUnitInMap
	}
	u.MapID = i.ID
	u.Attach(i.bus)
	i.units = append(i.units, u)
	i.byID[u.ID] = u
	i.Broadcast(protocol.Must(protocol.TypeEntCreate, u.View()))
	return nil
}

// RemoveUnit removes u and announces the removal to every member.
//
// Postcondition: u is detached; its pending timers no longer act on it.
func (i *Instance) RemoveUnit(u *combat.Unit) error {
	if i.byID[u.ID] != u {
		return gameerr.ErrNotInMap
	}
	delete(i.byID, u.ID)
	for n, other := range i.units {
		if other == u {
			i.units = append(i.units[:n], i.units[n+1:]...)
			break
		}
	}
	u.Detach()
	i.Broadcast(protocol.Must(protocol.TypeEntDelete, protocol.EntDelete{ID: u.ID}))
	return nil
}

// ApplySafeUserUpdate applies the whitelisted position, animation and facing
// fields reported by m's client and relays the change to every other member.
// The reported position is trusted as-is.
func (i *Instance) ApplySafeUserUpdate(m Member, up combat.Update) error {
	player, joined := i.players[m.ID()]
	if !joined {
		return gameerr.ErrNotInMap
	}
	if _, alive := i.byID[player.ID]; !alive {
		return nil
	}
	changed := player.Apply(combat.Update{X: up.X, Y: up.Y, Anim: up.Anim, Facing: up.Facing})
	if changed.Empty() {
		return nil
	}
	i.broadcastExcept(m.ID(), protocol.Must(protocol.TypeEntUpdate, protocol.EntUpdate{ID: player.ID, Update: changed}))
	return nil
}

// Cast casts ability name from m's player at the unit targetID.
func (i *Instance) Cast(m Member, name, targetID string) error {
	player, joined := i.players[m.ID()]
	if !joined {
		return gameerr.ErrNotInMap
	}
	if _, alive := i.byID[player.ID]; !alive {
		return gameerr.ErrNoPlayer
	}
	target, ok := i.byID[targetID]
	if !ok {
		return gameerr.ErrUnknownTarget
	}
	return player.Cast(name, target, i.Units())
}

// GrantXP awards n experience to m's living player and returns the levels
// gained. A dead player waiting to respawn cannot receive experience.
func (i *Instance) GrantXP(m Member, n int) (int, error) {
	player, joined := i.players[m.ID()]
	if !joined {
		return 0, gameerr.ErrNotInMap
	}
	if _, alive := i.byID[player.ID]; !alive {
		return 0, gameerr.ErrNoPlayer
	}
	return player.GrantXP(n), nil
}

// Unstick moves m's living player back to the spawn point.
func (i *Instance) Unstick(m Member) error {
	player, joined := i.players[m.ID()]
	if !joined {
		return gameerr.ErrNotInMap
	}
	if _, alive := i.byID[player.ID]; !alive {
		return gameerr.ErrNoPlayer
	}
	x, y := i.Layout.SpawnPoint()
	player.MoveTo(x, y)
	return nil
}

// KillNPCs kills every NPC and returns how many died.
func (i *Instance) KillNPCs() int {
	n := 0
	for _, u := range i.Units() {
		if u.NPC != nil && !u.IsDead() {
			u.Kill()
			n++
		}
	}
	return n
}

// Chat sends a chat line to every member.
func (i *Instance) Chat(from, text string) {
	i.Broadcast(protocol.Must(protocol.TypeChat, protocol.ChatMessage{Chat: text, From: from}))
}

// Broadcast sends env to every member.
func (i *Instance) Broadcast(env protocol.Envelope) {
	i.broadcastExcept("", env)
}

func (i *Instance) broadcastExcept(skip string, env protocol.Envelope) {
	for _, m := range i.members {
		if m.ID() == skip {
			continue
		}
		i.send(m, env)
	}
}

func (i *Instance) send(m Member, env protocol.Envelope) {
	if err := m.Send(env); err != nil {
		i.logger.Debug("dropping message", zap.String("member", m.ID()), zap.String("type", env.Type), zap.Error(err))
	}
}

func (i *Instance) sendOwner(u *combat.Unit, env protocol.Envelope) {
	for _, m := range i.members {
		if m.ID() == u.OwnerID {
			i.send(m, env)
			return
		}
	}
}

func (i *Instance) placeAtSpawn(u *combat.Unit) {
	x, y := i.Layout.SpawnPoint()
	idle := combat.AnimIdle
	u.Apply(combat.Update{X: &x, Y: &y, Anim: &idle})
}

func (i *Instance) onEvent(e combat.Event) {
	u := e.Unit
	switch e.Kind {
	case combat.EventUpdate:
		i.Broadcast(protocol.Must(protocol.TypeEntUpdate, protocol.EntUpdate{ID: u.ID, Update: e.Update}))
	case combat.EventStats:
		i.Broadcast(protocol.Must(protocol.TypeStatsUpdate, protocol.StatsUpdate{
			ID:       u.ID,
			Name:     string(e.Stat.Name),
			Current:  e.Stat.Current,
			Capacity: e.Stat.Capacity,
		}))
	case combat.EventDeath:
		if u.IsPlayer() {
			i.onPlayerDeath(u)
		} else {
			i.onNPCDeath(u)
		}
	case combat.EventRecharge:
		i.sendOwner(u, protocol.Must(protocol.TypeEntUpdate, protocol.EntUpdate{
			ID:        u.ID,
			Abilities: map[string]bool{e.Ability: true},
		}))
	case combat.EventFX:
		i.Broadcast(protocol.Must(protocol.TypeMapFX, e.FX))
	case combat.EventProgress:
		i.onProgress(u)
	}
}

// onNPCDeath removes the NPC and rewards every living player in the map.
func (i *Instance) onNPCDeath(u *combat.Unit) {
	if err := i.RemoveUnit(u); err != nil {
		return
	}
	xp := u.NPC.XPReward()
	merits := u.NPC.Rank.Merits()
	for _, m := range i.members {
		p := i.players[m.ID()]
		if _, alive := i.byID[p.ID]; !alive {
			continue
		}
		p.GrantXP(xp)
		if merits > 0 {
			p.GrantMerits(merits)
		}
	}
	i.logger.Debug("npc defeated", zap.String("npc", u.Type), zap.Int("xp", xp))
}

// onPlayerDeath removes the player and schedules a respawn guarded by the
// member's generation, so leaving and rejoining cancels it.
func (i *Instance) onPlayerDeath(u *combat.Unit) {
	if err := i.RemoveUnit(u); err != nil {
		return
	}
	memberID := u.OwnerID
	token := i.memberGen[memberID]
	i.sched.After(i.respawn, func() {
		if i.destroyed || i.memberGen[memberID] != token {
			return
		}
		u.ResetToBase()
		i.placeAtSpawn(u)
		if err := i.AddUnit(u); err != nil {
			i.logger.Warn("respawn failed", zap.String("unit", u.ID), zap.Error(err))
		}
	})
}

func (i *Instance) onProgress(u *combat.Unit) {
	p := u.Player
	if p == nil {
		return
	}
	level, xp, merits, required := p.Level, p.XP, p.Merits, 0
	if level < character.MaxLevel {
		required = character.XPRequired(level)
	}
	i.sendOwner(u, protocol.Must(protocol.TypeEntUpdate, protocol.EntUpdate{
		ID:         u.ID,
		Level:      &level,
		XP:         &xp,
		XPRequired: &required,
		Merits:     &merits,
	}))
	if i.progress != nil {
		i.progress.SaveProgress(u.Name, p.Progress())
	}
}

// Destroy stops the AI, drops all event wiring and detaches every unit.
// Safe to call more than once.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}
	i.destroyed = true
	if i.ai != nil {
		i.ai.Stop()
	}
	i.unsubscribe()
	i.bus.Close()
	for _, u := range i.units {
		u.Detach()
	}
	for _, p := range i.players {
		p.MapID = ""
	}
	i.units = nil
	i.byID = make(map[string]*combat.Unit)
	i.members = nil
	i.players = make(map[string]*combat.Unit)
	i.logger.Info("map destroyed")
}
