package gameserver_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/protocol"
)

// inMap returns a session playing name inside a fresh map with the given role.
func inMap(t *testing.T, f *fixture, id int64, name, role string) (*protocolSession, string) {
	t.Helper()
	sess := f.connect(t)
	f.play(t, sess, id, name, role)
	mapID := f.createMap(t, sess, "")
	return &protocolSession{f: f, Session: sess}, mapID
}

func TestCommand_Unknown(t *testing.T) {
	f := newFixture(t)
	p, _ := inMap(t, f, 1, "Aldric", "player")

	got := p.chat("/dance")
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown command.", errorOf(got[0]))
}

func TestCommand_Privileges(t *testing.T) {
	tests := []struct {
		role    string
		line    string
		allowed bool
	}{
		{role: "player", line: "/givexp 10", allowed: false},
		{role: "editor", line: "/givexp 10", allowed: true},
		{role: "editor", line: "/killall", allowed: false},
		{role: "admin", line: "/killall", allowed: true},
		{role: "player", line: "/kick Nobody", allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.line, func(t *testing.T) {
			f := newFixture(t)
			p, _ := inMap(t, f, 1, "Aldric", tt.role)
			got := p.chat(tt.line)
			require.NotEmpty(t, got)
			if tt.allowed {
				assert.NotEqual(t, "Insufficient privileges.", errorOf(got[0]))
			} else {
				assert.Equal(t, "Insufficient privileges.", errorOf(got[0]))
			}
		})
	}
}

func TestCommand_HelpListsOnlyAllowedCommands(t *testing.T) {
	f := newFixture(t)
	p, _ := inMap(t, f, 1, "Aldric", "player")

	msgs := chats(p.chat("/help"))
	require.Len(t, msgs, 1)
	assert.Equal(t, room.ServerName, msgs[0].From)
	assert.Contains(t, msgs[0].Chat, "/who")
	assert.Contains(t, msgs[0].Chat, "/roll [NdM+K]")
	assert.NotContains(t, msgs[0].Chat, "/killall")
	assert.NotContains(t, msgs[0].Chat, "/kick")
}

func TestCommand_Who(t *testing.T) {
	f := newFixture(t)
	p, mapID := inMap(t, f, 1, "Aldric", "player")
	bob := f.connect(t)
	f.play(t, bob, 2, "Brom", "player")
	f.send(bob, protocol.TypeMapJoin, protocol.MapJoinRequest{MapID: mapID})
	drain(p.Session)

	msgs := chats(p.chat("/who"))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Players (2): Aldric, Brom", msgs[0].Chat)
	assert.Empty(t, drain(bob), "only the caller sees /who")
}

func TestCommand_RollBroadcasts(t *testing.T) {
	f := newFixture(t)
	p, mapID := inMap(t, f, 1, "Aldric", "player")
	bob := f.connect(t)
	f.play(t, bob, 2, "Brom", "player")
	f.send(bob, protocol.TypeMapJoin, protocol.MapJoinRequest{MapID: mapID})
	drain(p.Session)

	msgs := chats(p.chat("/roll"))
	require.Len(t, msgs, 1)
	assert.Equal(t, room.ServerName, msgs[0].From)
	assert.True(t, strings.HasPrefix(msgs[0].Chat, "Aldric rolled "), msgs[0].Chat)

	seen := chats(drain(bob))
	require.Len(t, seen, 1)
	assert.Equal(t, msgs[0], seen[0])

	got := p.chat("/roll banana")
	require.Len(t, got, 1)
	assert.Equal(t, "Bad request.", errorOf(got[0]))
}

func TestCommand_Stuck(t *testing.T) {
	f := newFixture(t)
	p, mapID := inMap(t, f, 1, "Aldric", "player")
	inst, ok := f.rooms.Get(mapID)
	require.True(t, ok)
	home := p.Player.Body.Rect

	x, y := home.X+40, home.Y+40
	p.send(protocol.TypePlayerUpdate, protocol.PlayerUpdate{X: &x, Y: &y})
	require.NotEqual(t, home, p.Player.Body.Rect)

	got := p.chat("/stuck")
	assert.Empty(t, chats(got))
	assert.Equal(t, home.X, p.Player.Body.Rect.X)
	assert.Equal(t, home.Y, p.Player.Body.Rect.Y)
	assert.Equal(t, 1, inst.Population())
}

func TestCommand_GiveXP(t *testing.T) {
	f := newFixture(t)
	p, _ := inMap(t, f, 1, "Aldric", "editor")

	msgs := chats(p.chat("/givexp 26"))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Granted 26 experience, 1 level(s) gained.", msgs[0].Chat)
	assert.Equal(t, 2, p.Player.Level())
	assert.Equal(t, 1, f.saver.Pending(), "progress is queued for saving")

	for _, bad := range []string{"/givexp", "/givexp ten", "/givexp -5"} {
		got := p.chat(bad)
		require.Len(t, got, 1, bad)
		assert.Equal(t, "Bad request.", errorOf(got[0]), bad)
	}
}

func TestCommand_GiveXPRefusedWhileDead(t *testing.T) {
	f := newFixture(t)
	p, _ := inMap(t, f, 1, "Aldric", "editor")
	p.Player.Kill()
	drain(p.Session)

	got := p.chat("/givexp 26")
	require.Len(t, got, 1)
	assert.Equal(t, "No active player.", errorOf(got[0]))
	assert.Equal(t, 1, p.Player.Level())
	assert.Zero(t, f.saver.Pending())
}

func TestCommand_KillAll(t *testing.T) {
	f := newFixture(t)
	p, mapID := inMap(t, f, 1, "Aldric", "admin")
	inst, ok := f.rooms.Get(mapID)
	require.True(t, ok)
	var npcs []*combat.Unit
	for _, u := range inst.Units() {
		if u.NPC != nil {
			npcs = append(npcs, u)
		}
	}
	require.NotEmpty(t, npcs)

	msgs := chats(p.chat("/killall"))
	assert.Contains(t, msgs, protocol.ChatMessage{Chat: "Killed " + strconv.Itoa(len(npcs)) + " NPC(s).", From: room.ServerName})
	for _, u := range npcs {
		assert.True(t, u.IsDead())
	}
	assert.Len(t, inst.Units(), 1, "only the admin is left")
	assert.Greater(t, p.Player.Level(), 1, "the kills were rewarded")
}

func TestCommand_Kick(t *testing.T) {
	f := newFixture(t)
	p, mapID := inMap(t, f, 1, "Aldric", "admin")
	bob := f.connect(t)
	f.play(t, bob, 2, "Brom", "player")
	f.send(bob, protocol.TypeMapJoin, protocol.MapJoinRequest{MapID: mapID})
	drain(p.Session)

	got := p.chat("/kick Ghost")
	require.Len(t, got, 1)
	assert.Equal(t, "Player not found.", errorOf(got[0]))

	msgs := chats(p.chat("/kick Brom"))
	assert.Equal(t, []protocol.ChatMessage{{Chat: "Kicked Brom.", From: room.ServerName}}, msgs)
	assert.True(t, bob.IsClosed())
	assert.Contains(t, chats(drain(bob)), protocol.ChatMessage{Chat: "You have been kicked.", From: room.ServerName})
}

// protocolSession pairs a session with the fixture that serves it.
type protocolSession struct {
	f *fixture
	*session.Session
}

func (p *protocolSession) send(typ string, data any) []protocol.Envelope {
	return p.f.send(p.Session, typ, data)
}

func (p *protocolSession) chat(line string) []protocol.Envelope {
	return p.send(protocol.TypeChat, protocol.ChatRequest{Chat: line})
}
