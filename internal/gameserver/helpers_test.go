package gameserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/catalog"
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/command"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/gameserver"
	"github.com/cory-johannsen/warband/internal/gameserver/mocks"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/scripting"
	"github.com/cory-johannsen/warband/internal/sched"
)

const testVersion = "0.1.0"

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	clock    *sched.Manual
	accounts *mocks.MockAccountStore
	players  *mocks.MockPlayerStore
	sessions *session.Manager
	saver    *gameserver.Saver
	rooms    *room.Manager
	server   *gameserver.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	fsys := content.Default()
	logger := zap.NewNop()

	f := &fixture{
		clock:    sched.NewManual(epoch),
		accounts: mocks.NewMockAccountStore(ctrl),
		players:  mocks.NewMockPlayerStore(ctrl),
		sessions: session.NewManager(),
	}
	f.saver = gameserver.NewSaver(f.players, 16, logger)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(7), logger)

	scripts := scripting.NewManager(roller, logger, 0)
	t.Cleanup(scripts.Close)
	require.NoError(t, scripts.Load(fsys, "scripts"))
	cat, err := catalog.Load(fsys, "abilities", scripts)
	require.NoError(t, err)
	archetypes, err := ruleset.LoadArchetypes(fsys, "archetypes")
	require.NoError(t, err)
	registry := ruleset.NewRegistry(archetypes)
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
		npc.NewSpawner(cat, f.clock, roller),
		ai.NewBrain(roller, logger),
		f.clock,
		f.saver,
		room.Config{},
		logger,
	)

	mapHandler := gameserver.NewMapHandler(f.rooms, f.clock, logger)
	f.server = gameserver.NewServer(
		f.clock,
		f.sessions,
		gameserver.NewAccountHandler(testVersion, f.accounts, f.sessions, mapHandler, f.clock, logger),
		gameserver.NewPlayerHandler(f.players, registry, cat, roller, f.clock, logger),
		mapHandler,
		gameserver.NewChatHandler(command.DefaultRegistry(), f.sessions, mapHandler, roller, f.clock, logger),
		gameserver.NewAbilityHandler(mapHandler, f.clock, logger),
		logger,
	)
	return f
}

func (f *fixture) connect(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New(0)
	require.NoError(t, f.server.Connect(sess))
	return sess
}

// send handles one envelope and returns everything queued for sess since
// the previous call.
func (f *fixture) send(sess *session.Session, typ string, data any) []protocol.Envelope {
	f.server.Handle(context.Background(), sess, protocol.Must(typ, data))
	return drain(sess)
}

func drain(sess *session.Session) []protocol.Envelope {
	var out []protocol.Envelope
	for {
		select {
		case env, ok := <-sess.Outbound():
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

// login logs sess in as an account with role.
func (f *fixture) login(t *testing.T, sess *session.Session, id int64, username, role string) {
	t.Helper()
	f.accounts.EXPECT().
		Authenticate(gomock.Any(), username, "secret").
		Return(gameserver.Account{ID: id, Username: username, Role: role}, nil)
	got := f.send(sess, protocol.TypeLogin, protocol.LoginRequest{Username: username, Password: "secret", Version: testVersion})
	require.Len(t, got, 1)
	requireOK(t, got[0], protocol.TypeLogin)
}

// play logs sess in and selects a level 1 knight called name.
func (f *fixture) play(t *testing.T, sess *session.Session, id int64, name, role string) {
	t.Helper()
	f.login(t, sess, id, "user-"+name, role)
	f.players.EXPECT().
		Find(gomock.Any(), id, name).
		Return(&character.Player{ID: id, AccountID: id, Name: name, Archetype: "knight", Level: 1}, nil)
	got := f.send(sess, protocol.TypePlayerSelect, protocol.PlayerNameRequest{Name: name})
	require.Len(t, got, 1)
	requireOK(t, got[0], protocol.TypePlayerSelect)
}

// createMap creates a Training test map with sess and returns its id.
func (f *fixture) createMap(t *testing.T, sess *session.Session, password string) string {
	t.Helper()
	got := f.send(sess, protocol.TypeMapCreate, protocol.MapCreateRequest{
		MapType:    "test",
		Password:   password,
		Difficulty: "Training",
	})
	require.GreaterOrEqual(t, len(got), 2)
	requireOK(t, got[0], protocol.TypeMapCreate)
	requireOK(t, got[1], protocol.TypeMapJoin)
	var resp protocol.MapCreateResponse
	require.NoError(t, got[0].Decode(&resp))
	return resp.MapID
}

func requireOK(t *testing.T, env protocol.Envelope, typ string) {
	t.Helper()
	require.Equal(t, typ, env.Type)
	require.Empty(t, errorOf(env), "unexpected error response")
}

func errorOf(env protocol.Envelope) string {
	var e protocol.ErrorData
	if err := env.Decode(&e); err != nil {
		return ""
	}
	return e.Error
}

func chats(envs []protocol.Envelope) []protocol.ChatMessage {
	var out []protocol.ChatMessage
	for _, env := range envs {
		if env.Type != protocol.TypeChat {
			continue
		}
		var msg protocol.ChatMessage
		if err := env.Decode(&msg); err == nil && msg.Chat != "" {
			out = append(out, msg)
		}
	}
	return out
}
