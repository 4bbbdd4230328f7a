package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// handlerFunc serves one inbound envelope. Replies are queued on sess by the
// handler; a returned error becomes an {error} response of the same type.
type handlerFunc func(ctx context.Context, sess *session.Session, env protocol.Envelope) error

// Server routes inbound envelopes to the controllers and owns session
// connect and disconnect.
type Server struct {
	loop     sched.Runner
	sessions *session.Manager
	rooms    *MapHandler
	routes   map[string]handlerFunc
	logger   *zap.Logger
}

// NewServer wires the controllers into a routing table.
//
// Precondition: every argument must be non-nil.
// Postcondition: Every inbound message type has a route.
func NewServer(
	loop sched.Runner,
	sessions *session.Manager,
	accounts *AccountHandler,
	players *PlayerHandler,
	maps *MapHandler,
	chat *ChatHandler,
	abilities *AbilityHandler,
	logger *zap.Logger,
) *Server {
	s := &Server{
		loop:     loop,
		sessions: sessions,
		rooms:    maps,
		logger:   logger,
	}
	s.routes = map[string]handlerFunc{
		protocol.TypeLogin:        accounts.Login,
		protocol.TypeLogout:       accounts.Logout,
		protocol.TypePlayerList:   players.List,
		protocol.TypePlayerCreate: players.Create,
		protocol.TypePlayerDelete: players.Delete,
		protocol.TypePlayerSelect: players.Select,
		protocol.TypeMapList:      maps.List,
		protocol.TypeMapCreate:    maps.Create,
		protocol.TypeMapJoin:      maps.Join,
		protocol.TypeMapLeave:     maps.Leave,
		protocol.TypePlayerUpdate: maps.Update,
		protocol.TypeChat:         chat.Chat,
		protocol.TypeAbilityCast:  abilities.Cast,
	}
	return s
}

// Connect registers sess.
//
// Postcondition: Returns an error if a session with the same id is registered.
func (s *Server) Connect(sess *session.Session) error {
	if err := s.sessions.Add(sess); err != nil {
		return err
	}
	s.logger.Info("session connected", zap.String("session", sess.ID()))
	return nil
}

// Disconnect leaves any joined map, releases the account and closes sess.
// Safe to call more than once.
func (s *Server) Disconnect(ctx context.Context, sess *session.Session) {
	err := s.loop.Call(ctx, func() {
		if sess.MapID != "" {
			s.rooms.leave(sess)
		}
		s.sessions.Release(sess.AccountID, sess.ID())
		sess.ClearPlayer()
	})
	if err != nil {
		s.logger.Debug("disconnect outside the simulation loop",
			zap.String("session", sess.ID()),
			zap.Error(err),
		)
	}
	s.sessions.Remove(sess.ID())
	sess.Close()
	s.logger.Info("session disconnected",
		zap.String("session", sess.ID()),
		zap.String("username", sess.Username),
	)
}

// Handle serves env for sess. Errors are answered to sess alone and never
// propagate.
func (s *Server) Handle(ctx context.Context, sess *session.Session, env protocol.Envelope) {
	start := time.Now()
	h, ok := s.routes[env.Type]
	if !ok {
		s.logger.Debug("unroutable message",
			zap.String("session", sess.ID()),
			zap.String("type", env.Type),
		)
		reply(sess, protocol.Error(env.Type, gameerr.ErrBadRequest.Message))
		return
	}
	if err := h(ctx, sess, env); err != nil {
		s.fail(sess, env.Type, err)
		return
	}
	s.logger.Debug("handled",
		zap.String("session", sess.ID()),
		zap.String("type", env.Type),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) fail(sess *session.Session, typ string, err error) {
	kind := gameerr.KindOf(err)
	fields := []zap.Field{
		zap.String("session", sess.ID()),
		zap.String("type", typ),
		zap.String("kind", kind.String()),
		zap.Error(err),
	}
	if kind == gameerr.KindPersistence {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}
	reply(sess, protocol.Error(typ, gameerr.Message(err)))
}

// reply queues env on sess. A full or closed queue drops it.
func reply(sess *session.Session, env protocol.Envelope) {
	_ = sess.Send(env)
}

// onLoop runs fn on the simulation goroutine and returns its error, or the
// loop's error if fn could not run.
func onLoop(ctx context.Context, loop sched.Runner, fn func() error) error {
	var err error
	if callErr := loop.Call(ctx, func() { err = fn() }); callErr != nil {
		return gameerr.Wrap(gameerr.ErrServer, callErr)
	}
	return err
}

// decode unmarshals env's payload into v.
func decode(env protocol.Envelope, v any) error {
	if err := env.Decode(v); err != nil {
		return gameerr.Wrap(gameerr.ErrBadRequest, err)
	}
	return nil
}

// The require helpers run on the simulation goroutine.

func requireLogin(sess *session.Session) error {
	if !sess.LoggedIn() {
		return gameerr.ErrNotLoggedIn
	}
	return nil
}

func requirePlayer(sess *session.Session) error {
	if err := requireLogin(sess); err != nil {
		return err
	}
	if sess.Player == nil {
		return gameerr.ErrNoPlayer
	}
	return nil
}

func requireMap(sess *session.Session) error {
	if err := requirePlayer(sess); err != nil {
		return err
	}
	if sess.MapID == "" {
		return gameerr.ErrNotInMap
	}
	return nil
}
