package gameserver

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// Version is the client version a login must carry.
type Version string

// AccountHandler handles login and logout.
type AccountHandler struct {
	version  Version
	accounts AccountStore
	sessions *session.Manager
	maps     *MapHandler
	loop     sched.Runner
	logger   *zap.Logger
}

// NewAccountHandler creates an AccountHandler.
//
// Precondition: every argument must be non-nil and version non-empty.
func NewAccountHandler(
	version Version,
	accounts AccountStore,
	sessions *session.Manager,
	maps *MapHandler,
	loop sched.Runner,
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		version:  version,
		accounts: accounts,
		sessions: sessions,
		maps:     maps,
		loop:     loop,
		logger:   logger,
	}
}

// Login authenticates the session.
//
// Postcondition: On success sess carries the account and the reply is
// login {id}. An account is held by at most one session.
func (h *AccountHandler) Login(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.LoginRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if Version(req.Version) != h.version {
		return gameerr.ErrVersionMismatch
	}
	if req.Username == "" || req.Password == "" {
		return gameerr.ErrBadRequest
	}
	notLoggedIn := func() error {
		if sess.LoggedIn() {
			return gameerr.ErrAlreadyLoggedIn
		}
		return nil
	}
	if err := onLoop(ctx, h.loop, notLoggedIn); err != nil {
		return err
	}

	acct, err := h.accounts.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return gameerr.ErrBadCredentials
		}
		return gameerr.Wrap(gameerr.ErrServer, err)
	}

	return onLoop(ctx, h.loop, func() error {
		if err := notLoggedIn(); err != nil {
			return err
		}
		if !h.sessions.Claim(acct.ID, sess.ID()) {
			return gameerr.ErrAlreadyLoggedIn
		}
		sess.AccountID = acct.ID
		sess.Username = acct.Username
		sess.Role = acct.Role
		h.logger.Info("login",
			zap.String("session", sess.ID()),
			zap.String("username", acct.Username),
			zap.String("role", acct.Role),
		)
		reply(sess, protocol.Must(protocol.TypeLogin, protocol.LoginResponse{ID: sess.ID()}))
		return nil
	})
}

// Logout leaves any joined map, drops the selected player and releases the
// account.
func (h *AccountHandler) Logout(ctx context.Context, sess *session.Session, _ protocol.Envelope) error {
	return onLoop(ctx, h.loop, func() error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		if sess.MapID != "" {
			h.maps.leave(sess)
		}
		sess.ClearPlayer()
		h.sessions.Release(sess.AccountID, sess.ID())
		h.logger.Info("logout",
			zap.String("session", sess.ID()),
			zap.String("username", sess.Username),
		)
		sess.AccountID, sess.Username, sess.Role = 0, "", ""
		reply(sess, protocol.Must(protocol.TypeLogout, nil))
		return nil
	})
}
