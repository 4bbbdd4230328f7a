package gameserver

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/catalog"
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// PlayerHandler handles the player roster of a logged-in account.
type PlayerHandler struct {
	players    PlayerStore
	archetypes *ruleset.Registry
	catalog    *catalog.Catalog
	roller     *dice.Roller
	loop       sched.Runner
	logger     *zap.Logger
}

// NewPlayerHandler creates a PlayerHandler.
//
// Precondition: every argument must be non-nil.
func NewPlayerHandler(
	players PlayerStore,
	archetypes *ruleset.Registry,
	cat *catalog.Catalog,
	roller *dice.Roller,
	loop sched.Runner,
	logger *zap.Logger,
) *PlayerHandler {
	return &PlayerHandler{
		players:    players,
		archetypes: archetypes,
		catalog:    cat,
		roller:     roller,
		loop:       loop,
		logger:     logger,
	}
}

// account returns the session's account id, read on the loop.
func (h *PlayerHandler) account(ctx context.Context, sess *session.Session, check func(*session.Session) error) (int64, error) {
	var id int64
	err := onLoop(ctx, h.loop, func() error {
		if err := check(sess); err != nil {
			return err
		}
		id = sess.AccountID
		return nil
	})
	return id, err
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		return gameerr.Wrap(gameerr.ErrPlayerNotFound, err)
	case errors.Is(err, ErrNameTaken):
		return gameerr.Wrap(gameerr.ErrNameTaken, err)
	default:
		return gameerr.Wrap(gameerr.ErrServer, err)
	}
}

// List replies with the account's players.
func (h *PlayerHandler) List(ctx context.Context, sess *session.Session, _ protocol.Envelope) error {
	accountID, err := h.account(ctx, sess, requireLogin)
	if err != nil {
		return err
	}
	players, err := h.players.ListByAccount(ctx, accountID)
	if err != nil {
		return storeErr(err)
	}
	list := make([]character.Summary, len(players))
	for i, p := range players {
		list[i] = p.Summary()
	}
	reply(sess, protocol.Must(protocol.TypePlayerList, protocol.PlayerListResponse{List: list}))
	return nil
}

// Create validates and stores a new level 1 player.
func (h *PlayerHandler) Create(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.PlayerCreateRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	accountID, err := h.account(ctx, sess, requireLogin)
	if err != nil {
		return err
	}
	rec, err := character.Build(accountID, req.Name, req.Archetype, h.archetypes)
	switch {
	case errors.Is(err, character.ErrInvalidName):
		return gameerr.Wrap(gameerr.ErrInvalidName, err)
	case errors.Is(err, character.ErrInvalidArchetype):
		return gameerr.Wrap(gameerr.ErrInvalidArchetype, err)
	case err != nil:
		return gameerr.Wrap(gameerr.ErrBadRequest, err)
	}
	created, err := h.players.Insert(ctx, rec)
	if err != nil {
		return storeErr(err)
	}
	h.logger.Info("player created",
		zap.Int64("account", accountID),
		zap.String("player", created.Name),
		zap.String("archetype", created.Archetype),
	)
	reply(sess, protocol.Must(protocol.TypePlayerCreate, created.Summary()))
	return nil
}

// Delete removes one of the account's players. The selected player cannot
// be deleted.
func (h *PlayerHandler) Delete(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.PlayerNameRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return gameerr.ErrBadRequest
	}
	accountID, err := h.account(ctx, sess, func(s *session.Session) error {
		if err := requireLogin(s); err != nil {
			return err
		}
		if s.Record != nil && s.Record.Name == req.Name {
			return gameerr.ErrPlayerActive
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := h.players.Delete(ctx, accountID, req.Name); err != nil {
		return storeErr(err)
	}
	h.logger.Info("player deleted", zap.Int64("account", accountID), zap.String("player", req.Name))
	reply(sess, protocol.Must(protocol.TypePlayerDelete, protocol.PlayerNameResponse{Name: req.Name}))
	return nil
}

// Select loads a player and makes its unit the session's active player.
// A session selects at most once per login.
func (h *PlayerHandler) Select(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.PlayerNameRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return gameerr.ErrBadRequest
	}
	outsideMap := func(s *session.Session) error {
		if err := requireLogin(s); err != nil {
			return err
		}
		if s.MapID != "" {
			return gameerr.ErrAlreadyInMap
		}
		if s.Player != nil {
			return gameerr.ErrPlayerSelected
		}
		return nil
	}
	accountID, err := h.account(ctx, sess, outsideMap)
	if err != nil {
		return err
	}
	rec, err := h.players.Find(ctx, accountID, req.Name)
	if err != nil {
		return storeErr(err)
	}

	return onLoop(ctx, h.loop, func() error {
		if err := outsideMap(sess); err != nil {
			return err
		}
		u, err := h.spawn(sess, rec)
		if err != nil {
			return err
		}
		sess.Record = rec
		sess.Player = u
		h.logger.Info("player selected",
			zap.String("session", sess.ID()),
			zap.String("player", rec.Name),
			zap.Int("level", rec.Level),
		)
		reply(sess, protocol.Must(protocol.TypePlayerSelect, u.View()))
		return nil
	})
}

// spawn builds the live unit for rec. Runs on the loop.
func (h *PlayerHandler) spawn(sess *session.Session, rec *character.Player) (*combat.Unit, error) {
	arch, ok := h.archetypes.Archetype(rec.Archetype)
	if !ok {
		h.logger.Warn("stored player has an unknown archetype",
			zap.String("player", rec.Name),
			zap.String("archetype", rec.Archetype),
		)
		return nil, gameerr.ErrInvalidArchetype
	}
	u := combat.NewPlayer(
		combat.Config{OwnerID: sess.ID(), Faction: arch.Faction},
		rec, arch.Growth(), h.loop, h.roller,
	)
	if err := h.catalog.Teach(u, arch.Abilities); err != nil {
		return nil, gameerr.Wrap(gameerr.ErrServer, err)
	}
	return u, nil
}
