package gameserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// MapHandler handles map listing, creation, membership and movement.
type MapHandler struct {
	rooms  *room.Manager
	loop   sched.Runner
	logger *zap.Logger
}

// NewMapHandler creates a MapHandler.
//
// Precondition: every argument must be non-nil.
func NewMapHandler(rooms *room.Manager, loop sched.Runner, logger *zap.Logger) *MapHandler {
	return &MapHandler{rooms: rooms, loop: loop, logger: logger}
}

// instance returns the map sess has joined. Runs on the loop.
func (h *MapHandler) instance(sess *session.Session) (*room.Instance, error) {
	if err := requireMap(sess); err != nil {
		return nil, err
	}
	inst, ok := h.rooms.Get(sess.MapID)
	if !ok {
		sess.MapID = ""
		return nil, gameerr.ErrNotInMap
	}
	return inst, nil
}

// leave removes sess from its map. Runs on the loop.
//
// Postcondition: sess.MapID is empty.
func (h *MapHandler) leave(sess *session.Session) {
	id := sess.MapID
	sess.MapID = ""
	if err := h.rooms.Leave(id, sess); err != nil {
		h.logger.Debug("leaving map",
			zap.String("session", sess.ID()),
			zap.String("map", id),
			zap.Error(err),
		)
	}
}

// List replies with every live map.
func (h *MapHandler) List(ctx context.Context, sess *session.Session, _ protocol.Envelope) error {
	return onLoop(ctx, h.loop, func() error {
		if err := requireLogin(sess); err != nil {
			return err
		}
		reply(sess, protocol.Must(protocol.TypeMapList, protocol.MapListResponse{List: h.rooms.List()}))
		return nil
	})
}

// Create builds a new map and joins the creator to it.
//
// Postcondition: The creator receives map-create {mapId} and then the
// map-join snapshot. A map the creator failed to join is destroyed.
func (h *MapHandler) Create(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.MapCreateRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if req.MapType == "" {
		return gameerr.ErrBadRequest
	}
	return onLoop(ctx, h.loop, func() error {
		if err := requirePlayer(sess); err != nil {
			return err
		}
		if sess.MapID != "" {
			return gameerr.ErrAlreadyInMap
		}
		inst, err := h.rooms.Create(req.MapType, req.CustomName, req.Password, req.Difficulty)
		if err != nil {
			return err
		}
		reply(sess, protocol.Must(protocol.TypeMapCreate, protocol.MapCreateResponse{MapID: inst.ID}))
		if err := inst.AddUser(sess, sess.Player, req.Password); err != nil {
			h.rooms.DestroyIfEmpty(inst.ID)
			return err
		}
		sess.MapID = inst.ID
		h.logger.Info("map joined",
			zap.String("session", sess.ID()),
			zap.String("map", inst.ID),
			zap.String("player", sess.Player.Name),
		)
		return nil
	})
}

// Join adds the session's player to an existing map. The instance sends the
// map-join snapshot.
func (h *MapHandler) Join(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.MapJoinRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if req.MapID == "" {
		return gameerr.ErrBadRequest
	}
	return onLoop(ctx, h.loop, func() error {
		if err := requirePlayer(sess); err != nil {
			return err
		}
		if sess.MapID != "" {
			return gameerr.ErrAlreadyInMap
		}
		inst, err := h.rooms.Join(req.MapID, sess, sess.Player, req.Password)
		if err != nil {
			return err
		}
		sess.MapID = inst.ID
		h.logger.Info("map joined",
			zap.String("session", sess.ID()),
			zap.String("map", inst.ID),
			zap.String("player", sess.Player.Name),
		)
		return nil
	})
}

// Leave removes the session's player from its map.
func (h *MapHandler) Leave(ctx context.Context, sess *session.Session, _ protocol.Envelope) error {
	return onLoop(ctx, h.loop, func() error {
		if err := requireMap(sess); err != nil {
			return err
		}
		h.leave(sess)
		reply(sess, protocol.Must(protocol.TypeMapLeave, nil))
		return nil
	})
}

// Update applies a client-reported position, animation or facing. Nothing
// is sent back to the reporter.
func (h *MapHandler) Update(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var up protocol.PlayerUpdate
	if err := decode(env, &up); err != nil {
		return err
	}
	return onLoop(ctx, h.loop, func() error {
		inst, err := h.instance(sess)
		if err != nil {
			return err
		}
		return inst.ApplySafeUserUpdate(sess, up)
	})
}
