package gameserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// AbilityHandler handles ability casts.
type AbilityHandler struct {
	maps   *MapHandler
	loop   sched.Runner
	logger *zap.Logger
}

// NewAbilityHandler creates an AbilityHandler.
func NewAbilityHandler(maps *MapHandler, loop sched.Runner, logger *zap.Logger) *AbilityHandler {
	return &AbilityHandler{maps: maps, loop: loop, logger: logger}
}

// Cast casts the named ability of the session's player at a target.
//
// Postcondition: On success the caster receives ability-cast {abilityName};
// the effects reach the map as unit and fx updates.
func (h *AbilityHandler) Cast(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.AbilityCastRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	if req.AbilityName == "" || req.TargetID == "" {
		return gameerr.ErrBadRequest
	}
	return onLoop(ctx, h.loop, func() error {
		inst, err := h.maps.instance(sess)
		if err != nil {
			return err
		}
		if err := inst.Cast(sess, req.AbilityName, req.TargetID); err != nil {
			return err
		}
		reply(sess, protocol.Must(protocol.TypeAbilityCast, protocol.AbilityCastResponse{AbilityName: req.AbilityName}))
		return nil
	})
}
