package gameserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/command"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/gameerr"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/sched"
)

// MaxChatLength is the longest chat line accepted, in characters.
const MaxChatLength = 128

// defaultRoll is rolled by /roll without an expression.
const defaultRoll = "1d20"

// commandFunc runs one slash command on the loop.
type commandFunc func(sess *session.Session, inst *room.Instance, args []string) error

// ChatHandler relays map chat and runs slash commands.
type ChatHandler struct {
	registry *command.Registry
	sessions *session.Manager
	maps     *MapHandler
	roller   *dice.Roller
	loop     sched.Runner
	logger   *zap.Logger
	commands map[string]commandFunc
}

// NewChatHandler creates a ChatHandler.
//
// Precondition: every argument must be non-nil.
func NewChatHandler(
	registry *command.Registry,
	sessions *session.Manager,
	maps *MapHandler,
	roller *dice.Roller,
	loop sched.Runner,
	logger *zap.Logger,
) *ChatHandler {
	h := &ChatHandler{
		registry: registry,
		sessions: sessions,
		maps:     maps,
		roller:   roller,
		loop:     loop,
		logger:   logger,
	}
	h.commands = map[string]commandFunc{
		command.HandlerHelp:    h.help,
		command.HandlerWho:     h.who,
		command.HandlerRoll:    h.roll,
		command.HandlerStuck:   h.stuck,
		command.HandlerGiveXP:  h.giveXP,
		command.HandlerKillAll: h.killAll,
		command.HandlerKick:    h.kick,
	}
	return h
}

// Chat broadcasts a line to the sender's map, or runs it as a command when
// it starts with the command prefix.
func (h *ChatHandler) Chat(ctx context.Context, sess *session.Session, env protocol.Envelope) error {
	var req protocol.ChatRequest
	if err := decode(env, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Chat)
	if text == "" {
		return gameerr.ErrBadRequest
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return gameerr.ErrMessageTooLong
	}
	return onLoop(ctx, h.loop, func() error {
		inst, err := h.maps.instance(sess)
		if err != nil {
			return err
		}
		if command.IsCommand(text) {
			return h.dispatch(sess, inst, command.Parse(text))
		}
		inst.Chat(sess.Player.Name, text)
		return nil
	})
}

func (h *ChatHandler) dispatch(sess *session.Session, inst *room.Instance, p command.ParseResult) error {
	cmd, ok := h.registry.Resolve(p.Command)
	if !ok {
		return gameerr.ErrUnknownCommand
	}
	if !cmd.Allows(sess.Role) {
		return gameerr.ErrInsufficient
	}
	run, ok := h.commands[cmd.Handler]
	if !ok {
		h.logger.Warn("command has no handler", zap.String("command", cmd.Name))
		return gameerr.ErrUnknownCommand
	}
	h.logger.Debug("command",
		zap.String("session", sess.ID()),
		zap.String("command", cmd.Name),
		zap.Strings("args", p.Args),
	)
	return run(sess, inst, p.Args)
}

// tell sends a Server chat line to sess alone.
func tell(sess *session.Session, text string) {
	reply(sess, protocol.Must(protocol.TypeChat, protocol.ChatMessage{Chat: text, From: room.ServerName}))
}

func (h *ChatHandler) help(sess *session.Session, _ *room.Instance, _ []string) error {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range h.registry.Available(sess.Role) {
		b.WriteString(" /")
		b.WriteString(c.Name)
		if c.Usage != "" {
			b.WriteString(" " + c.Usage)
		}
	}
	tell(sess, b.String())
	return nil
}

func (h *ChatHandler) who(sess *session.Session, inst *room.Instance, _ []string) error {
	var names []string
	for _, m := range inst.Members() {
		if u, ok := inst.Player(m.ID()); ok {
			names = append(names, u.Name)
		}
	}
	tell(sess, fmt.Sprintf("Players (%d): %s", len(names), strings.Join(names, ", ")))
	return nil
}

func (h *ChatHandler) roll(sess *session.Session, inst *room.Instance, args []string) error {
	expr := defaultRoll
	if len(args) > 0 {
		expr = strings.Join(args, "")
	}
	res, err := h.roller.RollExpr(expr)
	if err != nil {
		return gameerr.Wrap(gameerr.ErrBadRequest, err)
	}
	inst.Chat(room.ServerName, fmt.Sprintf("%s rolled %s", sess.Player.Name, res.String()))
	return nil
}

func (h *ChatHandler) stuck(sess *session.Session, inst *room.Instance, _ []string) error {
	return inst.Unstick(sess)
}

func (h *ChatHandler) giveXP(sess *session.Session, inst *room.Instance, args []string) error {
	if len(args) != 1 {
		return gameerr.ErrBadRequest
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return gameerr.ErrBadRequest
	}
	gained, err := inst.GrantXP(sess, n)
	if err != nil {
		return err
	}
	tell(sess, fmt.Sprintf("Granted %d experience, %d level(s) gained.", n, gained))
	return nil
}

func (h *ChatHandler) killAll(sess *session.Session, inst *room.Instance, _ []string) error {
	n := inst.KillNPCs()
	tell(sess, fmt.Sprintf("Killed %d NPC(s).", n))
	return nil
}

// kick disconnects the session playing the named player. Closing the
// target's queue makes its transport hang up and run Disconnect.
func (h *ChatHandler) kick(sess *session.Session, _ *room.Instance, args []string) error {
	if len(args) != 1 {
		return gameerr.ErrBadRequest
	}
	target, ok := h.sessions.ByPlayerName(args[0])
	if !ok {
		return gameerr.ErrPlayerNotFound
	}
	tell(target, "You have been kicked.")
	target.Close()
	h.logger.Info("player kicked",
		zap.String("by", sess.Username),
		zap.String("player", args[0]),
		zap.String("session", target.ID()),
	)
	tell(sess, fmt.Sprintf("Kicked %s.", args[0]))
	return nil
}
