// Package command provides the slash-command registry, parser and built-in
// command definitions for map chat.
package command

// Categories for organizing commands.
const (
	CategoryCommunication = "communication"
	CategorySystem        = "system"
	CategoryEditor        = "editor"
	CategoryAdmin         = "admin"
)

// Handler identifiers mapping commands to chat handlers.
const (
	HandlerHelp    = "help"
	HandlerWho     = "who"
	HandlerRoll    = "roll"
	HandlerStuck   = "stuck"
	HandlerGiveXP  = "givexp"
	HandlerKillAll = "killall"
	HandlerKick    = "kick"
)

// Account privilege levels, lowest first.
const (
	RolePlayer = "player"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// RoleRank orders roles by privilege. Unknown roles rank below player.
func RoleRank(role string) int {
	switch role {
	case RolePlayer:
		return 1
	case RoleEditor:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Command defines a chat command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the chat handler that executes the command.
	Handler string
	// Role is the least privileged role allowed to run the command.
	Role string
}

// Allows reports whether role may run c.
func (c *Command) Allows(role string) bool {
	return RoleRank(role) >= RoleRank(c.Role)
}

// BuiltinCommands returns all built-in chat commands.
func BuiltinCommands() []Command {
	return []Command{
		// System commands
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp, Role: RolePlayer},
		{Name: "who", Help: "List players in this map", Category: CategorySystem, Handler: HandlerWho, Role: RolePlayer},
		{Name: "stuck", Aliases: []string{"unstuck"}, Help: "Return to the spawn point", Category: CategorySystem, Handler: HandlerStuck, Role: RolePlayer},

		// Communication commands
		{Name: "roll", Aliases: []string{"r"}, Usage: "[NdM+K]", Help: "Roll dice for the map to see", Category: CategoryCommunication, Handler: HandlerRoll, Role: RolePlayer},

		// Editor commands
		{Name: "givexp", Usage: "<amount>", Help: "Grant yourself experience", Category: CategoryEditor, Handler: HandlerGiveXP, Role: RoleEditor},

		// Admin commands
		{Name: "killall", Help: "Kill every NPC in this map", Category: CategoryAdmin, Handler: HandlerKillAll, Role: RoleAdmin},
		{Name: "kick", Usage: "<player>", Help: "Disconnect a player", Category: CategoryAdmin, Handler: HandlerKick, Role: RoleAdmin},
	}
}
