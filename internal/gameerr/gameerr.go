// Package gameerr defines the user-facing error taxonomy. Every error that
// reaches a session is a *Error whose Message is safe to show the player.
package gameerr

import "errors"

// Kind classifies where an error was detected.
type Kind int

const (
	// KindValidation covers missing or malformed request fields.
	KindValidation Kind = iota
	// KindAuthorization covers missing login, missing player and privilege checks.
	KindAuthorization
	// KindConflict covers requests that clash with current session or map state.
	KindConflict
	// KindRule covers game rule violations such as casting while recharging.
	KindRule
	// KindPersistence covers store failures.
	KindPersistence
)

// String returns the kind label used in log fields.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindRule:
		return "rule"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified error with a player-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, never shown to the player.
	Err error
}

// Error returns the player-facing message.
func (e *Error) Error() string { return e.Message }

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so sentinel
// comparisons survive Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// New returns an Error of kind with message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a copy of sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// Sentinels shared across packages.
var (
	ErrBadRequest    = New(KindValidation, "Bad request.")
	ErrNotLoggedIn   = New(KindAuthorization, "Not logged in.")
	ErrNoPlayer      = New(KindAuthorization, "No active player.")
	ErrInsufficient  = New(KindAuthorization, "Insufficient privileges.")
	ErrServer        = New(KindPersistence, "Server error.")
	ErrNameTaken     = New(KindPersistence, "Name unavailable.")
	ErrAlreadyInMap  = New(KindConflict, "Already in a map.")
	ErrNotInMap      = New(KindConflict, "Not in a map.")
	ErrMapNotFound   = New(KindValidation, "Map not found.")
	ErrUnknownTarget = New(KindRule, "Invalid target.")
	ErrMapFull       = New(KindConflict, "Map at capacity.")
	ErrAlreadyJoined = New(KindConflict, "Already in the map.")
	ErrUnitInMap     = New(KindConflict, "Unit already in a map.")
	ErrWrongPassword = New(KindRule, "Wrong password.")

	ErrVersionMismatch  = New(KindValidation, "Client version mismatch.")
	ErrBadCredentials   = New(KindAuthorization, "Invalid username or password.")
	ErrAlreadyLoggedIn  = New(KindConflict, "Already logged in.")
	ErrInvalidName      = New(KindValidation, "Invalid name.")
	ErrInvalidArchetype = New(KindValidation, "Invalid archetype.")
	ErrPlayerNotFound   = New(KindValidation, "Player not found.")
	ErrPlayerActive     = New(KindConflict, "Player is active.")
	ErrPlayerSelected   = New(KindConflict, "Player already selected.")
	ErrMessageTooLong   = New(KindValidation, "Message too long.")
	ErrUnknownCommand   = New(KindValidation, "Unknown command.")
)

// Message returns the text to send to the player for err. Errors outside the
// taxonomy are reported as a generic server error.
func Message(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return ErrServer.Message
}

// KindOf returns the Kind of err, defaulting to KindPersistence for foreign
// errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindPersistence
}
