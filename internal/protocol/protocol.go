// Package protocol defines the session message envelope, the frame format
// that batches envelopes and the payload of every message type.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Delimiter separates envelopes inside one transport frame.
const Delimiter = "?&?"

// Message types.
const (
	TypeLogin        = "login"
	TypeLogout       = "logout"
	TypePlayerList   = "player-list"
	TypePlayerCreate = "player-create"
	TypePlayerDelete = "player-delete"
	TypePlayerSelect = "player-select"
	TypeMapList      = "map-list"
	TypeMapCreate    = "map-create"
	TypeMapJoin      = "map-join"
	TypeMapLeave     = "map-leave"
	TypePlayerUpdate = "player-update"
	TypeChat         = "chat"
	TypeAbilityCast  = "ability-cast"

	TypeEntCreate   = "ent-create"
	TypeEntDelete   = "ent-delete"
	TypeEntUpdate   = "ent-update"
	TypeStatsUpdate = "stats-update"
	TypeMapFX       = "map-fx"
)

// ErrEmptyType is returned when an envelope carries no type.
var ErrEmptyType = errors.New("protocol: envelope type must not be empty")

// Envelope is one message: a type and its JSON payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of any response that failed.
type ErrorData struct {
	Error string `json:"error"`
}

// New returns an envelope of typ carrying data. A nil data yields an empty
// object.
//
// Postcondition: Returns an error only if data cannot be marshalled.
func New(typ string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: typ, Data: json.RawMessage("{}")}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return Envelope{Type: typ, Data: raw}, nil
}

// Must is New for payloads that always marshal.
func Must(typ string, data any) Envelope {
	env, err := New(typ, data)
	if err != nil {
		panic(err)
	}
	return env
}

// Error returns a response of typ carrying message instead of its success
// payload.
func Error(typ, message string) Envelope {
	return Must(typ, ErrorData{Error: message})
}

// Decode unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// Encode joins envelopes into a single frame.
func Encode(envs []Envelope) ([]byte, error) {
	var buf bytes.Buffer
	for i, env := range envs {
		if i > 0 {
			buf.WriteString(Delimiter)
		}
		raw, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("encoding %s envelope: %w", env.Type, err)
		}
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// Decode splits a frame into its envelopes. Empty segments are skipped.
//
// Postcondition: Returns the envelopes in frame order, or the first error.
func Decode(frame []byte) ([]Envelope, error) {
	var envs []Envelope
	for _, part := range bytes.Split(frame, []byte(Delimiter)) {
		part = bytes.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(part, &env); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		if env.Type == "" {
			return nil, ErrEmptyType
		}
		envs = append(envs, env)
	}
	return envs, nil
}
