package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Role is the privilege class of an actor.
type Role string

const (
	RoleGM     Role = "gm"
	RolePlayer Role = "player"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleGM || r == RolePlayer
}

// ParseRole parses a role string.
func ParseRole(value string) (Role, error) {
	r := Role(value)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return r, nil
}

// Actor is the identity that submitted a command.
type Actor struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// IsGM reports whether the actor holds the gm role.
func (a Actor) IsGM() bool {
	return a.Role == RoleGM
}

// Stored is an event as persisted in a campaign log.
type Stored struct {
	ID    string    `json:"id"`
	Seq   uint64    `json:"seq"`
	TS    time.Time `json:"ts"`
	Actor Actor     `json:"actor"`
	Event Event     `json:"event"`
}

// ErrLineEmpty indicates a blank log line.
var ErrLineEmpty = errors.New("event line is empty")

// MarshalLine encodes a stored event as a single JSON line without the
// trailing newline.
func MarshalLine(s Stored) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode stored event %d: %w", s.Seq, err)
	}
	return data, nil
}

// ParseLine decodes one log line.
func ParseLine(line []byte) (Stored, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Stored{}, ErrLineEmpty
	}
	var s Stored
	if err := json.Unmarshal(line, &s); err != nil {
		return Stored{}, fmt.Errorf("decode stored event: %w", err)
	}
	if s.Seq == 0 {
		return Stored{}, errors.New("decode stored event: seq must be positive")
	}
	return s, nil
}

// Events strips the envelopes from stored events.
func Events(stored []Stored) []Event {
	out := make([]Event, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Event)
	}
	return out
}
