package event

import "fmt"

// Scope is the audience class of an event.
type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

// Visibility names who may read an event. Private events belong to one player.
type Visibility struct {
	Scope    Scope  `json:"scope"`
	PlayerID string `json:"playerId,omitempty"`
}

// Public returns a visibility readable by every participant.
func Public() Visibility {
	return Visibility{Scope: ScopePublic}
}

// Private returns a visibility readable by playerID and the GM.
func Private(playerID string) Visibility {
	return Visibility{Scope: ScopePrivate, PlayerID: playerID}
}

// IsPublic reports whether the event is readable by everyone.
func (v Visibility) IsPublic() bool {
	return v.Scope == ScopePublic
}

// VisibleTo reports whether a player may read the event.
func (v Visibility) VisibleTo(playerID string) bool {
	if v.IsPublic() {
		return true
	}
	return playerID != "" && v.PlayerID == playerID
}

// Validate checks the scope and player pairing.
func (v Visibility) Validate() error {
	switch v.Scope {
	case ScopePublic:
		if v.PlayerID != "" {
			return fmt.Errorf("%w: public event names player %q", ErrVisibilityInvalid, v.PlayerID)
		}
	case ScopePrivate:
		if v.PlayerID == "" {
			return fmt.Errorf("%w: private event has no player", ErrVisibilityInvalid)
		}
	default:
		return fmt.Errorf("%w: scope %q", ErrVisibilityInvalid, v.Scope)
	}
	return nil
}
