package campaign

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrCommandRequired indicates a nil command.
	ErrCommandRequired = errors.New("command is required")
	// ErrRNGRequired indicates a command that rolls dice was decided without a provider.
	ErrRNGRequired = errors.New("random provider is required")
)

// Options carries everything Decide reads besides state and command.
type Options struct {
	Actor event.Actor
	// RNG is consumed only by commands that roll dice.
	RNG random.Provider
	// Rules defaults to rules.Default when nil.
	Rules *rules.Rules
}

func (o Options) rules() rules.Rules {
	if o.Rules == nil {
		return rules.Default()
	}
	return *o.Rules
}

// Decide validates cmd against state and returns the events it produces.
// A rejected command returns a *apperrors.Error and no events.
func Decide(state State, cmd command.Command, opts Options) ([]event.Event, error) {
	r := opts.rules()
	switch c := cmd.(type) {
	case nil:
		return nil, ErrCommandRequired
	case command.CreateCampaign:
		return decideCreate(state, c, opts.Actor, r)
	case command.JoinCampaign:
		return decideJoin(state, c, opts.Actor, r)
	case command.AdvancePhase:
		return decideAdvance(state, c, opts.Actor, r)
	case command.GatherMaterials:
		return decideGather(state, c, opts, r)
	case command.AcquireOffice:
		return decideAcquireOffice(state, c, opts.Actor, r)
	case command.FoundOrganization:
		return decideFoundOrganization(state, c, opts.Actor, r)
	case command.QueueConversion:
		return decideQueueConversion(state, c, opts.Actor)
	case command.AddPrivateNote:
		return decideAddNote(state, c, opts.Actor, r)
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func reject(code apperrors.Code, message string) error {
	return apperrors.New(code, message)
}

func rejectf(code apperrors.Code, format string, args ...any) error {
	return apperrors.New(code, fmt.Sprintf(format, args...))
}

// normalizeText trims and composes user text so equal-looking names compare equal.
func normalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// isCampaignGM reports whether actor is the GM who created the campaign.
func isCampaignGM(state State, actor event.Actor) bool {
	if !actor.IsGM() || actor.UserID == "" {
		return false
	}
	return state.GMUserID == "" || state.GMUserID == actor.UserID
}

// actingPlayer resolves the player behind actor after the role and campaign checks.
func actingPlayer(state State, actor event.Actor) (PlayerState, error) {
	if actor.Role != event.RolePlayer || actor.UserID == "" {
		return PlayerState{}, reject(apperrors.CodeRoleForbidden, "command requires a player identity")
	}
	if !state.Created {
		return PlayerState{}, reject(apperrors.CodeCampaignNotFound, "campaign does not exist")
	}
	player, ok := state.PlayerByUser(actor.UserID)
	if !ok {
		return PlayerState{}, rejectf(apperrors.CodePlayerUnknown, "user %s has not joined the campaign", actor.UserID)
	}
	return player, nil
}
