// Package errors provides structured domain errors with stable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization
	CodeRoleForbidden Code = "ROLE_FORBIDDEN"

	// Campaign lifecycle
	CodeCampaignAlreadyExists Code = "CAMPAIGN_ALREADY_EXISTS"
	CodeCampaignNotFound      Code = "CAMPAIGN_NOT_FOUND"
	CodeCampaignNameEmpty     Code = "CAMPAIGN_NAME_EMPTY"
	CodeCampaignNameTooLong   Code = "CAMPAIGN_NAME_TOO_LONG"

	// Players
	CodePlayerAlreadyJoined      Code = "PLAYER_ALREADY_JOINED"
	CodePlayerUnknown            Code = "PLAYER_UNKNOWN"
	CodePlayerDisplayNameEmpty   Code = "PLAYER_DISPLAY_NAME_EMPTY"
	CodePlayerDisplayNameTooLong Code = "PLAYER_DISPLAY_NAME_TOO_LONG"
	CodePlayerDisplayNameTaken   Code = "PLAYER_DISPLAY_NAME_TAKEN"

	// Phases
	CodePhaseMismatch  Code = "PHASE_MISMATCH"
	CodePhaseNotAction Code = "PHASE_NOT_ACTION"

	// Player actions
	CodeGatherModeInvalid     Code = "GATHER_MODE_INVALID"
	CodeInvestmentsInvalid    Code = "INVESTMENTS_INVALID"
	CodeActionAlreadyUsed     Code = "ACTION_ALREADY_USED"
	CodeActionBudgetExhausted Code = "ACTION_BUDGET_EXHAUSTED"
	CodeHoldingTierInvalid    Code = "HOLDING_TIER_INVALID"
	CodeConversionInvalid     Code = "CONVERSION_AMOUNT_INVALID"
	CodeInsufficientLabor     Code = "INSUFFICIENT_LABOR"
	CodeInsufficientInfluence Code = "INSUFFICIENT_INFLUENCE"
	CodeInsufficientGold      Code = "INSUFFICIENT_GOLD"
	CodeInsufficientMaterials Code = "INSUFFICIENT_MATERIALS"
	CodeNoteEmpty             Code = "NOTE_EMPTY"
	CodeNoteTooLong           Code = "NOTE_TOO_LONG"

	// Storage
	CodeNotFound          Code = "NOT_FOUND"
	CodeSequenceConflict  Code = "SEQUENCE_CONFLICT"
	CodeCampaignIDInvalid Code = "CAMPAIGN_ID_INVALID"

	// Random/seed
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeRoleForbidden:
		return http.StatusForbidden

	case CodeCampaignNotFound,
		CodeNotFound:
		return http.StatusNotFound

	case CodeCampaignAlreadyExists,
		CodePlayerAlreadyJoined,
		CodePlayerDisplayNameTaken,
		CodeSequenceConflict:
		return http.StatusConflict

	case CodeCampaignIDInvalid,
		CodeSeedOutOfRange:
		return http.StatusBadRequest

	case CodeUnknown:
		return http.StatusInternalServerError

	default:
		// Remaining codes are rule violations against current state.
		return http.StatusUnprocessableEntity
	}
}

// Rejection reports whether c is a rule refusing a command against the
// current state, as opposed to a storage, concurrency or input failure.
func (c Code) Rejection() bool {
	switch c.HTTPStatus() {
	case http.StatusForbidden, http.StatusUnprocessableEntity:
		return true
	case http.StatusConflict:
		return c != CodeSequenceConflict
	default:
		return false
	}
}
