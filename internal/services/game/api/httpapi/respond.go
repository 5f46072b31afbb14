package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
)

const (
	codeInternal        = "INTERNAL_ERROR"
	codeInvalidCommand  = "INVALID_COMMAND"
	codeInvalidRequest  = "INVALID_REQUEST"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeCampaignIDMatch = "CAMPAIGN_ID_MISMATCH"

	maxBodyBytes = 1 << 20
)

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RespondJSON writes data as JSON with status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError maps err to a status and a {code, message} body. Malformed
// commands are 400, coded domain errors use their code's status, and
// anything else is an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	if isSchemaError(err) {
		RespondJSON(w, http.StatusBadRequest, errorBody{Code: codeInvalidCommand, Message: err.Error()})
		return
	}
	if appErr, ok := apperrors.As(err); ok {
		status := appErr.Code.HTTPStatus()
		if status == http.StatusInternalServerError {
			RespondJSON(w, status, errorBody{Code: codeInternal, Message: "internal server error"})
			return
		}
		RespondJSON(w, status, errorBody{Code: string(appErr.Code), Message: appErr.Message, Metadata: appErr.Metadata})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, errorBody{Code: codeInternal, Message: "internal server error"})
}

func respondBadRequest(w http.ResponseWriter, code, message string) {
	RespondJSON(w, http.StatusBadRequest, errorBody{Code: code, Message: message})
}

func respondUnauthenticated(w http.ResponseWriter) {
	RespondJSON(w, http.StatusUnauthorized, errorBody{
		Code:    codeUnauthenticated,
		Message: "X-User-Id and X-Role (gm or player) headers are required",
	})
}

// statusOf is the status RespondError would write for err.
func statusOf(err error) int {
	if isSchemaError(err) {
		return http.StatusBadRequest
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func isSchemaError(err error) bool {
	for _, target := range []error{
		command.ErrTypeRequired,
		command.ErrTypeUnknown,
		command.ErrCampaignIDRequired,
		command.ErrPayloadInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
