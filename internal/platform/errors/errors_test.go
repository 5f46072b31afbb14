package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	first := New(CodePhaseNotAction, "wrong phase")
	second := New(CodePhaseNotAction, "different message")
	if !stderrors.Is(first, second) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(first, New(CodePlayerUnknown, "wrong phase")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestRejectionSeparatesRulesFromInfrastructure(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeRoleForbidden, true},
		{CodeInsufficientGold, true},
		{CodePlayerDisplayNameTaken, true},
		{CodeSequenceConflict, false},
		{CodeNotFound, false},
		{CodeCampaignIDInvalid, false},
		{CodeUnknown, false},
	}
	for _, tc := range tests {
		if got := tc.code.Rejection(); got != tc.want {
			t.Fatalf("%s.Rejection() = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	err := fmt.Errorf("decide: %w", New(CodeInsufficientGold, "not enough gold"))
	if got := CodeOf(err); got != CodeInsufficientGold {
		t.Fatalf("CodeOf = %s, want %s", got, CodeInsufficientGold)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %s, want %s", got, CodeUnknown)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeRoleForbidden, http.StatusForbidden},
		{CodeCampaignNotFound, http.StatusNotFound},
		{CodePlayerAlreadyJoined, http.StatusConflict},
		{CodeSequenceConflict, http.StatusConflict},
		{CodeActionAlreadyUsed, http.StatusUnprocessableEntity},
		{CodeSeedOutOfRange, http.StatusBadRequest},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}
