package requestctx

import (
	"context"
	"testing"
)

func TestUserIDFromContextRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-42")
	if got := UserIDFromContext(ctx); got != "user-42" {
		t.Fatalf("UserIDFromContext = %q, want %q", got, "user-42")
	}
}

func TestRoleFromContextRoundTrip(t *testing.T) {
	ctx := WithRole(WithUserID(context.Background(), "user-42"), "gm")
	if got := RoleFromContext(ctx); got != "gm" {
		t.Fatalf("RoleFromContext = %q, want %q", got, "gm")
	}
	if got := UserIDFromContext(ctx); got != "user-42" {
		t.Fatalf("UserIDFromContext = %q, want %q", got, "user-42")
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
	if got := RoleFromContext(nil); got != "" {
		t.Fatalf("expected empty role for nil context, got %q", got)
	}
}

func TestWithRoleNilContext(t *testing.T) {
	ctx := WithRole(nil, "player")
	if got := RoleFromContext(ctx); got != "player" {
		t.Fatalf("RoleFromContext = %q, want %q", got, "player")
	}
}
