package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    1,
		SessionID: 3,
		Email:     "ana@example.com",
		Token:     "tok",
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != 1 {
		t.Errorf("UserID = %d, want 1", UserID(ctx))
	}
	if Token(ctx) != "tok" {
		t.Errorf("Token = %q, want %q", Token(ctx), "tok")
	}
	if !IsAuthenticated(ctx) {
		t.Error("expected authenticated context")
	}
}

func TestFromContextEmpty(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no AuthContext")
	}
	if UserID(ctx) != 0 {
		t.Errorf("UserID = %d, want 0", UserID(ctx))
	}
	if Token(ctx) != "" {
		t.Errorf("Token = %q, want empty", Token(ctx))
	}
	if IsAuthenticated(ctx) {
		t.Error("expected unauthenticated context")
	}
}
