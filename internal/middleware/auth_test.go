package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/model"
)

// fakeProvider resolves a single hard-coded token.
type fakeProvider struct {
	token string
	user  *model.User
	sess  *model.Session
	err   error
}

func (f *fakeProvider) SignUp(context.Context, string, string, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) SignIn(context.Context, string, string) (*model.Session, *model.User, error) {
	return nil, nil, errors.New("not implemented")
}

func (f *fakeProvider) SignOut(context.Context, string) error { return nil }

func (f *fakeProvider) CurrentUser(_ context.Context, token string) (*model.User, *model.Session, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if token != f.token {
		return nil, nil, nil
	}
	return f.user, f.sess, nil
}

func (f *fakeProvider) UpdateProfile(context.Context, int64, string, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		token: "good-token",
		user:  &model.User{ID: 7, Email: "ana@example.com"},
		sess:  &model.Session{ID: 11, UserID: 7, Token: "good-token"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuthNoToken(t *testing.T) {
	handler := RequireAuth(newFakeProvider(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/lists", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := RequireAuth(newFakeProvider(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/lists", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthProviderError(t *testing.T) {
	p := newFakeProvider()
	p.err = errors.New("db down")
	handler := RequireAuth(p, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/lists", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
		}},
		{"bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good-token")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAC auth.AuthContext
			handler := RequireAuth(newFakeProvider(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ac, ok := auth.FromContext(r.Context())
				if !ok {
					t.Fatal("expected AuthContext in request context")
				}
				gotAC = ac
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/lists", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if gotAC.UserID != 7 {
				t.Errorf("UserID = %d, want 7", gotAC.UserID)
			}
			if gotAC.SessionID != 11 {
				t.Errorf("SessionID = %d, want 11", gotAC.SessionID)
			}
			if gotAC.Token != "good-token" {
				t.Errorf("Token = %q, want %q", gotAC.Token, "good-token")
			}
		})
	}
}

func TestSessionTokenPrefersCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	if got := SessionToken(req); got != "from-cookie" {
		t.Errorf("SessionToken = %q, want %q", got, "from-cookie")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	if got := SessionToken(req); got != "" {
		t.Errorf("SessionToken = %q, want empty", got)
	}
}
