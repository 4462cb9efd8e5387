package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/avatar"
	"github.com/dukerupert/shoplist/internal/identity"
	"github.com/dukerupert/shoplist/internal/middleware"
	"github.com/dukerupert/shoplist/internal/model"
)

const avatarFormField = "avatar"

// AvatarUploader stores a profile image and returns its download URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID int64, r io.Reader) (string, error)
}

type AuthHandler struct {
	provider identity.Provider
	avatars  AvatarUploader
	logger   *slog.Logger
}

func NewAuthHandler(provider identity.Provider, avatars AvatarUploader, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		avatars:  avatars,
		logger:   logger.With("component", "auth_handler"),
	}
}

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// SignUp registers an account and signs it in straight away.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.provider.SignUp(r.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		h.writeIdentityError(w, err)
		return
	}

	sess, user, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess, user))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, user, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, newSessionResponse(sess, user))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := auth.Token(r.Context()); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.logger.Error("sign out", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.provider.CurrentUser(r.Context(), auth.Token(r.Context()))
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,url"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.provider.UpdateProfile(r.Context(), auth.UserID(r.Context()), req.DisplayName, req.PhotoURL)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar stores the multipart "avatar" file and makes its URL the
// caller's photo URL.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image storage is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxSize+1<<20)
	file, _, err := r.FormFile(avatarFormField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	ctx := r.Context()
	userID := auth.UserID(ctx)

	url, err := h.avatars.Upload(ctx, userID, file)
	switch {
	case errors.Is(err, avatar.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image storage is not configured"})
		return
	case errors.Is(err, avatar.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "image is larger than 5 MiB"})
		return
	case errors.Is(err, avatar.ErrUnsupported):
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "image must be jpeg, png, webp or gif"})
		return
	case err != nil:
		h.logger.Error("upload avatar", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload image"})
		return
	}

	// A blank display name keeps the current one.
	user, err := h.provider.UpdateProfile(ctx, userID, "", url)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) writeIdentityError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, identity.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, identity.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, identity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("identity", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func newSessionResponse(sess *model.Session, user *model.User) sessionResponse {
	return sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
	}
}
