// Package identity signs users up and in. Provider is the only way the rest
// of the application reaches user accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
)

const minPasswordLength = 8

type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	SignOut(ctx context.Context, token string) error
	// CurrentUser resolves a session token. It returns (nil, nil, nil) for an
	// unknown or expired token.
	CurrentUser(ctx context.Context, token string) (*model.User, *model.Session, error)
	UpdateProfile(ctx context.Context, userID int64, displayName, photoURL string) (*model.User, error)
}

type UserStore interface {
	Create(ctx context.Context, email, displayName, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, displayName, photoURL string) (*model.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// PasswordProvider authenticates with bcrypt-hashed passwords and issues
// database-backed session tokens.
type PasswordProvider struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	cost     int
}

var _ Provider = (*PasswordProvider)(nil)

func NewPasswordProvider(users UserStore, sessions SessionStore, ttl time.Duration) *PasswordProvider {
	return &PasswordProvider{users: users, sessions: sessions, ttl: ttl, cost: bcrypt.DefaultCost}
}

func (p *PasswordProvider) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	return p.users.Create(ctx, email, displayName, string(hash))
}

func (p *PasswordProvider) SignIn(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := p.sessions.Create(ctx, user.ID, p.ttl)
	if err != nil {
		return nil, nil, err
	}
	return sess, user, nil
}

func (p *PasswordProvider) SignOut(ctx context.Context, token string) error {
	return p.sessions.DeleteByToken(ctx, token)
}

func (p *PasswordProvider) CurrentUser(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if token == "" {
		return nil, nil, nil
	}
	sess, err := p.sessions.GetByToken(ctx, token)
	if err != nil || sess == nil {
		return nil, nil, err
	}
	user, err := p.users.GetByID(ctx, sess.UserID)
	if err != nil || user == nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func (p *PasswordProvider) UpdateProfile(ctx context.Context, userID int64, displayName, photoURL string) (*model.User, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = user.DisplayName
	}
	return p.users.UpdateProfile(ctx, userID, displayName, photoURL)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}
	return email, nil
}
