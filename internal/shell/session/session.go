// Package session implements cookie-based browser sessions. The cookie
// carries an opaque token; the session row lives in the store, so
// logging out or expiry invalidates the token server side.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/shell/store"
)

// =============================================================================
// Manager
// =============================================================================

// Config holds session manager configuration.
type Config struct {
	// CookieName is the session cookie's name.
	CookieName string

	// TTL is how long a session stays valid after login.
	TTL time.Duration

	// Secure marks the cookie Secure (HTTPS-only deployments).
	Secure bool
}

// DefaultConfig returns default session settings.
func DefaultConfig() Config {
	return Config{
		CookieName: "polarbid_session",
		TTL:        7 * 24 * time.Hour,
		Secure:     false,
	}
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

// NewManager creates a session manager backed by the given store.
func NewManager(s store.Store, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultConfig().CookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{store: s, cfg: cfg, now: time.Now}
}

// Start opens a session for the user and sets the session cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID int64) error {
	now := m.now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// User resolves the request's session to its user. An absent cookie,
// unknown token or expired session yields (nil, nil); only store
// failures are errors.
func (m *Manager) User(ctx context.Context, r *http.Request) (*domain.User, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil, nil
	}

	session, err := m.store.GetSession(ctx, cookie.Value)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(m.now()) {
		// Stale row; removing it is best effort.
		_ = m.store.DeleteSession(ctx, session.Token)
		return nil, nil
	}

	user, err := m.store.GetUser(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Destroy removes the request's session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err == nil {
		if delErr := m.store.DeleteSession(ctx, cookie.Value); delErr != nil {
			return delErr
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
