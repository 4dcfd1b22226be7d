package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupManager(t *testing.T) (*Manager, *domain.User) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})

	user := &domain.User{
		Email:        "igor@example.com",
		Name:         "Игорь",
		PasswordHash: "hash",
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	return NewManager(s, DefaultConfig()), user
}

func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

// =============================================================================
// Tests
// =============================================================================

func TestStart_SetsHttpOnlyCookie(t *testing.T) {
	m, user := setupManager(t)
	rec := httptest.NewRecorder()

	require.NoError(t, m.Start(context.Background(), rec, user.ID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "polarbid_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestUser_ResolvesSession(t *testing.T) {
	m, user := setupManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), rec, user.ID))

	got, err := m.User(context.Background(), requestWithCookies(t, rec))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Игорь", got.Name)
}

func TestUser_NoCookie(t *testing.T) {
	m, _ := setupManager(t)

	got, err := m.User(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUser_UnknownToken(t *testing.T) {
	m, _ := setupManager(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "polarbid_session", Value: "forged"})

	got, err := m.User(context.Background(), r)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUser_ExpiredSession(t *testing.T) {
	m, user := setupManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), rec, user.ID))

	// Move the manager's clock past the TTL.
	m.now = func() time.Time {
		return time.Now().Add(m.cfg.TTL + time.Hour)
	}

	got, err := m.User(context.Background(), requestWithCookies(t, rec))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroy_InvalidatesToken(t *testing.T) {
	m, user := setupManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), rec, user.ID))
	r := requestWithCookies(t, rec)

	out := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), out, r))

	// The old token no longer resolves even if the cookie is replayed.
	got, err := m.User(context.Background(), r)
	require.NoError(t, err)
	assert.Nil(t, got)

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
