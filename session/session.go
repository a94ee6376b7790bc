package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/models"
)

// ErrNotAuthenticated is returned by the token provider when no valid login
// is present. Authenticated API calls fail fast with it.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// fallbackTokenLifetime is assumed when the server token carries no expiry
// claim.
const fallbackTokenLifetime = 24 * time.Hour

// AuthAPI is the slice of the server API the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*models.AuthResponse, error)
}

// Store persists the session across restarts. May be nil for a purely
// in-memory session.
type Store interface {
	SaveSession(token string, user *models.User, expiresAt time.Time) error
	LoadSession() (string, *models.User, time.Time, error)
	DeleteSession() error
}

// Manager is the process-wide auth state with an explicit lifecycle:
// restored from the store at startup, mutated only by Login, Register and
// Logout, torn down on logout.
type Manager struct {
	auth  AuthAPI
	store Store

	mu        sync.Mutex
	token     string
	user      *models.User
	expiresAt time.Time
	now       func() time.Time
}

// NewManager creates a logged-out manager.
func NewManager(auth AuthAPI, store Store) *Manager {
	return &Manager{auth: auth, store: store, now: time.Now}
}

// Restore loads a persisted session if one exists and has not expired.
func (m *Manager) Restore() {
	if m.store == nil {
		return
	}

	token, user, expiresAt, err := m.store.LoadSession()
	if err != nil {
		log.Printf("session: no persisted session restored: %v", err)
		return
	}
	if !m.now().Before(expiresAt) {
		log.Printf("session: persisted session for %s expired, discarding", user.Username)
		if delErr := m.store.DeleteSession(); delErr != nil {
			log.Printf("session: failed to discard expired session: %v", delErr)
		}
		return
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.expiresAt = expiresAt
	m.mu.Unlock()
	log.Printf("session: restored session for %s (expires %s)", user.Username, expiresAt.Format(time.RFC3339))
}

// Login exchanges credentials for a token and makes the account the current
// session. On failure the previous session state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := m.auth.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return m.adopt(resp)
}

// Register creates a new account and logs it in immediately.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	resp, err := m.auth.Register(ctx, api.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return m.adopt(resp)
}

// adopt installs a confirmed auth response as the current session and
// persists it.
func (m *Manager) adopt(resp *models.AuthResponse) (*models.User, error) {
	expiresAt := tokenExpiry(resp.Token, m.now())
	user := resp.User

	m.mu.Lock()
	m.token = resp.Token
	m.user = &user
	m.expiresAt = expiresAt
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SaveSession(resp.Token, &user, expiresAt); err != nil {
			// the in-memory session still works; persistence is best-effort
			log.Printf("session: failed to persist session: %v", err)
		}
	}
	return &user, nil
}

// Logout tears the session down and removes the persisted copy.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.DeleteSession(); err != nil {
			return fmt.Errorf("session: removing persisted session: %w", err)
		}
	}
	return nil
}

// Token implements api.TokenProvider. It fails with ErrNotAuthenticated when
// logged out or when the token has expired.
func (m *Manager) Token(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", ErrNotAuthenticated
	}
	if !m.now().Before(m.expiresAt) {
		return "", ErrNotAuthenticated
	}
	return m.token, nil
}

// CurrentUser returns the logged-in account, or nil.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// LoggedIn reports whether a non-expired session is present.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.now().Before(m.expiresAt)
}

// tokenExpiry reads the expiry claim from the server token without verifying
// the signature; the server is the verifier, the client only needs to know
// when to ask for a fresh login.
func tokenExpiry(token string, now time.Time) time.Time {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		log.Printf("session: token carries no readable expiry, assuming %s", fallbackTokenLifetime)
		return now.Add(fallbackTokenLifetime)
	}
	return claims.ExpiresAt.Time
}
