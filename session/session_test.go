package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/models"
)

type fakeAuth struct {
	loginFn func(req api.LoginRequest) (*models.AuthResponse, error)
}

func (f *fakeAuth) Login(_ context.Context, req api.LoginRequest) (*models.AuthResponse, error) {
	return f.loginFn(req)
}

func (f *fakeAuth) Register(_ context.Context, _ api.RegisterRequest) (*models.AuthResponse, error) {
	return nil, errors.New("not implemented")
}

type memStore struct {
	token     string
	user      *models.User
	expiresAt time.Time
	saved     bool
	deletes   int
}

func (m *memStore) SaveSession(token string, user *models.User, expiresAt time.Time) error {
	m.token, m.user, m.expiresAt, m.saved = token, user, expiresAt, true
	return nil
}

func (m *memStore) LoadSession() (string, *models.User, time.Time, error) {
	if !m.saved {
		return "", nil, time.Time{}, errors.New("no session")
	}
	return m.token, m.user, m.expiresAt, nil
}

func (m *memStore) DeleteSession() error {
	m.saved = false
	m.deletes++
	return nil
}

// signedToken builds a real JWT so the unverified expiry parse has something
// to read. The signing key is irrelevant; the manager never verifies.
func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestLoginAdoptsTokenExpiry(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(2 * time.Hour)
	token := signedToken(t, expiry)

	auth := &fakeAuth{loginFn: func(req api.LoginRequest) (*models.AuthResponse, error) {
		if req.Email != "alice@example.com" {
			t.Errorf("email = %q", req.Email)
		}
		return &models.AuthResponse{Token: token, User: models.User{ID: "u1", Username: "alice"}}, nil
	}}
	st := &memStore{}
	m := NewManager(auth, st)
	m.now = func() time.Time { return now }

	user, err := m.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user = %+v", user)
	}
	if !m.LoggedIn() {
		t.Error("LoggedIn() = false after login")
	}

	got, err := m.Token(context.Background())
	if err != nil || got != token {
		t.Errorf("Token() = %q, %v", got, err)
	}

	if !st.saved {
		t.Error("login did not persist the session")
	}
	if !st.expiresAt.Equal(expiry.Truncate(time.Second)) {
		t.Errorf("persisted expiry = %v, want %v", st.expiresAt, expiry)
	}

	// the token stops being served once the expiry passes
	m.now = func() time.Time { return expiry.Add(time.Minute) }
	if _, err := m.Token(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() after expiry: err = %v, want ErrNotAuthenticated", err)
	}
	if m.LoggedIn() {
		t.Error("LoggedIn() = true after expiry")
	}
}

func TestTokenWithoutExpiryClaimUsesFallback(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{loginFn: func(api.LoginRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: "not-a-jwt", User: models.User{ID: "u1"}}, nil
	}}
	m := NewManager(auth, nil)
	m.now = func() time.Time { return now }

	if _, err := m.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// still valid just inside the fallback lifetime, gone just after
	m.now = func() time.Time { return now.Add(fallbackTokenLifetime - time.Minute) }
	if _, err := m.Token(context.Background()); err != nil {
		t.Errorf("Token() inside fallback lifetime: %v", err)
	}
	m.now = func() time.Time { return now.Add(fallbackTokenLifetime + time.Minute) }
	if _, err := m.Token(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() past fallback lifetime: err = %v, want ErrNotAuthenticated", err)
	}
}

func TestFailedLoginLeavesSession(t *testing.T) {
	now := time.Now()
	calls := 0
	auth := &fakeAuth{loginFn: func(api.LoginRequest) (*models.AuthResponse, error) {
		calls++
		if calls == 1 {
			return &models.AuthResponse{Token: signedToken(t, now.Add(time.Hour)), User: models.User{ID: "u1", Username: "alice"}}, nil
		}
		return nil, &api.Error{Status: 401, Message: "invalid credentials"}
	}}
	m := NewManager(auth, nil)

	if _, err := m.Login(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := m.Login(context.Background(), "alice@example.com", "wrong"); err == nil {
		t.Fatal("second login should have failed")
	}

	if !m.LoggedIn() {
		t.Error("failed login tore down the existing session")
	}
	if user := m.CurrentUser(); user == nil || user.Username != "alice" {
		t.Errorf("CurrentUser = %+v", user)
	}
}

func TestRestoreDiscardsExpiredSession(t *testing.T) {
	now := time.Now()
	st := &memStore{}
	st.SaveSession("stale", &models.User{ID: "u1", Username: "alice"}, now.Add(-time.Hour))

	m := NewManager(nil, st)
	m.now = func() time.Time { return now }
	m.Restore()

	if m.LoggedIn() {
		t.Error("expired persisted session was restored")
	}
	if st.deletes != 1 {
		t.Errorf("deletes = %d, want the expired row discarded", st.deletes)
	}
}

func TestRestoreAdoptsValidSession(t *testing.T) {
	now := time.Now()
	st := &memStore{}
	st.SaveSession("fresh", &models.User{ID: "u1", Username: "alice"}, now.Add(time.Hour))

	m := NewManager(nil, st)
	m.now = func() time.Time { return now }
	m.Restore()

	if !m.LoggedIn() {
		t.Fatal("valid persisted session was not restored")
	}
	if token, err := m.Token(context.Background()); err != nil || token != "fresh" {
		t.Errorf("Token() = %q, %v", token, err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	now := time.Now()
	st := &memStore{}
	auth := &fakeAuth{loginFn: func(api.LoginRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: signedToken(t, now.Add(time.Hour)), User: models.User{ID: "u1"}}, nil
	}}
	m := NewManager(auth, st)

	if _, err := m.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if m.LoggedIn() {
		t.Error("LoggedIn() = true after logout")
	}
	if m.CurrentUser() != nil {
		t.Error("CurrentUser() != nil after logout")
	}
	if st.saved {
		t.Error("persisted session survived logout")
	}
	if _, err := m.Token(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() = %v, want ErrNotAuthenticated", err)
	}
}
