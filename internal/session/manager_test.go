package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/auth"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
)

// stubAuthenticator returns fixed users without touching storage.
type stubAuthenticator struct {
	users map[string]string // email -> password
}

func (s *stubAuthenticator) Register(ctx context.Context, email, credential string) (*models.User, error) {
	if _, exists := s.users[email]; exists {
		return nil, auth.ErrEmailExists
	}
	s.users[email] = credential
	return &models.User{ID: "id-" + email, Email: email}, nil
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	if pw, ok := s.users[email]; !ok || pw != credential {
		return nil, auth.ErrInvalidCredentials
	}
	return &models.User{ID: "id-" + email, Email: email}, nil
}

func (s *stubAuthenticator) ValidateCredential(credential string) error { return nil }

func newTestManager() (*Manager, *stubAuthenticator) {
	a := &stubAuthenticator{users: map[string]string{"a@b.com": "secret1"}}
	return NewManager(a, auth.NewJWTManager("test-secret", time.Hour)), a
}

func TestStartWithoutCredential(t *testing.T) {
	m, _ := newTestManager()

	var seen []State
	unsub := m.Subscribe(func(s Snapshot) { seen = append(seen, s.State) })
	defer unsub()

	m.Start(context.Background(), "")

	// Immediate delivery of the current state, then one per transition.
	assert.Equal(t, []State{Uninitialized, Loading, Anonymous}, seen)
}

func TestStartWithPersistedCredential(t *testing.T) {
	m, _ := newTestManager()

	// Produce a valid token via a normal login, then restart a fresh manager
	// with it persisted.
	sess, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	token := m.Token()
	require.NotEmpty(t, token)

	m2 := NewManager(&stubAuthenticator{}, auth.NewJWTManager("test-secret", time.Hour))
	var seen []Snapshot
	m2.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	m2.Start(context.Background(), token)

	require.Len(t, seen, 3)
	assert.Equal(t, Authenticated, seen[2].State)
	require.NotNil(t, seen[2].Session)
	assert.Equal(t, sess.UserID, seen[2].Session.UserID)
	assert.Equal(t, "a@b.com", seen[2].Session.Email)
}

func TestStartWithExpiredCredential(t *testing.T) {
	expired := auth.NewJWTManager("test-secret", -time.Minute)
	token, err := expired.Generate(&models.User{ID: "user-1", Email: "a@b.com"})
	require.NoError(t, err)

	m := NewManager(&stubAuthenticator{}, auth.NewJWTManager("test-secret", time.Hour))
	m.Start(context.Background(), token)

	assert.Equal(t, Anonymous, m.Current().State)
}

func TestLoginLogoutTransitions(t *testing.T) {
	m, _ := newTestManager()
	m.Start(context.Background(), "")

	var seen []State
	unsub := m.Subscribe(func(s Snapshot) { seen = append(seen, s.State) })
	defer unsub()

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	m.Logout()
	// A second logout is a no-op: no duplicate anonymous delivery.
	m.Logout()
	_, err = m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, []State{Anonymous, Authenticated, Anonymous, Authenticated}, seen)
}

func TestFailedLoginPublishesNothing(t *testing.T) {
	m, _ := newTestManager()
	m.Start(context.Background(), "")

	var deliveries int
	unsub := m.Subscribe(func(Snapshot) { deliveries++ })
	defer unsub()

	_, err := m.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 1, deliveries, "only the immediate subscribe delivery")
}

func TestRegisterDropsSession(t *testing.T) {
	m, _ := newTestManager()
	m.Start(context.Background(), "")

	sess, err := m.Register(context.Background(), "new@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", sess.Email)

	// Registration never leaves the user signed in.
	assert.Equal(t, Anonymous, m.Current().State)
	assert.Empty(t, m.Token())
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	m, _ := newTestManager()

	var deliveries int
	unsub := m.Subscribe(func(Snapshot) { deliveries++ })
	unsub()

	m.Start(context.Background(), "")
	assert.Equal(t, 1, deliveries, "only the immediate subscribe delivery")
}
