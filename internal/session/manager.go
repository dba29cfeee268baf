// Package session tracks the current authenticated identity and publishes
// every change to subscribers, mirroring an identity SDK's credential-change
// listener as an explicit callback registration.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/auth"
)

// State is the session lifecycle phase.
type State int

const (
	// Uninitialized means Start has not been called yet.
	Uninitialized State = iota
	// Loading means the persisted credential is still being resolved.
	Loading
	// Authenticated means a valid session exists.
	Authenticated
	// Anonymous means no session exists.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is a read-only snapshot of the authenticated identity.
type Session struct {
	UserID string
	Email  string
}

// Snapshot is one published session state. Session is nil unless State is
// Authenticated.
type Snapshot struct {
	State   State
	Session *Session
}

// Manager owns the session lifecycle. All transitions (login, register,
// logout, credential expiry at startup) funnel through the same notification
// path, so subscribers see exactly one delivery per transition with no
// consecutive duplicates. There is no terminal state; the session cycles
// between authenticated and anonymous indefinitely.
type Manager struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager

	mu     sync.Mutex
	snap   Snapshot
	token  string
	subs   map[int]func(Snapshot)
	nextID int
}

// NewManager creates a Manager in the uninitialized state. Call Start to
// resolve any persisted credential and begin publishing.
func NewManager(authenticator auth.Authenticator, tokens *auth.JWTManager) *Manager {
	return &Manager{
		authenticator: authenticator,
		tokens:        tokens,
		snap:          Snapshot{State: Uninitialized},
		subs:          make(map[int]func(Snapshot)),
	}
}

// Start publishes the loading phase, then resolves persistedToken into either
// an authenticated or anonymous session. An expired or malformed token is
// treated as no session, not an error.
func (m *Manager) Start(ctx context.Context, persistedToken string) {
	m.setState(Snapshot{State: Loading}, "")

	if persistedToken == "" {
		m.setState(Snapshot{State: Anonymous}, "")
		return
	}

	claims, err := m.tokens.Validate(persistedToken)
	if err != nil {
		slog.Debug("persisted credential rejected", "error", err)
		m.setState(Snapshot{State: Anonymous}, "")
		return
	}

	m.setState(Snapshot{
		State:   Authenticated,
		Session: &Session{UserID: claims.UserID, Email: claims.Email},
	}, persistedToken)
}

// Register creates a new account and immediately drops the resulting session,
// so the caller lands back on the login flow rather than in the authenticated
// state. The created identity is returned for display purposes only.
func (m *Manager) Register(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.authenticator.Register(ctx, email, password)
	if err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		return nil, err
	}

	// Sign out immediately so the user goes through login.
	m.setState(Snapshot{State: Anonymous}, "")

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &Session{UserID: user.ID, Email: user.Email}, nil
}

// Login exchanges credentials for a session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email, "error", err)
		return nil, err
	}

	token, err := m.tokens.Generate(user)
	if err != nil {
		slog.Error("failed to generate session token", "user_id", user.ID, "error", err)
		return nil, err
	}

	sess := &Session{UserID: user.ID, Email: user.Email}
	m.setState(Snapshot{State: Authenticated, Session: sess}, token)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return sess, nil
}

// Logout invalidates the current session. Logging out while anonymous is a
// no-op and publishes nothing.
func (m *Manager) Logout() {
	m.setState(Snapshot{State: Anonymous}, "")
}

// Current returns the latest published snapshot.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Token returns the credential backing the current session, or "" when
// anonymous. The HTTP surface sends it as a bearer token.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Subscribe registers fn for session-change notifications. fn is invoked
// immediately with the current state, then once per subsequent transition.
// The returned function unregisters fn; failing to call it on teardown leaks
// the registration.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	current := m.snap
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// setState publishes snap unless it equals the current state. Callbacks run
// outside the lock so a subscriber may call back into the manager.
func (m *Manager) setState(snap Snapshot, token string) {
	m.mu.Lock()
	if sameSnapshot(m.snap, snap) {
		m.mu.Unlock()
		return
	}
	m.snap = snap
	m.token = token

	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func sameSnapshot(a, b Snapshot) bool {
	if a.State != b.State {
		return false
	}
	if a.Session == nil || b.Session == nil {
		return a.Session == b.Session
	}
	return *a.Session == *b.Session
}
