// Package session owns the single authenticated-identity value for the
// process and the login/signup/logout lifecycle that gates every other view.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hireflow/hireflow/internal/recruit"

	"go.uber.org/zap"
)

type State int

const (
	StateInitializing State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// checkTimeout bounds the startup session probe so the client never hangs on
// a dead auth service.
const checkTimeout = 5 * time.Second

// Fallback messages rendered when the server reports no reason of its own.
const (
	LoginFallback  = "Login failed"
	SignupFallback = "Signup failed"
)

// Manager is the process-wide session state machine. Identity is replaced
// wholesale on every transition, never partially mutated.
type Manager struct {
	api    *recruit.Client
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	identity  *recruit.Identity
	checked   bool
	timeout   time.Duration
	onExpired func()
}

func NewManager(api *recruit.Client, logger *zap.Logger) *Manager {
	m := &Manager{
		api:     api,
		logger:  logger,
		state:   StateInitializing,
		timeout: checkTimeout,
	}

	// Any 401 on any protected call invalidates the session for everyone.
	api.OnUnauthorized(m.expire)

	return m
}

// SetExpiredObserver registers the callback invoked when an authorization
// failure forces the session out from under the user.
func (m *Manager) SetExpiredObserver(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = fn
}

// CheckSession asks the platform who is currently authenticated. It runs at
// most once per process; use Recheck to force another probe. Success moves to
// Authenticated; any failure, including the timeout, moves to Unauthenticated
// with identity cleared. The manager is never left in Initializing.
func (m *Manager) CheckSession(ctx context.Context) State {
	m.mu.Lock()
	if m.checked {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.checked = true
	m.mu.Unlock()

	return m.check(ctx)
}

// Recheck re-runs the session probe regardless of whether one already ran.
func (m *Manager) Recheck(ctx context.Context) State {
	m.mu.Lock()
	m.checked = true
	m.mu.Unlock()

	return m.check(ctx)
}

func (m *Manager) check(ctx context.Context) State {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	identity, err := m.api.Me(cctx)
	if err != nil {
		m.logger.Debug("session check failed", zap.Error(err))
		m.clear()
		return StateUnauthenticated
	}

	m.setIdentity(identity)
	m.logger.Debug("session restored",
		zap.String("email", identity.Email),
		zap.String("role", string(identity.Role)),
	)

	return StateAuthenticated
}

// Login exchanges credentials for an identity. The returned error carries the
// server's reason when present; render it with recruit.Reason and the
// LoginFallback message.
func (m *Manager) Login(ctx context.Context, email, password string) (*recruit.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, recruit.ValidationError("login", "Email and password are required")
	}

	identity, _, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	m.setIdentity(identity)
	m.logger.Info("logged in",
		zap.String("email", identity.Email),
		zap.String("role", string(identity.Role)),
	)

	return identity, nil
}

// Signup registers a new identity; the server decides whether it becomes
// authenticated. Contract is otherwise the same as Login.
func (m *Manager) Signup(ctx context.Context, name, email, password string, role recruit.Role) (*recruit.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, recruit.ValidationError("signup", "Name, email and password are required")
	}

	identity, _, err := m.api.Signup(ctx, name, email, password, role)
	if err != nil {
		m.logger.Debug("signup failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	m.setIdentity(identity)
	m.logger.Info("signed up",
		zap.String("email", identity.Email),
		zap.String("role", string(identity.Role)),
	)

	return identity, nil
}

// Logout notifies the server best-effort and clears local identity
// unconditionally: a network error must never leave the client stuck
// logged in.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", zap.Error(err))
	}

	m.api.SetToken("")
	m.clear()
	m.logger.Info("logged out")
}

// expire handles a detected authorization failure. It only acts when a
// session was actually established, so a failed login does not masquerade as
// an expired session.
func (m *Manager) expire() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateUnauthenticated
	m.identity = nil
	fn := m.onExpired
	m.mu.Unlock()

	m.logger.Warn("session expired")

	if fn != nil {
		fn()
	}
}

func (m *Manager) setIdentity(identity *recruit.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.identity = identity
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUnauthenticated
	m.identity = nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Identity() *recruit.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Role returns the authenticated role, or the empty string when there is no
// session.
func (m *Manager) Role() recruit.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return ""
	}
	return m.identity.Role
}
