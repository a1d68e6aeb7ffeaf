package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/fieldkit/core/autologout"
	"github.com/dmitrymomot/fieldkit/core/deviceid"
	"github.com/dmitrymomot/fieldkit/pkg/logger"
)

// Manager is the sole owner of authentication state. It coordinates login,
// OTP login, token adoption, refresh, and logout against the remote backend,
// and persists every state change through the credential store as a single
// snapshot write.
//
// Managers are safe for concurrent use. Mutating operations (Login, VerifyOTP,
// RefreshUser) are guarded by an in-flight token: a second call while one is
// running fails with ErrOperationInFlight instead of racing on the final
// write. Logout bypasses the guard because it must always succeed locally.
type Manager struct {
	backend  Backend
	store    Store
	identity deviceid.Provider
	bridge   *autologout.Bridge
	log      *slog.Logger
	version  string

	mu      sync.RWMutex
	session Session
	loading bool

	inFlight atomic.Bool
}

// NewManager creates a session manager. The manager starts in the loading
// state; callers are expected to invoke Restore once before any mutating
// operation and may watch Loading to know when restoration finished.
func NewManager(backend Backend, store Store, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, ErrMissingBackend
	}
	if store == nil {
		return nil, ErrMissingStore
	}

	m := &Manager{
		backend: backend,
		store:   store,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "1.0.0",
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.bridge != nil {
		m.bridge.Set(func(ctx context.Context) {
			_ = m.Logout(ctx)
		})
	}

	return m, nil
}

// Restore populates the session from the credential store. Absence of stored
// credentials is a normal empty-session result; a partial snapshot (token
// without user or vice versa) is treated as unauthenticated and cleared
// defensively. Restore never fails from the caller's point of view.
func (m *Manager) Restore(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)

	snap, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			m.log.WarnContext(ctx, "failed to load session snapshot", logger.Error(err))
		}
		return
	}
	if snap == nil {
		return
	}
	if !snap.Complete() {
		if err := m.store.Clear(ctx); err != nil {
			m.log.WarnContext(ctx, "failed to clear partial session snapshot", logger.Error(err))
		}
		return
	}

	perms := DerivePermissions(snap.Permissions, snap.User)

	m.mu.Lock()
	m.session = Session{Token: snap.Token, User: snap.User, Permissions: perms}
	m.mu.Unlock()
}

// Login authenticates with username and password. The device identifier must
// have finished resolving: a pending identity fails with
// ErrDeviceIdentityPending and a missing one with ErrDeviceIdentityUnavailable,
// both before any network call and without touching session state. Backend and
// transport errors propagate verbatim.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if !m.inFlight.CompareAndSwap(false, true) {
		return ErrOperationInFlight
	}
	defer m.inFlight.Store(false)

	notifID, err := m.requireDeviceIdentity()
	if err != nil {
		return err
	}

	res, err := m.backend.Login(ctx, LoginRequest{
		Version:  m.version,
		Username: username,
		Password: password,
		NotifID:  notifID,
	})
	if err != nil {
		return err
	}

	return m.adopt(ctx, res.AccessToken, res.User, DerivePermissions(nil, res.User))
}

// LoginWithToken unconditionally overwrites the session with an externally
// supplied credential pair and persists it. This is the single choke point
// through which every successful authentication path writes session state.
// When perms is omitted the current permission list is kept.
//
// In-memory state is updated even when persistence fails; the returned error
// then wraps ErrPersistSession.
func (m *Manager) LoginWithToken(ctx context.Context, token string, user *User, perms ...[]string) error {
	m.mu.Lock()
	m.session.Token = token
	m.session.User = user
	if len(perms) > 0 {
		m.session.Permissions = perms[0]
	}
	snap := Snapshot{Token: token, User: user, Permissions: m.session.Permissions}
	m.mu.Unlock()

	if err := m.store.Save(ctx, snap); err != nil {
		return errors.Join(ErrPersistSession, err)
	}
	return nil
}

// Logout clears the session. The remote notification is best-effort: its
// failure is logged and discarded because the user-visible goal, being logged
// out locally, must always succeed. Idempotent; calling it while already
// unauthenticated still clears the store defensively. Always returns nil.
func (m *Manager) Logout(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	if token := m.Token(); token != "" {
		if err := m.backend.Logout(ctx, token); err != nil {
			m.log.WarnContext(ctx, "remote logout notification failed", logger.Error(err))
		}
	}

	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.log.WarnContext(ctx, "failed to clear credential store", logger.Error(err))
	}
	return nil
}

// RefreshUser re-fetches the current user with the stored token and replaces
// the user and permission list in place. The token is never touched. A no-op
// when unauthenticated. On failure the previous state stays fully intact.
func (m *Manager) RefreshUser(ctx context.Context) error {
	if !m.inFlight.CompareAndSwap(false, true) {
		return ErrOperationInFlight
	}
	defer m.inFlight.Store(false)

	token := m.Token()
	if token == "" {
		return nil
	}

	user, err := m.backend.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	perms := DerivePermissions(nil, user)

	m.mu.Lock()
	m.session.User = user
	m.session.Permissions = perms
	snap := Snapshot{Token: m.session.Token, User: user, Permissions: perms}
	m.mu.Unlock()

	if err := m.store.Save(ctx, snap); err != nil {
		return errors.Join(ErrPersistSession, err)
	}
	return nil
}

// RequestOTP asks the backend to send a one-time password to the phone. Pure
// pass-through: no session mutation and no device-identity requirement.
func (m *Manager) RequestOTP(ctx context.Context, phone string) (json.RawMessage, error) {
	return m.backend.RequestOTP(ctx, phone)
}

// VerifyOTP exchanges a phone/OTP pair for a session under the same
// device-identity preconditions as Login. The raw backend result is returned
// alongside the state mutation because callers may need access_token or user
// for immediate navigation decisions.
func (m *Manager) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResult, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrOperationInFlight
	}
	defer m.inFlight.Store(false)

	notifID, err := m.requireDeviceIdentity()
	if err != nil {
		return nil, err
	}

	res, err := m.backend.VerifyOTP(ctx, VerifyOTPRequest{
		Phone:   phone,
		OTP:     otp,
		NotifID: notifID,
	})
	if err != nil {
		return nil, err
	}

	if err := m.adopt(ctx, res.AccessToken, res.User, DerivePermissions(nil, res.User)); err != nil {
		return nil, err
	}
	return res, nil
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// CurrentUser returns a copy of the authenticated user, nil when logged out.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User.Clone()
}

// Permissions returns a copy of the flattened permission-name list.
func (m *Manager) Permissions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.session.Permissions)
}

// IsAuthenticated reports whether a complete credential pair is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.IsAuthenticated()
}

// Loading reports whether a restore or logout is currently rewriting state.
// It starts true at construction and flips false when Restore completes, so
// UI paths can defer mutating calls until then.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// adopt funnels a successful authentication through LoginWithToken.
func (m *Manager) adopt(ctx context.Context, token string, user *User, perms []string) error {
	return m.LoginWithToken(ctx, token, user, perms)
}

func (m *Manager) requireDeviceIdentity() (string, error) {
	if m.identity == nil {
		return "", ErrDeviceIdentityUnavailable
	}
	id, state := m.identity.Identity()
	switch state {
	case deviceid.StatePending:
		return "", ErrDeviceIdentityPending
	case deviceid.StateUnavailable:
		return "", ErrDeviceIdentityUnavailable
	}
	return id, nil
}
