// Package session provides client-side session and authentication management
// for the field-sales backend.
//
// The package owns the in-memory authenticated state (bearer token, user
// record, flattened permission list), the login and OTP-login flows, and
// persistence of that state through a pluggable credential store.
//
// # Core Components
//
//   - Session: the in-memory state; Token and User are always set and cleared
//     together
//   - Manager: coordinates Restore, Login, LoginWithToken, Logout,
//     RefreshUser, RequestOTP, and VerifyOTP
//   - Store: interface for credential persistence (file, Redis, memory)
//   - Backend: interface over the remote REST API (see integration/salesapi)
//   - Snapshot: the single persisted unit, written atomically so a crash can
//     never strand a token without its user
//
// # Basic Usage
//
// Build a manager and restore any persisted session before serving UI:
//
//	import "github.com/dmitrymomot/fieldkit/core/session"
//
//	mgr, err := session.NewManager(apiClient, store,
//		session.WithDeviceIdentity(registration),
//		session.WithBridge(bridge),
//		session.WithLogger(log),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	mgr.Restore(ctx)
//
//	if err := mgr.Login(ctx, username, password); err != nil {
//		// surface err to the user; session state is untouched on failure
//	}
//
// # Device Identity
//
// Login and VerifyOTP require the per-install notification identifier. While
// the identity provider is still resolving they fail fast with
// ErrDeviceIdentityPending rather than blocking or substituting a placeholder;
// a provider that resolved to nothing yields ErrDeviceIdentityUnavailable.
//
// # Auto-Logout
//
// When constructed with a bridge, the manager registers its Logout so the
// HTTP layer can force a session clear after an authorization failure. Logout
// is idempotent and always succeeds locally; the remote notification is
// best-effort.
//
// # Concurrency
//
// Managers are safe for concurrent use. Login, VerifyOTP, and RefreshUser
// share an in-flight guard: an overlapping call fails with
// ErrOperationInFlight instead of racing on the final state write. Logout
// bypasses the guard because being logged out locally must always succeed.
package session
