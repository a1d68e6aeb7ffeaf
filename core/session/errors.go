package session

import "errors"

var (
	// ErrNoSnapshot is returned by Store.Load when nothing is persisted.
	// Restore treats it as a normal empty-session result, not a failure.
	ErrNoSnapshot = errors.New("no session snapshot stored")
	// ErrDeviceIdentityPending is returned when the device identifier has not
	// finished resolving. Login and OTP verification fail fast instead of
	// blocking or substituting a placeholder.
	ErrDeviceIdentityPending = errors.New("device identity is still resolving")
	// ErrDeviceIdentityUnavailable is returned when the device identifier
	// resolved to nothing.
	ErrDeviceIdentityUnavailable = errors.New("device identity is unavailable")
	// ErrOperationInFlight is returned when a mutating operation is invoked
	// while another one is still running.
	ErrOperationInFlight = errors.New("another session operation is in flight")
	// ErrPersistSession is returned when writing the session snapshot to the
	// credential store fails.
	ErrPersistSession = errors.New("failed to persist session snapshot")
	// ErrMissingBackend and ErrMissingStore guard manager construction.
	ErrMissingBackend = errors.New("session manager requires a backend")
	ErrMissingStore   = errors.New("session manager requires a credential store")
)
