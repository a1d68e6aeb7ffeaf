// Package deviceid supplies the per-install identifier required by login and
// OTP verification, sourced from a push-notification registration process
// outside this module's control.
//
// The identifier is tri-state: pending (not yet determined, unusable even if
// a value exists), ready, or unavailable. Consumers must fail fast on the
// first and last rather than substitute a placeholder.
package deviceid
