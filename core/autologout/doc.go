// Package autologout decouples the HTTP layer from the session manager via a
// single shared callback slot: the manager registers its logout, the HTTP
// layer invokes it when the backend reports the credential is no longer valid.
package autologout
