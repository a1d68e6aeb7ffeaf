package session

import (
	"log/slog"

	"github.com/dmitrymomot/fieldkit/core/autologout"
	"github.com/dmitrymomot/fieldkit/core/deviceid"
)

// Config holds session manager configuration.
type Config struct {
	// AppVersion is sent as the "version" field of the login request body.
	AppVersion string `env:"APP_VERSION" envDefault:"1.0.0"`
}

// Option is a functional option for configuring the session manager.
type Option func(*Manager)

// WithConfig applies an environment-loaded configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.version = cfg.AppVersion
	}
}

// WithAppVersion sets the version string sent with login requests.
func WithAppVersion(version string) Option {
	return func(m *Manager) {
		m.version = version
	}
}

// WithDeviceIdentity sets the provider of the notification/device identifier
// required by Login and VerifyOTP. Without one, both operations fail with
// ErrDeviceIdentityUnavailable.
func WithDeviceIdentity(p deviceid.Provider) Option {
	return func(m *Manager) {
		m.identity = p
	}
}

// WithBridge registers the manager's logout with the auto-logout bridge so
// the HTTP layer can force a session clear on authorization failure.
func WithBridge(b *autologout.Bridge) Option {
	return func(m *Manager) {
		m.bridge = b
	}
}

// WithLogger sets the logger for best-effort failures that are swallowed by
// design (remote logout, defensive store clears). Default discards.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
