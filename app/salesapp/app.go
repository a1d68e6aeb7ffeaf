// Package salesapp is the composition root of the field-sales client: it
// loads configuration, owns the auto-logout bridge, and wires the device
// registration, credential store, API client, and session manager together.
package salesapp

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fieldkit/core/autologout"
	"github.com/dmitrymomot/fieldkit/core/config"
	"github.com/dmitrymomot/fieldkit/core/deviceid"
	"github.com/dmitrymomot/fieldkit/core/permission"
	"github.com/dmitrymomot/fieldkit/core/session"
	"github.com/dmitrymomot/fieldkit/integration/credentials/filestore"
	"github.com/dmitrymomot/fieldkit/integration/credentials/redisstore"
	redisdb "github.com/dmitrymomot/fieldkit/integration/database/redis"
	"github.com/dmitrymomot/fieldkit/integration/salesapi"
)

// App wires the session core. The bridge is owned here and handed to both the
// API client (which invokes it on authorization failures) and the session
// manager (which registers its logout), replacing the module-global callback
// slot of earlier builds with an explicit dependency.
type App struct {
	config   Config
	logger   *slog.Logger
	bridge   *autologout.Bridge
	deviceID *deviceid.Registration
	store    session.Store
	api      *salesapi.Client
	session  *session.Manager
	perms    *permission.Facade
	redis    *goredis.Client
}

// AppOption overrides a default component.
type AppOption func(*App) error

// WithLogger replaces the environment-derived logger.
func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

// WithStore replaces the credential store chosen from configuration.
func WithStore(store session.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		app.store = store
		return nil
	}
}

// New builds the app and restores any persisted session before returning, so
// callers observe Loading() == false and a settled session immediately.
func New(ctx context.Context, opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	app := &App{
		config:   cfg,
		bridge:   autologout.New(),
		deviceID: deviceid.New(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = newLogger(cfg)
	}

	if app.store == nil {
		if cfg.RedisURL != "" {
			client, err := redisdb.Connect(ctx, redisdb.Config{
				ConnectionURL:  cfg.RedisURL,
				RetryAttempts:  3,
				RetryInterval:  5 * time.Second,
				ConnectTimeout: 30 * time.Second,
			})
			if err != nil {
				return nil, err
			}
			store, err := redisstore.New(client, cfg.Redis)
			if err != nil {
				_ = client.Close()
				return nil, err
			}
			app.redis = client
			app.store = store
		} else {
			store, err := filestore.New(cfg.File)
			if err != nil {
				return nil, err
			}
			app.store = store
		}
	}

	api, err := salesapi.New(cfg.API,
		salesapi.WithBridge(app.bridge),
		salesapi.WithLogger(app.logger),
	)
	if err != nil {
		return nil, err
	}
	app.api = api

	mgr, err := session.NewManager(api, app.store,
		session.WithConfig(cfg.Session),
		session.WithDeviceIdentity(app.deviceID),
		session.WithBridge(app.bridge),
		session.WithLogger(app.logger),
	)
	if err != nil {
		return nil, err
	}
	mgr.Restore(ctx)

	app.session = mgr
	app.perms = permission.NewFacade(mgr)
	return app, nil
}

// Session returns the session manager.
func (a *App) Session() *session.Manager {
	return a.session
}

// Permissions returns the permission query facade.
func (a *App) Permissions() *permission.Facade {
	return a.perms
}

// DeviceRegistration exposes the device-identity registration so the push
// subsystem can deliver or fail the identifier.
func (a *App) DeviceRegistration() *deviceid.Registration {
	return a.deviceID
}

// Close releases held connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func newLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With(slog.String("app", cfg.AppName))
}
