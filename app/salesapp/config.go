package salesapp

import (
	"github.com/dmitrymomot/fieldkit/core/session"
	"github.com/dmitrymomot/fieldkit/integration/credentials/filestore"
	"github.com/dmitrymomot/fieldkit/integration/credentials/redisstore"
	"github.com/dmitrymomot/fieldkit/integration/salesapi"
)

// Config composes the configuration of every wired component.
type Config struct {
	API     salesapi.Config
	Session session.Config
	File    filestore.Config
	Redis   redisstore.Config

	AppName  string `env:"APP_NAME" envDefault:"fieldsales"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RedisURL switches credential persistence from the default file store to
	// Redis when set.
	RedisURL string `env:"REDIS_URL" envDefault:""`
}
