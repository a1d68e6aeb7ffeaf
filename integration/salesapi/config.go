package salesapi

import "time"

// Config provides environment-based configuration for the API client.
type Config struct {
	BaseURL        string        `env:"SALES_API_URL,required"`
	RequestTimeout time.Duration `env:"SALES_API_TIMEOUT" envDefault:"30s"`
}
