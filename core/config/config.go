package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.Mutex
	cache = make(map[string]any)

	// .env loading happens once regardless of how many configs are loaded.
	// A missing .env file is not an error; real environments set vars directly.
	loadDotenv = sync.OnceFunc(func() {
		_ = godotenv.Load()
	})
)

// Load parses environment variables into cfg. Each configuration type is
// loaded once per application lifetime; subsequent calls for the same type
// return the cached value.
func Load[T any](cfg *T) error {
	loadDotenv()

	mu.Lock()
	defer mu.Unlock()

	key := fmt.Sprintf("%T", *cfg)
	if cached, ok := cache[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to load config %s: %w", key, err)
	}

	cache[key] = *cfg
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
