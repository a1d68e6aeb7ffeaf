// Package redis provides Redis client initialization and health checking for
// credential persistence.
//
// Connect wraps the go-redis client with URL validation, retry logic, and a
// ping verification so broken connectivity is caught at startup instead of on
// the first session operation:
//
//	cfg := redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: 5 * time.Second,
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Both redis:// and rediss:// (TLS) URL schemes are supported. Healthcheck
// returns a probe function performing a single ping.
//
// Errors are exposed as sentinels (ErrEmptyConnectionURL,
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrHealthcheckFailed)
// checked with errors.Is.
package redis
