package autologout

import (
	"context"
	"sync"
)

// Bridge decouples the HTTP layer from the session manager: the manager
// registers its logout with Set, and the HTTP layer calls Invoke when a
// response is classified as an authorization failure. The bridge is owned by
// the application composition root and handed to both sides explicitly.
type Bridge struct {
	mu sync.Mutex
	fn func(context.Context)
}

// New returns an empty bridge. Invoking an empty bridge is a no-op.
func New() *Bridge {
	return &Bridge{}
}

// Set overwrites the registered callback. Passing nil clears it.
func (b *Bridge) Set(fn func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fn = fn
}

// Invoke calls the registered callback, if any. The callback runs outside the
// bridge lock so it may call Set again without deadlocking. Callers must not
// invoke the bridge from within the callback's own best-effort logout request;
// the API client suppresses the hook on that request to prevent the cycle.
func (b *Bridge) Invoke(ctx context.Context) {
	b.mu.Lock()
	fn := b.fn
	b.mu.Unlock()
	if fn != nil {
		fn(ctx)
	}
}
