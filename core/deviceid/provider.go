package deviceid

import "sync"

// State is the readiness of the device identifier.
type State int

const (
	// StatePending means the identifier has not been determined yet. Any value
	// held while pending is unusable, not merely absent.
	StatePending State = iota
	// StateReady means a usable identifier is available.
	StateReady
	// StateUnavailable means resolution finished without an identifier.
	StateUnavailable
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Provider supplies the per-install identifier required by login and OTP
// verification. Implementations must be safe for concurrent use.
type Provider interface {
	Identity() (string, State)
}

// Registration is the standard Provider fed by an external push-notification
// registration process. It starts pending and transitions to a terminal state
// exactly once in the common case; later Resolve calls overwrite the value but
// never return the provider to pending.
type Registration struct {
	mu    sync.RWMutex
	value string
	state State
}

// New returns a Registration in the pending state.
func New() *Registration {
	return &Registration{state: StatePending}
}

// Identity returns the current identifier and its readiness.
func (r *Registration) Identity() (string, State) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.state
}

// Resolve records the identifier delivered by the registration subsystem.
// An empty id marks the provider unavailable.
func (r *Registration) Resolve(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		r.value = ""
		r.state = StateUnavailable
		return
	}
	r.value = id
	r.state = StateReady
}

// Fail marks resolution as permanently unsuccessful.
func (r *Registration) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = ""
	r.state = StateUnavailable
}

// Static returns a Provider fixed to the given identifier, useful in tests and
// tooling. An empty id yields an unavailable provider.
func Static(id string) Provider {
	r := New()
	r.Resolve(id)
	return r
}
