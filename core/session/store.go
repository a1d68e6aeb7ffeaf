package session

import "context"

// Store defines the credential persistence interface. The manager is the only
// writer; implementations must handle concurrent access safely.
//
// Load returns ErrNoSnapshot when nothing is persisted. Implementations that
// replaced an older layout of three discrete keys (token, user, permissions)
// should fall back to reading it so existing installs survive the upgrade.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}
