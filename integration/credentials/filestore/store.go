// Package filestore persists the session snapshot as a JSON file in the user
// config directory, the usual credential cache for CLI and mobile-companion
// builds. Files are written with 0600 permissions.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrymomot/fieldkit/core/session"
)

// Config provides environment-based configuration for the file store.
type Config struct {
	// Path overrides the snapshot file location. Empty means
	// <user config dir>/<AppDir>/session.json.
	Path   string `env:"CREDENTIALS_FILE" envDefault:""`
	AppDir string `env:"CREDENTIALS_APP_DIR" envDefault:"fieldkit"`
}

// Store is a file-backed credential store. A process-local mutex serializes
// writers; the session manager is the only writer by contract anyway.
type Store struct {
	mu   sync.Mutex
	path string
}

// legacyRecord is the pre-snapshot layout: three discrete string values where
// user and permissions are themselves JSON-serialized. Kept for read-time
// compatibility with existing installs.
type legacyRecord struct {
	Token       string `json:"token"`
	User        string `json:"user"`
	Permissions string `json:"permissions"`
}

// New creates a file store, resolving and creating the parent directory.
func New(cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config directory: %w", err)
		}
		appDir := cfg.AppDir
		if appDir == "" {
			appDir = "fieldkit"
		}
		path = filepath.Join(dir, appDir, "session.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the resolved snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot file. A file in the legacy three-key layout is
// decoded transparently. Returns session.ErrNoSnapshot when the file is
// missing or empty.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, session.ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read credential file %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return nil, session.ErrNoSnapshot
	}

	var snap session.Snapshot
	if err := json.Unmarshal(b, &snap); err == nil {
		return &snap, nil
	}

	// The snapshot decode fails on the legacy layout because user and
	// permissions were stored as serialized strings.
	var legacy legacyRecord
	if err := json.Unmarshal(b, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", s.path, err)
	}
	return decodeLegacy(legacy)
}

// Save writes the snapshot atomically (temp file + rename).
func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// Clear removes the snapshot file. Clearing an absent file is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file %s: %w", s.path, err)
	}
	return nil
}

func decodeLegacy(legacy legacyRecord) (*session.Snapshot, error) {
	snap := &session.Snapshot{Token: legacy.Token}
	if legacy.User != "" {
		var user session.User
		if err := json.Unmarshal([]byte(legacy.User), &user); err != nil {
			return nil, fmt.Errorf("failed to parse legacy user record: %w", err)
		}
		snap.User = &user
	}
	if legacy.Permissions != "" {
		var perms []string
		if err := json.Unmarshal([]byte(legacy.Permissions), &perms); err != nil {
			return nil, fmt.Errorf("failed to parse legacy permission list: %w", err)
		}
		snap.Permissions = perms
	}
	return snap, nil
}
