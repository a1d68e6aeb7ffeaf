package session

import "slices"

// Session is the in-memory authenticated state: a bearer token plus the user
// record and the flattened permission-name list derived from the user's role.
//
// Invariant: Token is non-empty if and only if User is non-nil. The two are
// always set and cleared together; a session holding only one of them is
// treated as unauthenticated.
type Session struct {
	Token       string
	User        *User
	Permissions []string
}

// IsAuthenticated reports whether the session holds a complete credential pair.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Snapshot is the unit of persistence: all session state serialized together
// so that a crash can never leave a partially written credential behind.
type Snapshot struct {
	Token       string   `json:"token"`
	User        *User    `json:"user"`
	Permissions []string `json:"permissions"`
}

// Complete reports whether the snapshot carries both token and user.
// Restore refuses to adopt incomplete snapshots.
func (s Snapshot) Complete() bool {
	return s.Token != "" && s.User != nil
}

// DerivePermissions resolves the flat permission-name list for a user using an
// ordered fallback: a separately stored list when present (nil means absent,
// an empty non-nil slice counts as present), then the user's role permissions
// mapped to names, then the user's own denormalized list, then empty.
// Ordering is preserved and duplicates are kept as-is.
func DerivePermissions(stored []string, user *User) []string {
	if stored != nil {
		return stored
	}
	if user != nil && user.Role != nil && len(user.Role.Permissions) > 0 {
		names := make([]string, 0, len(user.Role.Permissions))
		for _, p := range user.Role.Permissions {
			names = append(names, p.Name)
		}
		return names
	}
	if user != nil && len(user.Permissions) > 0 {
		return slices.Clone(user.Permissions)
	}
	return []string{}
}
