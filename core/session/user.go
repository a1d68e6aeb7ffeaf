package session

import "slices"

// User is the profile record returned by the backend. Permissions is the
// denormalized flat list kept alongside Role for facade convenience; both are
// sourced from the role's permission names at login/restore time.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Role        *Role    `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Role groups the permissions granted to a user.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission is a single named capability.
type Permission struct {
	Name string `json:"name"`
}

// Clone returns a deep copy of the user so callers cannot mutate manager state
// through the returned pointer.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Permissions = slices.Clone(u.Permissions)
	if u.Role != nil {
		role := *u.Role
		role.Permissions = slices.Clone(u.Role.Permissions)
		out.Role = &role
	}
	return &out
}
