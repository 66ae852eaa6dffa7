// Package auth owns users, credentials, and token issuance.
package auth

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleReviewer
}

// User is an account that can authenticate against the API. Credentials holds
// the bcrypt hash and is never serialized.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Credentials string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Snapshot returns the audit representation of the user. Credentials are
// included here and stripped by audit policy, so the policy stays the single
// source of truth for what leaves the service.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"role":        string(u.Role),
		"credentials": u.Credentials,
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
	}
}
