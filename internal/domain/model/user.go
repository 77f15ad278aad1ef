package model

import "time"

// Role grants access to customer or back-office operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User represents a registered account of the storefront.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated caller as seen by use cases.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal may use back-office operations.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
