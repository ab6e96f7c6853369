package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleSubadmin StaffRole = "SUBADMIN"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// Valid reports whether the role is known.
func (r StaffRole) Valid() bool {
	return r == StaffRoleSubadmin || r == StaffRoleAdmin
}

// StaffMember models a subadmin or administrator.
type StaffMember struct {
	ID           int64
	StaffNo      string
	Name         string
	Department   string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
