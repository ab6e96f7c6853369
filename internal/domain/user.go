package domain

import (
	"strings"
	"time"
)

// User is the domain model for employees who raise complaints.
type User struct {
	ID           int64
	StaffNo      string
	Name         string
	Department   string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var staffNoReplacer = strings.NewReplacer(" ", "", "-", "")

// NormalizeStaffNo strips spaces and dashes so "AB-12 34" and "AB1234" match.
func NormalizeStaffNo(staffNo string) string {
	return staffNoReplacer.Replace(strings.TrimSpace(staffNo))
}
