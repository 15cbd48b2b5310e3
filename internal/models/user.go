package models

import (
	"time"
)

// Role is the closed set of platform roles. A user holds exactly one role,
// fixed at registration.
type Role string

const (
	RoleGovernment Role = "GOVERNMENT"
	RoleContractor Role = "CONTRACTOR"
	RoleAuditor    Role = "AUDITOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGovernment, RoleContractor, RoleAuditor:
		return true
	}
	return false
}

// User represents a platform user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username" validate:"required,min=3,max=50"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;index" json:"role" validate:"required,oneof=GOVERNMENT CONTRACTOR AUDITOR"`
	CreatedAt    time.Time `json:"created_at"`
}
