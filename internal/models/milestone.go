package models

import (
	"time"
)

// MilestoneStatus is the review state of a milestone. PENDING is the only
// non-terminal state; APPROVED and FLAGGED are terminal.
type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "PENDING"
	MilestoneApproved MilestoneStatus = "APPROVED"
	MilestoneFlagged  MilestoneStatus = "FLAGGED"
)

// Valid reports whether s is one of the known milestone statuses.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneApproved, MilestoneFlagged:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s MilestoneStatus) Terminal() bool {
	return s == MilestoneApproved || s == MilestoneFlagged
}

// Milestone is a contractor's request for partial disbursement against a
// project's budget. AuditorID and ApprovedAt record the review trail.
type Milestone struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProjectID       uint            `gorm:"index;not null" json:"project_id"`
	ContractorID    uint            `gorm:"index;not null" json:"contractor_id"`
	Title           string          `gorm:"not null" json:"title" validate:"required,min=3,max=200"`
	Description     string          `gorm:"type:text" json:"description" validate:"max=1000"`
	RequestedAmount float64         `gorm:"not null" json:"requested_amount" validate:"required,gt=0"`
	Status          MilestoneStatus `gorm:"type:varchar(16);not null;index;default:PENDING" json:"status"`
	AuditorID       *uint           `gorm:"index" json:"auditor_id,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
