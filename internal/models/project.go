package models

import (
	"time"
)

// ProjectStatus is the lifecycle state of a project. Status only ever moves
// forward: CREATED -> IN_PROGRESS -> COMPLETED.
type ProjectStatus string

const (
	ProjectCreated    ProjectStatus = "CREATED"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

// projectStatusRank orders statuses for the monotonic transition check.
var projectStatusRank = map[ProjectStatus]int{
	ProjectCreated:    0,
	ProjectInProgress: 1,
	ProjectCompleted:  2,
}

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	_, ok := projectStatusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s ProjectStatus) CanAdvanceTo(next ProjectStatus) bool {
	from, ok := projectStatusRank[s]
	if !ok {
		return false
	}
	to, ok := projectStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Project is a funded unit of work owned by a GOVERNMENT user. The sum of
// APPROVED milestone amounts never exceeds Budget.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name" validate:"required,min=3,max=200"`
	Description string        `gorm:"type:text" json:"description" validate:"max=1000"`
	Budget      float64       `gorm:"not null" json:"budget" validate:"required,gt=0"`
	Status      ProjectStatus `gorm:"type:varchar(16);not null;index;default:CREATED" json:"status"`
	CreatorID   uint          `gorm:"index;not null" json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
