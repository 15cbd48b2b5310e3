package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govichain/engine/internal/models"
)

func TestProjectStatusCanAdvanceTo(t *testing.T) {
	cases := []struct {
		from, to models.ProjectStatus
		want     bool
	}{
		{models.ProjectCreated, models.ProjectInProgress, true},
		{models.ProjectCreated, models.ProjectCompleted, true},
		{models.ProjectInProgress, models.ProjectCompleted, true},
		{models.ProjectCreated, models.ProjectCreated, false},
		{models.ProjectInProgress, models.ProjectCreated, false},
		{models.ProjectCompleted, models.ProjectInProgress, false},
		{models.ProjectCompleted, models.ProjectCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, models.ProjectInProgress.Valid())
	assert.False(t, models.ProjectStatus("PAUSED").Valid())

	assert.True(t, models.MilestonePending.Valid())
	assert.False(t, models.MilestoneStatus("REJECTED").Valid())

	assert.True(t, models.RoleContractor.Valid())
	assert.False(t, models.Role("ADMIN").Valid())
}

func TestMilestoneTerminal(t *testing.T) {
	assert.False(t, models.MilestonePending.Terminal())
	assert.True(t, models.MilestoneApproved.Terminal())
	assert.True(t, models.MilestoneFlagged.Terminal())
}
