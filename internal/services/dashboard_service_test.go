package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/services"
)

func TestGlobalStats_EmptyLedger(t *testing.T) {
	f := newFixture(t)

	stats, err := f.dashboard.GlobalStats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalProjects)
	assert.Zero(t, stats.TotalMilestones)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.PendingApprovals)
	assert.Zero(t, stats.Budget.TotalAllocated)
	assert.Zero(t, stats.Budget.TotalApproved)
	assert.Zero(t, stats.Budget.UtilizationPercentage, "empty ledger must not divide by zero")
}

func TestGlobalStats_Populated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.seedProject(t, 1000)
	auditor := f.seedUser(t, models.RoleAuditor)

	m1, _ := f.seedMilestone(t, p.ID, 250)
	f.seedMilestone(t, p.ID, 100)
	_, err := f.milestone.Approve(ctx, auditor, m1.ID)
	require.NoError(t, err)

	stats, err := f.dashboard.GlobalStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalProjects)
	assert.Equal(t, int64(2), stats.TotalMilestones)
	// one government owner, two contractors, one auditor
	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.UsersByRole[models.RoleGovernment])
	assert.Equal(t, int64(2), stats.UsersByRole[models.RoleContractor])
	assert.Equal(t, int64(1), stats.UsersByRole[models.RoleAuditor])

	assert.Equal(t, int64(1), stats.ProjectStatus[models.ProjectInProgress])
	assert.Equal(t, int64(1), stats.MilestoneStatus[models.MilestonePending])
	assert.Equal(t, int64(1), stats.MilestoneStatus[models.MilestoneApproved])
	assert.Equal(t, int64(1), stats.PendingApprovals)

	assert.Equal(t, 1000.0, stats.Budget.TotalAllocated)
	assert.Equal(t, 350.0, stats.Budget.TotalRequested)
	assert.Equal(t, 250.0, stats.Budget.TotalApproved)
	assert.Equal(t, 35.0, stats.Budget.UtilizationPercentage)
}

func TestMyStats_Government(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gov := f.seedUser(t, models.RoleGovernment)

	for _, budget := range []float64{100, 400} {
		_, err := f.project.CreateProject(ctx, gov, &services.CreateProjectInput{Name: "Water Treatment", Budget: budget})
		require.NoError(t, err)
	}

	got, err := f.dashboard.MyStats(ctx, gov)
	require.NoError(t, err)
	stats, ok := got.(*services.GovernmentStats)
	require.True(t, ok)
	assert.Equal(t, int64(2), stats.ProjectsCreated)
	assert.Equal(t, 500.0, stats.TotalBudgetAllocated)
}

func TestMyStats_Contractor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.seedProject(t, 1000)
	auditor := f.seedUser(t, models.RoleAuditor)
	contractor := f.seedUser(t, models.RoleContractor)

	mk := func(amount float64) *models.Milestone {
		m, err := f.milestone.CreateMilestone(ctx, contractor, &services.CreateMilestoneInput{
			ProjectID: p.ID, Title: "Phase delivery", RequestedAmount: amount,
		})
		require.NoError(t, err)
		return m
	}

	approved := mk(300)
	mk(50)
	flagged := mk(75)

	_, err := f.milestone.Approve(ctx, auditor, approved.ID)
	require.NoError(t, err)
	_, err = f.milestone.Flag(ctx, auditor, flagged.ID)
	require.NoError(t, err)

	got, err := f.dashboard.MyStats(ctx, contractor)
	require.NoError(t, err)
	stats, ok := got.(*services.ContractorStats)
	require.True(t, ok)
	assert.Equal(t, int64(3), stats.TotalMilestones)
	assert.Equal(t, int64(1), stats.ApprovedMilestones)
	assert.Equal(t, int64(1), stats.PendingMilestones)
	assert.Equal(t, 300.0, stats.TotalApprovedAmount)
}

func TestMyStats_Auditor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.seedProject(t, 1000)
	auditor := f.seedUser(t, models.RoleAuditor)
	other := f.seedUser(t, models.RoleAuditor)

	m1, _ := f.seedMilestone(t, p.ID, 100)
	m2, _ := f.seedMilestone(t, p.ID, 100)
	m3, _ := f.seedMilestone(t, p.ID, 100)
	f.seedMilestone(t, p.ID, 100)

	_, err := f.milestone.Approve(ctx, auditor, m1.ID)
	require.NoError(t, err)
	_, err = f.milestone.Flag(ctx, auditor, m2.ID)
	require.NoError(t, err)
	_, err = f.milestone.Approve(ctx, other, m3.ID)
	require.NoError(t, err)

	got, err := f.dashboard.MyStats(ctx, auditor)
	require.NoError(t, err)
	stats, ok := got.(*services.AuditorStats)
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.PendingReviews, "pending queue is global")
	assert.Equal(t, int64(1), stats.Approved, "reviews are attributed per auditor")
	assert.Equal(t, int64(1), stats.Flagged)
	assert.Equal(t, int64(2), stats.TotalReviewed)
}
