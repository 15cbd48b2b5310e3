package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	"github.com/govichain/engine/internal/testutil"
	appErr "github.com/govichain/engine/pkg/errors"
)

type repoFixture struct {
	db         *gorm.DB
	users      repository.UserRepository
	projects   repository.ProjectRepository
	milestones repository.MilestoneRepository
}

func newRepoFixture(t *testing.T) *repoFixture {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return &repoFixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		projects:   repository.NewProjectRepository(db),
		milestones: repository.NewMilestoneRepository(db),
	}
}

func (f *repoFixture) mustCreateUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: username + "@example.com", Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *repoFixture) mustCreateProject(t *testing.T, creatorID uint, budget float64) *models.Project {
	t.Helper()
	p := &models.Project{Name: "Road Works", Budget: budget, Status: models.ProjectCreated, CreatorID: creatorID}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *repoFixture) mustCreateMilestone(t *testing.T, projectID, contractorID uint, amount float64, status models.MilestoneStatus) *models.Milestone {
	t.Helper()
	m := &models.Milestone{
		ProjectID:       projectID,
		ContractorID:    contractorID,
		Title:           "Phase delivery",
		RequestedAmount: amount,
		Status:          status,
	}
	require.NoError(t, f.milestones.Create(context.Background(), m))
	return m
}

func TestMilestoneAggregates(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	gov := f.mustCreateUser(t, "gov", models.RoleGovernment)
	c1 := f.mustCreateUser(t, "con1", models.RoleContractor)
	c2 := f.mustCreateUser(t, "con2", models.RoleContractor)
	p1 := f.mustCreateProject(t, gov.ID, 1000)
	p2 := f.mustCreateProject(t, gov.ID, 500)

	f.mustCreateMilestone(t, p1.ID, c1.ID, 100, models.MilestoneApproved)
	f.mustCreateMilestone(t, p1.ID, c1.ID, 50, models.MilestonePending)
	f.mustCreateMilestone(t, p1.ID, c2.ID, 75, models.MilestoneFlagged)
	f.mustCreateMilestone(t, p2.ID, c2.ID, 200, models.MilestoneApproved)

	total, err := f.milestones.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	byStatus, err := f.milestones.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[models.MilestoneApproved])
	assert.Equal(t, int64(1), byStatus[models.MilestonePending])
	assert.Equal(t, int64(1), byStatus[models.MilestoneFlagged])

	requested, err := f.milestones.SumRequested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 425.0, requested)

	approved, err := f.milestones.SumApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300.0, approved)

	p1Approved, err := f.milestones.SumApprovedByProject(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p1Approved)

	p1Requested, err := f.milestones.SumRequestedByProject(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 225.0, p1Requested)

	c2Approved, err := f.milestones.SumApprovedByContractor(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, c2Approved)

	n, err := f.milestones.CountByProjectAndStatus(ctx, p1.ID, models.MilestonePending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.milestones.CountByContractorAndStatus(ctx, c1.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMilestoneAggregates_EmptyTables(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	requested, err := f.milestones.SumRequested(ctx)
	require.NoError(t, err)
	assert.Zero(t, requested, "sum over no rows must coalesce to zero")

	approved, err := f.milestones.SumApprovedByProject(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, approved)

	budgets, err := f.projects.SumBudgets(ctx)
	require.NoError(t, err)
	assert.Zero(t, budgets)
}

func TestTransitionFromPending(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	gov := f.mustCreateUser(t, "gov", models.RoleGovernment)
	con := f.mustCreateUser(t, "con", models.RoleContractor)
	aud := f.mustCreateUser(t, "aud", models.RoleAuditor)
	p := f.mustCreateProject(t, gov.ID, 100)
	m := f.mustCreateMilestone(t, p.ID, con.ID, 40, models.MilestonePending)

	now := time.Now().UTC()
	require.NoError(t, f.milestones.TransitionFromPending(f.db, m.ID, models.MilestoneApproved, aud.ID, now))

	var stored models.Milestone
	require.NoError(t, f.milestones.GetByID(ctx, m.ID, &stored))
	assert.Equal(t, models.MilestoneApproved, stored.Status)
	require.NotNil(t, stored.AuditorID)
	assert.Equal(t, aud.ID, *stored.AuditorID)
	assert.NotNil(t, stored.ApprovedAt)

	// second transition hits zero rows
	err := f.milestones.TransitionFromPending(f.db, m.ID, models.MilestoneFlagged, aud.ID, now)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition))
}

func TestTransitionFromPending_FlagLeavesApprovedAtEmpty(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	gov := f.mustCreateUser(t, "gov", models.RoleGovernment)
	con := f.mustCreateUser(t, "con", models.RoleContractor)
	aud := f.mustCreateUser(t, "aud", models.RoleAuditor)
	p := f.mustCreateProject(t, gov.ID, 100)
	m := f.mustCreateMilestone(t, p.ID, con.ID, 40, models.MilestonePending)

	require.NoError(t, f.milestones.TransitionFromPending(f.db, m.ID, models.MilestoneFlagged, aud.ID, time.Now().UTC()))

	var stored models.Milestone
	require.NoError(t, f.milestones.GetByID(ctx, m.ID, &stored))
	assert.Equal(t, models.MilestoneFlagged, stored.Status)
	assert.Nil(t, stored.ApprovedAt)
}

func TestUserUniqueIndexes(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	f.mustCreateUser(t, "alice", models.RoleAuditor)

	dup := &models.User{Email: "alice@example.com", Username: "alice2", PasswordHash: "x", Role: models.RoleAuditor}
	assert.Error(t, f.users.Create(ctx, dup), "duplicate email must be rejected")

	dup = &models.User{Email: "alice2@example.com", Username: "alice", PasswordHash: "x", Role: models.RoleAuditor}
	assert.Error(t, f.users.Create(ctx, dup), "duplicate username must be rejected")
}

func TestBaseRepository_NotFound(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	var p models.Project
	err := f.projects.GetByID(ctx, 424242, &p)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	err = f.projects.Delete(ctx, 424242)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

// TestAggregatesOnPostgres runs the same aggregate queries against a real
// Postgres instance. Opt-in via INTEGRATION_TESTS=1.
func TestAggregatesOnPostgres(t *testing.T) {
	db := testutil.OpenPostgresTestDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	milestones := repository.NewMilestoneRepository(db)

	u := &models.User{Email: "pg@example.com", Username: "pguser", PasswordHash: "x", Role: models.RoleGovernment}
	require.NoError(t, users.Create(ctx, u))
	p := &models.Project{Name: "Rail Link", Budget: 900, Status: models.ProjectCreated, CreatorID: u.ID}
	require.NoError(t, projects.Create(ctx, p))
	m := &models.Milestone{ProjectID: p.ID, ContractorID: u.ID, Title: "Track bed", RequestedAmount: 300, Status: models.MilestoneApproved}
	require.NoError(t, milestones.Create(ctx, m))

	approved, err := milestones.SumApprovedByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, approved)

	byStatus, err := milestones.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byStatus[models.MilestoneApproved])
}
