package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	"github.com/govichain/engine/internal/services"
	"github.com/govichain/engine/internal/testutil"
)

type fixture struct {
	db         *gorm.DB
	users      repository.UserRepository
	projects   repository.ProjectRepository
	milestones repository.MilestoneRepository

	auth      services.AuthService
	project   services.ProjectService
	milestone services.MilestoneService
	dashboard services.DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	milestones := repository.NewMilestoneRepository(db)

	return &fixture{
		db:         db,
		users:      users,
		projects:   projects,
		milestones: milestones,
		auth:       services.NewAuthService(users, []byte("test-secret-key-for-testing"), time.Hour),
		project:    services.NewProjectService(db, projects, milestones),
		milestone:  services.NewMilestoneService(db, projects, milestones),
		dashboard:  services.NewDashboardService(users, projects, milestones, nil),
	}
}

var userSeq int

// seedUser inserts a user with the given role and returns its caller identity.
func (f *fixture) seedUser(t *testing.T, role models.Role) identity.Caller {
	t.Helper()
	userSeq++
	u := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Username:     fmt.Sprintf("user%d", userSeq),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return identity.Caller{UserID: u.ID, Username: u.Username, Role: role}
}

// seedProject creates a project owned by a fresh GOVERNMENT user.
func (f *fixture) seedProject(t *testing.T, budget float64) (*models.Project, identity.Caller) {
	t.Helper()
	gov := f.seedUser(t, models.RoleGovernment)
	p, err := f.project.CreateProject(context.Background(), gov, &services.CreateProjectInput{
		Name:   "Highway Rehabilitation",
		Budget: budget,
	})
	require.NoError(t, err)
	return p, gov
}

// seedMilestone creates a pending milestone from a fresh CONTRACTOR.
func (f *fixture) seedMilestone(t *testing.T, projectID uint, amount float64) (*models.Milestone, identity.Caller) {
	t.Helper()
	contractor := f.seedUser(t, models.RoleContractor)
	m, err := f.milestone.CreateMilestone(context.Background(), contractor, &services.CreateMilestoneInput{
		ProjectID:       projectID,
		Title:           "Phase delivery",
		RequestedAmount: amount,
	})
	require.NoError(t, err)
	return m, contractor
}
