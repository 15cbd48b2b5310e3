package services

import (
	"context"
	"encoding/json"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	"github.com/govichain/engine/pkg/cache"
	"github.com/govichain/engine/pkg/logger"
	"go.uber.org/zap"
)

// DashboardService derives read-only statistics from the project and
// milestone ledgers. It never mutates state.
type DashboardService interface {
	GlobalStats(ctx context.Context) (*GlobalStats, error)
	MyStats(ctx context.Context, caller identity.Caller) (any, error)
}

type BudgetStats struct {
	TotalAllocated        float64 `json:"total_allocated"`
	TotalRequested        float64 `json:"total_requested"`
	TotalApproved         float64 `json:"total_approved"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

type GlobalStats struct {
	TotalProjects    int64                            `json:"total_projects"`
	TotalMilestones  int64                            `json:"total_milestones"`
	TotalUsers       int64                            `json:"total_users"`
	ProjectStatus    map[models.ProjectStatus]int64   `json:"project_status"`
	MilestoneStatus  map[models.MilestoneStatus]int64 `json:"milestone_status"`
	Budget           BudgetStats                      `json:"budget"`
	PendingApprovals int64                            `json:"pending_approvals"`
	UsersByRole      map[models.Role]int64            `json:"users_by_role"`
}

type GovernmentStats struct {
	Role                 models.Role `json:"role"`
	ProjectsCreated      int64       `json:"projects_created"`
	TotalBudgetAllocated float64     `json:"total_budget_allocated"`
}

type ContractorStats struct {
	Role                models.Role `json:"role"`
	TotalMilestones     int64       `json:"total_milestones"`
	ApprovedMilestones  int64       `json:"approved_milestones"`
	PendingMilestones   int64       `json:"pending_milestones"`
	TotalApprovedAmount float64     `json:"total_approved_amount"`
}

type AuditorStats struct {
	Role           models.Role `json:"role"`
	PendingReviews int64       `json:"pending_reviews"`
	TotalReviewed  int64       `json:"total_reviewed"`
	Approved       int64       `json:"approved"`
	Flagged        int64       `json:"flagged"`
}

const globalStatsCacheKey = "dashboard:global_stats"

type dashboardService struct {
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
	statsCache    *cache.Cache
}

// NewDashboardService builds the aggregator. statsCache may be nil, in which
// case every read scans the ledgers directly.
func NewDashboardService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, milestoneRepo repository.MilestoneRepository, statsCache *cache.Cache) DashboardService {
	return &dashboardService{
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		statsCache:    statsCache,
	}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	if b, err := s.statsCache.Get(ctx, globalStatsCacheKey); err == nil && b != nil {
		var cached GlobalStats
		if json.Unmarshal(b, &cached) == nil {
			return &cached, nil
		}
	}

	out := &GlobalStats{}
	var err error

	if out.TotalProjects, err = s.projectRepo.Count(ctx); err != nil {
		return nil, err
	}
	if out.TotalMilestones, err = s.milestoneRepo.Count(ctx); err != nil {
		return nil, err
	}
	users, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	out.UsersByRole = users
	for _, n := range users {
		out.TotalUsers += n
	}

	if out.ProjectStatus, err = s.projectRepo.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if out.MilestoneStatus, err = s.milestoneRepo.CountByStatus(ctx); err != nil {
		return nil, err
	}
	out.PendingApprovals = out.MilestoneStatus[models.MilestonePending]

	if out.Budget.TotalAllocated, err = s.projectRepo.SumBudgets(ctx); err != nil {
		return nil, err
	}
	if out.Budget.TotalRequested, err = s.milestoneRepo.SumRequested(ctx); err != nil {
		return nil, err
	}
	if out.Budget.TotalApproved, err = s.milestoneRepo.SumApproved(ctx); err != nil {
		return nil, err
	}
	out.Budget.UtilizationPercentage = percentage(out.Budget.TotalRequested, out.Budget.TotalAllocated)

	if b, err := json.Marshal(out); err == nil {
		if cerr := s.statsCache.Set(ctx, globalStatsCacheKey, b); cerr != nil {
			logger.L().Warn("global stats cache write failed", zap.Error(cerr))
		}
	}

	return out, nil
}

func (s *dashboardService) MyStats(ctx context.Context, caller identity.Caller) (any, error) {
	switch caller.Role {
	case models.RoleGovernment:
		return s.governmentStats(ctx, caller.UserID)
	case models.RoleContractor:
		return s.contractorStats(ctx, caller.UserID)
	case models.RoleAuditor:
		return s.auditorStats(ctx, caller.UserID)
	}
	// Unreachable for authenticated callers; roles are closed.
	return nil, identity.RequireRole(caller, models.RoleGovernment, models.RoleContractor, models.RoleAuditor)
}

func (s *dashboardService) governmentStats(ctx context.Context, userID uint) (*GovernmentStats, error) {
	out := &GovernmentStats{Role: models.RoleGovernment}
	var err error
	if out.ProjectsCreated, err = s.projectRepo.CountByOwner(ctx, userID); err != nil {
		return nil, err
	}
	if out.TotalBudgetAllocated, err = s.projectRepo.SumBudgetsByOwner(ctx, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) contractorStats(ctx context.Context, userID uint) (*ContractorStats, error) {
	out := &ContractorStats{Role: models.RoleContractor}
	var err error
	if out.TotalMilestones, err = s.milestoneRepo.CountByContractorAndStatus(ctx, userID, ""); err != nil {
		return nil, err
	}
	if out.ApprovedMilestones, err = s.milestoneRepo.CountByContractorAndStatus(ctx, userID, models.MilestoneApproved); err != nil {
		return nil, err
	}
	if out.PendingMilestones, err = s.milestoneRepo.CountByContractorAndStatus(ctx, userID, models.MilestonePending); err != nil {
		return nil, err
	}
	if out.TotalApprovedAmount, err = s.milestoneRepo.SumApprovedByContractor(ctx, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) auditorStats(ctx context.Context, userID uint) (*AuditorStats, error) {
	out := &AuditorStats{Role: models.RoleAuditor}

	pending, err := s.milestoneRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out.PendingReviews = pending[models.MilestonePending]

	if out.Approved, err = s.milestoneRepo.CountByAuditorAndStatus(ctx, userID, models.MilestoneApproved); err != nil {
		return nil, err
	}
	if out.Flagged, err = s.milestoneRepo.CountByAuditorAndStatus(ctx, userID, models.MilestoneFlagged); err != nil {
		return nil, err
	}
	out.TotalReviewed = out.Approved + out.Flagged
	return out, nil
}
