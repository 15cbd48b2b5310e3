package services

import (
	"context"
	"math"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	appErr "github.com/govichain/engine/pkg/errors"
	"github.com/govichain/engine/pkg/logger"
	"github.com/govichain/engine/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService is the project ledger: it owns project records, their
// budget allocation, and the monotonic status lifecycle.
type ProjectService interface {
	CreateProject(ctx context.Context, caller identity.Caller, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	ListProjects(ctx context.Context, status models.ProjectStatus) ([]models.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	UpdateStatus(ctx context.Context, caller identity.Caller, id uint, next models.ProjectStatus) (*models.Project, error)
	DeleteProject(ctx context.Context, caller identity.Caller, id uint) error
	ComputeProgress(ctx context.Context, id uint) (*ProjectProgress, error)
}

type CreateProjectInput struct {
	Name        string
	Description string
	Budget      float64
}

// ProjectProgress is the single authoritative derivation of a project's
// budget position.
type ProjectProgress struct {
	ProjectID     uint                 `json:"project_id"`
	ProjectName   string               `json:"project_name"`
	ProjectBudget float64              `json:"project_budget"`
	ProjectStatus models.ProjectStatus `json:"project_status"`

	Milestones struct {
		Total    int64 `json:"total"`
		Pending  int64 `json:"pending"`
		Approved int64 `json:"approved"`
		Flagged  int64 `json:"flagged"`
	} `json:"milestones"`

	TotalRequested       float64 `json:"total_requested"`
	TotalApproved        float64 `json:"total_approved"`
	RemainingBudget      float64 `json:"remaining_budget"`
	CompletionPercentage float64 `json:"completion_percentage"`
	BudgetUtilization    float64 `json:"budget_utilization"`
}

type projectService struct {
	db            *gorm.DB
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository
}

func NewProjectService(db *gorm.DB, projectRepo repository.ProjectRepository, milestoneRepo repository.MilestoneRepository) ProjectService {
	return &projectService{db: db, projectRepo: projectRepo, milestoneRepo: milestoneRepo}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, caller identity.Caller, input *CreateProjectInput) (*models.Project, error) {
	if err := identity.RequireRole(caller, models.RoleGovernment); err != nil {
		return nil, err
	}
	if len(input.Name) < 3 {
		return nil, appErr.New(appErr.CodeInvalid, "project name must be at least 3 characters")
	}
	if input.Budget <= 0 {
		return nil, appErr.New(appErr.CodeInvalid, "project budget must be greater than 0")
	}

	p := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Budget:      input.Budget,
		Status:      models.ProjectCreated,
		CreatorID:   caller.UserID,
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProjectsCreated.Inc()
	logger.L().Info("project created",
		zap.Uint("project_id", p.ID),
		zap.Uint("creator_id", caller.UserID),
		zap.Float64("budget", p.Budget),
	)
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *projectService) ListProjects(ctx context.Context, status models.ProjectStatus) ([]models.Project, error) {
	if status != "" && !status.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown project status %q", status)
	}
	return s.projectRepo.List(ctx, status)
}

func (s *projectService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

// UpdateStatus advances a project's status. Status is monotonic: backward
// and same-state writes fail with invalid_transition.
func (s *projectService) UpdateStatus(ctx context.Context, caller identity.Caller, id uint, next models.ProjectStatus) (*models.Project, error) {
	if err := identity.RequireRole(caller, models.RoleGovernment); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown project status %q", next)
	}

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, id, &p); err != nil {
		return nil, err
	}
	if !p.Status.CanAdvanceTo(next) {
		return nil, appErr.Newf(appErr.CodeInvalidTransition, "cannot move project from %s to %s", p.Status, next)
	}

	p.Status = next
	if err := s.projectRepo.Update(ctx, &p); err != nil {
		return nil, err
	}

	logger.L().Info("project status updated",
		zap.Uint("project_id", p.ID),
		zap.String("status", string(p.Status)),
		zap.Uint("caller_id", caller.UserID),
	)
	return &p, nil
}

// DeleteProject removes a project that no milestone references yet.
func (s *projectService) DeleteProject(ctx context.Context, caller identity.Caller, id uint) error {
	if err := identity.RequireRole(caller, models.RoleGovernment); err != nil {
		return err
	}

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, id, &p); err != nil {
		return err
	}

	n, err := s.milestoneRepo.CountByProject(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErr.Newf(appErr.CodeConflict, "project has %d milestones and cannot be deleted", n)
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.L().Info("project deleted", zap.Uint("project_id", id), zap.Uint("caller_id", caller.UserID))
	return nil
}

func (s *projectService) ComputeProgress(ctx context.Context, id uint) (*ProjectProgress, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, id, &p); err != nil {
		return nil, err
	}

	prog := &ProjectProgress{
		ProjectID:     p.ID,
		ProjectName:   p.Name,
		ProjectBudget: p.Budget,
		ProjectStatus: p.Status,
	}

	total, err := s.milestoneRepo.CountByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	pending, err := s.milestoneRepo.CountByProjectAndStatus(ctx, id, models.MilestonePending)
	if err != nil {
		return nil, err
	}
	approved, err := s.milestoneRepo.CountByProjectAndStatus(ctx, id, models.MilestoneApproved)
	if err != nil {
		return nil, err
	}
	flagged, err := s.milestoneRepo.CountByProjectAndStatus(ctx, id, models.MilestoneFlagged)
	if err != nil {
		return nil, err
	}
	prog.Milestones.Total = total
	prog.Milestones.Pending = pending
	prog.Milestones.Approved = approved
	prog.Milestones.Flagged = flagged

	if prog.TotalRequested, err = s.milestoneRepo.SumRequestedByProject(ctx, id); err != nil {
		return nil, err
	}
	if prog.TotalApproved, err = s.milestoneRepo.SumApprovedByProject(ctx, id); err != nil {
		return nil, err
	}

	prog.RemainingBudget = p.Budget - prog.TotalApproved
	prog.CompletionPercentage = clampPercent(percentage(prog.TotalApproved, p.Budget))
	prog.BudgetUtilization = percentage(prog.TotalRequested, p.Budget)

	return prog, nil
}

// percentage computes num/denom*100 with a floor denominator of 1, so empty
// ledgers render 0 rather than dividing by zero. Rounded to 2 decimals.
func percentage(num, denom float64) float64 {
	if denom < 1 {
		denom = 1
	}
	return math.Round(num/denom*100*100) / 100
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
