package services

import (
	"context"
	"sync"
	"time"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	appErr "github.com/govichain/engine/pkg/errors"
	"github.com/govichain/engine/pkg/logger"
	"github.com/govichain/engine/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MilestoneService is the milestone workflow engine. Each milestone moves
// PENDING -> APPROVED or PENDING -> FLAGGED exactly once; the budget
// invariant is enforced at approval time, never at creation time, so the
// outcome of competing requests depends on review order.
type MilestoneService interface {
	CreateMilestone(ctx context.Context, caller identity.Caller, input *CreateMilestoneInput) (*models.Milestone, error)
	GetMilestone(ctx context.Context, id uint) (*models.Milestone, error)
	Approve(ctx context.Context, caller identity.Caller, id uint) (*models.Milestone, error)
	Flag(ctx context.Context, caller identity.Caller, id uint) (*models.Milestone, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Milestone, error)
	ListByContractor(ctx context.Context, contractorID uint) ([]models.Milestone, error)
	ListByStatus(ctx context.Context, status models.MilestoneStatus) ([]models.Milestone, error)
	// ListForCaller is the role-shaped my-milestones view: contractors see
	// their own requests, auditors their pending review queue, government
	// users everything.
	ListForCaller(ctx context.Context, caller identity.Caller) ([]models.Milestone, error)
}

type CreateMilestoneInput struct {
	ProjectID       uint
	Title           string
	Description     string
	RequestedAmount float64
}

type milestoneService struct {
	db            *gorm.DB
	projectRepo   repository.ProjectRepository
	milestoneRepo repository.MilestoneRepository

	// projectLocks serializes the read-budget/compare/write sequence per
	// project so concurrent approvals cannot jointly overspend.
	mu           sync.Mutex
	projectLocks map[uint]*sync.Mutex
}

func NewMilestoneService(db *gorm.DB, projectRepo repository.ProjectRepository, milestoneRepo repository.MilestoneRepository) MilestoneService {
	return &milestoneService{
		db:            db,
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		projectLocks:  map[uint]*sync.Mutex{},
	}
}

var _ MilestoneService = (*milestoneService)(nil)

func (s *milestoneService) lockProject(projectID uint) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.projectLocks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.projectLocks[projectID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

func (s *milestoneService) CreateMilestone(ctx context.Context, caller identity.Caller, input *CreateMilestoneInput) (*models.Milestone, error) {
	if err := identity.RequireRole(caller, models.RoleContractor); err != nil {
		return nil, err
	}
	if len(input.Title) < 3 {
		return nil, appErr.New(appErr.CodeInvalid, "milestone title must be at least 3 characters")
	}
	if input.RequestedAmount <= 0 {
		return nil, appErr.New(appErr.CodeInvalid, "requested amount must be greater than 0")
	}

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, input.ProjectID, &p); err != nil {
		return nil, err
	}

	// Deliberately no budget check here: requests may jointly exceed the
	// remaining budget and are gated at approval time by review order.
	m := &models.Milestone{
		ProjectID:       input.ProjectID,
		ContractorID:    caller.UserID,
		Title:           input.Title,
		Description:     input.Description,
		RequestedAmount: input.RequestedAmount,
		Status:          models.MilestonePending,
	}

	if err := s.milestoneRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.L().Info("milestone created",
		zap.Uint("milestone_id", m.ID),
		zap.Uint("project_id", m.ProjectID),
		zap.Uint("contractor_id", caller.UserID),
		zap.Float64("requested_amount", m.RequestedAmount),
	)
	return m, nil
}

func (s *milestoneService) GetMilestone(ctx context.Context, id uint) (*models.Milestone, error) {
	var m models.Milestone
	if err := s.milestoneRepo.GetByID(ctx, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Approve commits the milestone's requested amount against the project
// budget. The milestone flip and any project promotion land in one
// transaction; the whole sequence is serialized per project.
func (s *milestoneService) Approve(ctx context.Context, caller identity.Caller, id uint) (*models.Milestone, error) {
	if err := identity.RequireRole(caller, models.RoleAuditor); err != nil {
		return nil, err
	}

	var m models.Milestone
	if err := s.milestoneRepo.GetByID(ctx, id, &m); err != nil {
		return nil, err
	}

	lock := s.lockProject(m.ProjectID)
	defer lock.Unlock()

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock; the earlier read may be stale.
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "reload milestone failed")
		}
		if m.Status.Terminal() {
			return appErr.Newf(appErr.CodeInvalidTransition, "milestone is already %s", m.Status)
		}

		var p models.Project
		if err := tx.First(&p, "id = ?", m.ProjectID).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "load project failed")
		}

		approvedSum, err := repository.SumApprovedByProjectTx(tx, m.ProjectID)
		if err != nil {
			return err
		}
		remaining := p.Budget - approvedSum
		if m.RequestedAmount > remaining {
			metrics.BudgetRejections.Inc()
			return appErr.Newf(appErr.CodeBudgetExceeded,
				"requested amount %.2f exceeds remaining budget %.2f", m.RequestedAmount, remaining)
		}

		if err := s.milestoneRepo.TransitionFromPending(tx, id, models.MilestoneApproved, caller.UserID, now); err != nil {
			return err
		}

		// Promote the project as budget thresholds are crossed.
		next := p.Status
		if p.Status == models.ProjectCreated {
			next = models.ProjectInProgress
		}
		if approvedSum+m.RequestedAmount >= p.Budget {
			next = models.ProjectCompleted
		}
		if next != p.Status {
			if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).
				Update("status", next).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "promote project failed")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.Status = models.MilestoneApproved
	m.AuditorID = &caller.UserID
	m.ApprovedAt = &now

	metrics.RecordReview("approved")
	logger.L().Info("milestone approved",
		zap.Uint("milestone_id", m.ID),
		zap.Uint("project_id", m.ProjectID),
		zap.Uint("auditor_id", caller.UserID),
		zap.Float64("amount", m.RequestedAmount),
	)
	return &m, nil
}

// Flag rejects a pending milestone as suspicious. No budget effect.
func (s *milestoneService) Flag(ctx context.Context, caller identity.Caller, id uint) (*models.Milestone, error) {
	if err := identity.RequireRole(caller, models.RoleAuditor); err != nil {
		return nil, err
	}

	var m models.Milestone
	if err := s.milestoneRepo.GetByID(ctx, id, &m); err != nil {
		return nil, err
	}

	lock := s.lockProject(m.ProjectID)
	defer lock.Unlock()

	if err := s.milestoneRepo.TransitionFromPending(s.db.WithContext(ctx), id, models.MilestoneFlagged, caller.UserID, time.Now().UTC()); err != nil {
		return nil, err
	}

	m.Status = models.MilestoneFlagged
	m.AuditorID = &caller.UserID

	metrics.RecordReview("flagged")
	logger.L().Info("milestone flagged",
		zap.Uint("milestone_id", m.ID),
		zap.Uint("project_id", m.ProjectID),
		zap.Uint("auditor_id", caller.UserID),
	)
	return &m, nil
}

func (s *milestoneService) ListByProject(ctx context.Context, projectID uint) ([]models.Milestone, error) {
	return s.milestoneRepo.ListByProject(ctx, projectID)
}

func (s *milestoneService) ListByContractor(ctx context.Context, contractorID uint) ([]models.Milestone, error) {
	return s.milestoneRepo.ListByContractor(ctx, contractorID)
}

func (s *milestoneService) ListByStatus(ctx context.Context, status models.MilestoneStatus) ([]models.Milestone, error) {
	if status != "" && !status.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown milestone status %q", status)
	}
	return s.milestoneRepo.List(ctx, status)
}

func (s *milestoneService) ListForCaller(ctx context.Context, caller identity.Caller) ([]models.Milestone, error) {
	switch caller.Role {
	case models.RoleContractor:
		return s.milestoneRepo.ListByContractor(ctx, caller.UserID)
	case models.RoleAuditor:
		return s.milestoneRepo.List(ctx, models.MilestonePending)
	default:
		return s.milestoneRepo.List(ctx, "")
	}
}
