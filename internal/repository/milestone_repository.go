package repository

import (
	"context"
	"time"

	"github.com/govichain/engine/internal/models"
	appErr "github.com/govichain/engine/pkg/errors"
	"gorm.io/gorm"
)

type MilestoneRepository interface {
	BaseRepository[models.Milestone]
	List(ctx context.Context, status models.MilestoneStatus) ([]models.Milestone, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Milestone, error)
	ListByContractor(ctx context.Context, contractorID uint) ([]models.Milestone, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.MilestoneStatus]int64, error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	CountByProjectAndStatus(ctx context.Context, projectID uint, status models.MilestoneStatus) (int64, error)
	CountByContractorAndStatus(ctx context.Context, contractorID uint, status models.MilestoneStatus) (int64, error)
	CountByAuditorAndStatus(ctx context.Context, auditorID uint, status models.MilestoneStatus) (int64, error)
	SumRequested(ctx context.Context) (float64, error)
	SumApproved(ctx context.Context) (float64, error)
	SumRequestedByProject(ctx context.Context, projectID uint) (float64, error)
	SumApprovedByProject(ctx context.Context, projectID uint) (float64, error)
	SumApprovedByContractor(ctx context.Context, contractorID uint) (float64, error)

	// TransitionFromPending flips the milestone out of PENDING with a guarded
	// update; it returns an invalid_transition error if the row was already
	// in a terminal state. Runs on tx so callers can make the transition
	// atomic with project promotion.
	TransitionFromPending(tx *gorm.DB, id uint, to models.MilestoneStatus, auditorID uint, reviewedAt time.Time) error
}

type milestoneRepository struct {
	BaseRepository[models.Milestone]
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{BaseRepository: NewBaseRepository[models.Milestone](db), db: db}
}

// List returns milestones in insertion order, optionally filtered by status.
func (r *milestoneRepository) List(ctx context.Context, status models.MilestoneStatus) ([]models.Milestone, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Milestone
	if err := q.Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list milestones failed")
	}
	return out, nil
}

func (r *milestoneRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Milestone, error) {
	var out []models.Milestone
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list milestones by project failed")
	}
	return out, nil
}

func (r *milestoneRepository) ListByContractor(ctx context.Context, contractorID uint) ([]models.Milestone, error) {
	var out []models.Milestone
	if err := r.db.WithContext(ctx).Where("contractor_id = ?", contractorID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list milestones by contractor failed")
	}
	return out, nil
}

func (r *milestoneRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count milestones failed")
	}
	return n, nil
}

func (r *milestoneRepository) CountByStatus(ctx context.Context) (map[models.MilestoneStatus]int64, error) {
	var rows []struct {
		Status models.MilestoneStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Select("status, COUNT(id) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count milestones by status failed")
	}
	out := make(map[models.MilestoneStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *milestoneRepository) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count milestones by project failed")
	}
	return n, nil
}

func (r *milestoneRepository) CountByProjectAndStatus(ctx context.Context, projectID uint, status models.MilestoneStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("project_id = ? AND status = ?", projectID, status).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count milestones by project and status failed")
	}
	return n, nil
}

func (r *milestoneRepository) CountByContractorAndStatus(ctx context.Context, contractorID uint, status models.MilestoneStatus) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Milestone{}).Where("contractor_id = ?", contractorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count milestones by contractor failed")
	}
	return n, nil
}

func (r *milestoneRepository) CountByAuditorAndStatus(ctx context.Context, auditorID uint, status models.MilestoneStatus) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Milestone{}).Where("auditor_id = ?", auditorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count milestones by auditor failed")
	}
	return n, nil
}

func (r *milestoneRepository) SumRequested(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum requested amounts failed")
	}
	return total, nil
}

func (r *milestoneRepository) SumApproved(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("status = ?", models.MilestoneApproved).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum approved amounts failed")
	}
	return total, nil
}

func (r *milestoneRepository) SumRequestedByProject(ctx context.Context, projectID uint) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum requested amounts by project failed")
	}
	return total, nil
}

func (r *milestoneRepository) SumApprovedByProject(ctx context.Context, projectID uint) (float64, error) {
	return sumApprovedByProject(r.db.WithContext(ctx), projectID)
}

func (r *milestoneRepository) SumApprovedByContractor(ctx context.Context, contractorID uint) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("contractor_id = ? AND status = ?", contractorID, models.MilestoneApproved).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum approved amounts by contractor failed")
	}
	return total, nil
}

// sumApprovedByProject is shared with the workflow engine so the approval
// transaction can recompute the approved sum on its own tx handle.
func sumApprovedByProject(db *gorm.DB, projectID uint) (float64, error) {
	var total float64
	if err := db.Model(&models.Milestone{}).
		Where("project_id = ? AND status = ?", projectID, models.MilestoneApproved).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum approved amounts by project failed")
	}
	return total, nil
}

// SumApprovedByProjectTx exposes the approved-sum query on an arbitrary
// transaction handle.
func SumApprovedByProjectTx(tx *gorm.DB, projectID uint) (float64, error) {
	return sumApprovedByProject(tx, projectID)
}

func (r *milestoneRepository) TransitionFromPending(tx *gorm.DB, id uint, to models.MilestoneStatus, auditorID uint, reviewedAt time.Time) error {
	updates := map[string]any{
		"status":     to,
		"auditor_id": auditorID,
	}
	if to == models.MilestoneApproved {
		updates["approved_at"] = reviewedAt
	}
	res := tx.Model(&models.Milestone{}).
		Where("id = ? AND status = ?", id, models.MilestonePending).
		Updates(updates)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "transition milestone failed")
	}
	// Zero rows means another reviewer won the race or the milestone is
	// already terminal; both read as an invalid transition to the caller.
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeInvalidTransition, "milestone is not pending")
	}
	return nil
}
