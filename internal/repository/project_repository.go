package repository

import (
	"context"

	"github.com/govichain/engine/internal/models"
	appErr "github.com/govichain/engine/pkg/errors"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	List(ctx context.Context, status models.ProjectStatus) ([]models.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.ProjectStatus]int64, error)
	SumBudgets(ctx context.Context) (float64, error)
	SumBudgetsByOwner(ctx context.Context, ownerID uint) (float64, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

// List returns projects in insertion order, optionally filtered by status.
func (r *projectRepository) List(ctx context.Context, status models.ProjectStatus) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Project
	if err := q.Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var out []models.Project
	if err := r.db.WithContext(ctx).Where("creator_id = ?", ownerID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by owner failed")
	}
	return out, nil
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count projects failed")
	}
	return n, nil
}

func (r *projectRepository) CountByStatus(ctx context.Context) (map[models.ProjectStatus]int64, error) {
	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(id) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count projects by status failed")
	}
	out := make(map[models.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *projectRepository) SumBudgets(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("COALESCE(SUM(budget), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum project budgets failed")
	}
	return total, nil
}

func (r *projectRepository) SumBudgetsByOwner(ctx context.Context, ownerID uint) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("creator_id = ?", ownerID).
		Select("COALESCE(SUM(budget), 0)").Scan(&total).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "sum project budgets by owner failed")
	}
	return total, nil
}

func (r *projectRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("creator_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count projects by owner failed")
	}
	return n, nil
}
