package repository

import (
	"context"

	"github.com/govichain/engine/internal/models"
	appErr "github.com/govichain/engine/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByUsername(ctx context.Context, username string, dest *models.User) error
	List(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by username failed")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list users failed")
	}
	return out, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(id) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count users by role failed")
	}
	out := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
