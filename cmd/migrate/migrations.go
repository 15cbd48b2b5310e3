package main

import (
	"gorm.io/gorm"

	"github.com/govichain/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.Milestone{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addMilestoneReviewIndex,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// addMilestoneReviewIndex speeds up the approved-sum query that runs inside
// every approval transaction.
func addMilestoneReviewIndex(db *gorm.DB) error {
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_milestones_project_status ON milestones (project_id, status)",
	).Error
}
