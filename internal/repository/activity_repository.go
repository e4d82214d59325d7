package repository

import (
	"context"

	"workspace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an audit entry. Activities are never updated or
// deleted individually; they only disappear when their board does.
func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByBoardID returns the most recent activities for a board, newest first.
func (r *ActivityRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
