package repository

import (
	"context"
	"errors"

	"workspace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task with its assignees
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).Preload("Assignees").First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetByColumnID retrieves the non-archived tasks of a column in display order
func (r *TaskRepository) GetByColumnID(ctx context.Context, columnID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("column_id = ? AND archived = ?", columnID, false).
		Order("position").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update persists all fields of the task, including cleared ones such as
// a completed_at reset to NULL.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ReplaceAssignees swaps the full assignment set: existing records are
// dropped and recreated from the supplied users. Not a diff.
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, task *model.Task, users []model.User) error {
	return r.db.WithContext(ctx).Model(task).Association("Assignees").Replace(users)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// GetMaxPosition returns the highest position currently used in a column.
func (r *TaskRepository) GetMaxPosition(ctx context.Context, columnID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("column_id = ?", columnID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}
