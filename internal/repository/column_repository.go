package repository

import (
	"context"
	"errors"

	"workspace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position").Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) Update(ctx context.Context, column *model.Column) error {
	result := r.db.WithContext(ctx).Save(column)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Column{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

func (r *ColumnRepository) GetMaxPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("board_id = ?", boardID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// Reorder applies new positions to a board's columns in one transaction.
func (r *ColumnRepository) Reorder(ctx context.Context, boardID uuid.UUID, columns []model.Column) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range columns {
			if err := tx.Model(&model.Column{}).
				Where("id = ? AND board_id = ?", column.ID, boardID).
				Update("position", column.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
