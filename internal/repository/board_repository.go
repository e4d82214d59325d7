package repository

import (
	"context"
	"errors"

	"workspace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// CreateWithOwner inserts a board and its Owner member in one
// transaction. A board must never exist without its owner, so a failed
// member insert rolls the board back too.
func (r *BoardRepository) CreateWithOwner(ctx context.Context, board *model.Board, owner *model.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		owner.BoardID = board.ID
		return tx.Create(owner).Error
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

// GetFull loads the whole board graph: columns in display order, each
// with its non-archived tasks in display order and their assignees, the
// member list, and the 20 most recent activities.
func (r *BoardRepository) GetFull(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Where("archived = ?", false).Order("position ASC")
		}).
		Preload("Columns.Tasks.Assignees").
		Preload("Members").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(20)
		}).
		Where("id = ?", id).
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

// NameTaken reports whether another board already uses the given name.
func (r *BoardRepository) NameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	result := r.db.WithContext(ctx).Save(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Delete removes the board; columns, tasks, members and activities go
// with it through the schema's cascade constraints.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Board{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}
