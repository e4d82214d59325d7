package repository

import (
	"context"
	"errors"

	"workspace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("created_at").Find(&members).Error
	return members, err
}

// FindByBoardAndUser returns the membership binding a directory user to
// a board, or nil when none exists.
func (r *MemberRepository) FindByBoardAndUser(ctx context.Context, boardID, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	result := r.db.WithContext(ctx).Save(member)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Member{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
