package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an append-only audit entry. Rows are never updated.
type Activity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	User      string    `gorm:"column:user_name" json:"user"`
	Action    string    `gorm:"not null" json:"action"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}
