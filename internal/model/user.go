package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Name           string    `gorm:"not null" json:"name"`
	Avatar         string    `json:"avatar"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Verified       bool      `gorm:"not null;default:true" json:"verified"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
