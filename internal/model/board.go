package model

import (
	"time"

	"github.com/google/uuid"
)

// Board visibility values
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Visibility  string    `gorm:"not null;default:'private';check:visibility IN ('private', 'public')" json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Columns    []Column   `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Members    []Member   `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Activities []Activity `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"activities,omitempty"`
}
