package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ColumnID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"column_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Tag         string     `json:"tag"`
	TagColor    string     `json:"tag_color"`
	Priority    string     `json:"priority"`
	Position    int        `gorm:"not null" json:"position"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Archived    bool       `gorm:"not null;default:false" json:"archived"`

	Comments    datatypes.JSON `json:"comments,omitempty"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Checklist   datatypes.JSON `json:"checklist,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignees []User `gorm:"many2many:task_assignments" json:"assignees,omitempty"`
}
