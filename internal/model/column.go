package model

import (
	"strings"

	"github.com/google/uuid"
)

type Column struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	Title    string    `gorm:"not null" json:"title"`
	Position int       `gorm:"not null" json:"position"`

	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// MarksCompleted reports whether a column title marks the tasks in it as
// finished. There is no fixed set of columns; the title is the only
// semantic signal, so any column named e.g. "Done" or "Completed"
// becomes the de-facto terminal lane.
func MarksCompleted(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "done") || strings.Contains(t, "completed")
}
