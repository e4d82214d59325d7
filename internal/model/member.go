package model

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a member may do on a board.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanManage reports whether the role may mutate board settings and
// membership.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Member binds a participant to a board with a role. UserID is resolved
// against the user directory at invite time; members created through the
// direct-add path carry only a display name and no stable reference.
type Member struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_members_board_user" json:"board_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_members_board_user" json:"user_id,omitempty"`
	Name      string     `gorm:"not null" json:"name"`
	Role      Role       `gorm:"not null;check:role IN ('owner', 'admin', 'editor', 'viewer')" json:"role"`
	Avatar    string     `json:"avatar"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
}
