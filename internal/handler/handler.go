package handler

import (
	"context"

	"workspace/internal/middleware"
	"workspace/internal/model"
	"workspace/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fallbackUser names mutations whose caller supplied no display identity.
const fallbackUser = "System"

// requesterID extracts the authenticated user's id set by the JWT
// middleware.
func requesterID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

type MemberResponse struct {
	ID      string     `json:"id"`
	BoardID string     `json:"board_id"`
	UserID  *string    `json:"user_id,omitempty"`
	Name    string     `json:"name"`
	Role    model.Role `json:"role"`
	Avatar  string     `json:"avatar"`
	Color   string     `json:"color"`
}

// resolveMember enriches a member with directory identity. The stable
// user reference wins; members without one are matched by their stored
// display string. A directory avatar overrides the stored one.
func resolveMember(ctx context.Context, users *repository.UserRepository, m model.Member) MemberResponse {
	resp := MemberResponse{
		ID:      m.ID.String(),
		BoardID: m.BoardID.String(),
		Name:    m.Name,
		Role:    m.Role,
		Avatar:  m.Avatar,
		Color:   m.Color,
	}

	var user *model.User
	if m.UserID != nil {
		user, _ = users.GetByID(ctx, *m.UserID)
	}
	if user == nil {
		user, _ = users.FindByIdentity(ctx, m.Name)
	}
	if user != nil {
		id := user.ID.String()
		resp.UserID = &id
		if user.Avatar != "" {
			resp.Avatar = user.Avatar
		}
	}
	return resp
}

// displayName resolves the requester's directory name for audit
// entries, falling back to "System".
func displayName(ctx context.Context, users *repository.UserRepository, id uuid.UUID) string {
	user, err := users.GetByID(ctx, id)
	if err != nil || user == nil {
		return fallbackUser
	}
	return user.Name
}
