package handler

import (
	"errors"
	"fmt"
	"net/http"

	"workspace/internal/access"
	"workspace/internal/activity"
	"workspace/internal/model"
	"workspace/internal/realtime"
	"workspace/internal/repository"
	"workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type MemberHandler struct {
	members  *repository.MemberRepository
	boards   *repository.BoardRepository
	users    *repository.UserRepository
	guard    *access.Guard
	recorder *activity.Recorder
	broker   *realtime.Broker
	log      *logrus.Logger
}

func NewMemberHandler(
	members *repository.MemberRepository,
	boards *repository.BoardRepository,
	users *repository.UserRepository,
	guard *access.Guard,
	recorder *activity.Recorder,
	broker *realtime.Broker,
	log *logrus.Logger,
) *MemberHandler {
	return &MemberHandler{
		members:  members,
		boards:   boards,
		users:    users,
		guard:    guard,
		recorder: recorder,
		broker:   broker,
		log:      log,
	}
}

type AddMemberRequest struct {
	BoardID string     `json:"board_id" binding:"required,uuid"`
	Email   string     `json:"email" binding:"omitempty,email"`
	Name    string     `json:"name"`
	Role    model.Role `json:"role" binding:"omitempty,oneof=editor viewer"`
	Color   string     `json:"color"`
}

type ChangeRoleRequest struct {
	BoardID  string     `json:"board_id" binding:"required,uuid"`
	MemberID string     `json:"member_id" binding:"required,uuid"`
	Role     model.Role `json:"role" binding:"required"`
}

// List returns a board's members. Reads are public; each member is
// enriched with a resolved directory user id and avatar when a match
// exists.
func (h *MemberHandler) List(c *gin.Context) {
	const op = "handler.Member.List"

	boardID, err := uuid.Parse(c.Query("boardId"))
	if err != nil {
		response.NewValidationError("boardId is required").JSON(c)
		return
	}

	if _, err := h.boards.GetByID(c.Request.Context(), boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	members, err := h.members.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("member load failed")
		response.NewInternalError().JSON(c)
		return
	}

	resp := make([]MemberResponse, len(members))
	for i, m := range members {
		resp[i] = resolveMember(c.Request.Context(), h.users, m)
	}
	c.JSON(http.StatusOK, resp)
}

// Add creates a membership. With an email payload the target is invited
// through the user directory; without one the member is added directly
// from the supplied name and role.
func (h *MemberHandler) Add(c *gin.Context) {
	const op = "handler.Member.Add"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}
	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}

	if _, err := h.boards.GetByID(c.Request.Context(), boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleViewer
	}

	if req.Email != "" {
		h.invite(c, boardID, userID, req.Email, role, req.Color)
		return
	}

	if req.Name == "" {
		response.NewValidationError("name or email is required").JSON(c)
		return
	}

	member := &model.Member{
		BoardID: boardID,
		Name:    req.Name,
		Role:    role,
		Color:   req.Color,
	}
	if err := h.members.Create(c.Request.Context(), member); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("member create failed")
		response.NewInternalError().JSON(c)
		return
	}

	requester := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(boardID, requester, "added member", member.Name)
	h.broker.Publish(boardID, realtime.Event{
		Type:    realtime.EventMemberAdded,
		User:    requester,
		Action:  "added member",
		Target:  member.Name,
		Payload: member,
	})

	c.JSON(http.StatusCreated, resolveMember(c.Request.Context(), h.users, *member))
}

// invite resolves the target in the user directory and stores the
// stable user reference on the membership.
func (h *MemberHandler) invite(c *gin.Context, boardID, requesterID uuid.UUID, email string, role model.Role, color string) {
	const op = "handler.Member.invite"

	target, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("directory lookup failed")
		response.NewInternalError().JSON(c)
		return
	}
	if target == nil {
		response.NewNotFoundError("user not found").JSON(c)
		return
	}
	if !target.Verified {
		response.NewValidationError("user is not verified").JSON(c)
		return
	}

	existing, err := h.members.FindByBoardAndUser(c.Request.Context(), boardID, target.ID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("membership lookup failed")
		response.NewInternalError().JSON(c)
		return
	}
	if existing != nil {
		response.NewConflictError("user is already a member of this board").JSON(c)
		return
	}

	member := &model.Member{
		BoardID: boardID,
		UserID:  &target.ID,
		Name:    target.Name,
		Role:    role,
		Avatar:  target.Avatar,
		Color:   color,
	}
	if err := h.members.Create(c.Request.Context(), member); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("member create failed")
		response.NewInternalError().JSON(c)
		return
	}

	requester := displayName(c.Request.Context(), h.users, requesterID)
	h.recorder.Record(boardID, requester, "invited", email)
	h.broker.Publish(boardID, realtime.Event{
		Type:    realtime.EventMemberAdded,
		User:    requester,
		Action:  "invited",
		Target:  email,
		Payload: member,
	})

	c.JSON(http.StatusCreated, resolveMember(c.Request.Context(), h.users, *member))
}

// ChangeRole updates a member's role. Admins and the owner only. The
// owner's role is immutable, and neither admin nor owner can be granted
// through this path.
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	const op = "handler.Member.ChangeRole"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}
	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		response.NewValidationError("invalid member ID format").JSON(c)
		return
	}

	decision, err := h.guard.CanManage(c.Request.Context(), userID, boardID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("authorization failed")
		response.NewInternalError().JSON(c)
		return
	}
	if !decision.Allowed {
		response.NewPermissionError("only admins and the owner can change roles").JSON(c)
		return
	}

	member, err := h.members.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			response.NewNotFoundError("member not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("member load failed")
		response.NewInternalError().JSON(c)
		return
	}
	if member.BoardID != boardID {
		response.NewNotFoundError("member not found").JSON(c)
		return
	}

	if member.Role == model.RoleOwner {
		response.NewPermissionError("the owner's role cannot be changed").JSON(c)
		return
	}

	switch req.Role {
	case model.RoleEditor, model.RoleViewer:
	case model.RoleAdmin, model.RoleOwner:
		response.NewPermissionError(fmt.Sprintf("the %s role cannot be assigned", req.Role)).JSON(c)
		return
	default:
		response.NewValidationError("unknown role").JSON(c)
		return
	}

	member.Role = req.Role
	if err := h.members.Update(c.Request.Context(), member); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("member update failed")
		response.NewInternalError().JSON(c)
		return
	}

	requester := displayName(c.Request.Context(), h.users, userID)
	target := fmt.Sprintf("%s to %s", member.Name, member.Role)
	h.recorder.Record(boardID, requester, "changed role of", target)
	h.broker.Publish(boardID, realtime.Event{
		Type:    realtime.EventMemberUpdated,
		User:    requester,
		Action:  "changed role of",
		Target:  target,
		Payload: member,
	})

	c.JSON(http.StatusOK, resolveMember(c.Request.Context(), h.users, *member))
}

// Remove deletes a membership. Admins and the owner may remove anyone
// but the owner; any member may remove themself.
func (h *MemberHandler) Remove(c *gin.Context) {
	const op = "handler.Member.Remove"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	boardID, err := uuid.Parse(c.Query("boardId"))
	if err != nil {
		response.NewValidationError("boardId is required").JSON(c)
		return
	}
	memberID, err := uuid.Parse(c.Query("memberId"))
	if err != nil {
		response.NewValidationError("memberId is required").JSON(c)
		return
	}

	member, err := h.members.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			response.NewNotFoundError("member not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("member load failed")
		response.NewInternalError().JSON(c)
		return
	}
	if member.BoardID != boardID {
		response.NewNotFoundError("member not found").JSON(c)
		return
	}

	if !h.isSelf(c, member, userID) {
		decision, err := h.guard.CanManage(c.Request.Context(), userID, boardID)
		if err != nil {
			h.log.WithField("operation", op).WithError(err).Error("authorization failed")
			response.NewInternalError().JSON(c)
			return
		}
		if !decision.Allowed {
			response.NewPermissionError("only admins and the owner can remove members").JSON(c)
			return
		}
	}

	if member.Role == model.RoleOwner {
		response.NewPermissionError("the owner cannot be removed").JSON(c)
		return
	}

	if err := h.members.Delete(c.Request.Context(), memberID); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("member delete failed")
		response.NewInternalError().JSON(c)
		return
	}

	requester := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(boardID, requester, "removed member", member.Name)
	h.broker.Publish(boardID, realtime.Event{
		Type:   realtime.EventMemberRemoved,
		User:   requester,
		Action: "removed member",
		Target: member.Name,
	})

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *MemberHandler) isSelf(c *gin.Context, member *model.Member, userID uuid.UUID) bool {
	if member.UserID != nil {
		return *member.UserID == userID
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		return false
	}
	return member.Name == user.Name || member.Name == user.Email
}
