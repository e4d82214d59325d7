package handler

import (
	"errors"
	"net/http"
	"time"

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

type BoardHandler struct {
	boards   *repository.BoardRepository
	users    *repository.UserRepository
	guard    *access.Guard
	recorder *activity.Recorder
	broker   *realtime.Broker
	log      *logrus.Logger
}

func NewBoardHandler(
	boards *repository.BoardRepository,
	users *repository.UserRepository,
	guard *access.Guard,
	recorder *activity.Recorder,
	broker *realtime.Broker,
	log *logrus.Logger,
) *BoardHandler {
	return &BoardHandler{
		boards:   boards,
		users:    users,
		guard:    guard,
		recorder: recorder,
		broker:   broker,
		log:      log,
	}
}

type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=private public"`
}

type BoardResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Visibility  string `json:"visibility"`
	CreatedAt   string `json:"created_at"`
}

// BoardDetailResponse is the full board graph returned by Get.
type BoardDetailResponse struct {
	BoardResponse
	Columns    []model.Column   `json:"columns"`
	Members    []MemberResponse `json:"members"`
	Activities []model.Activity `json:"activities"`
}

func boardResponse(board *model.Board) BoardResponse {
	return BoardResponse{
		ID:          board.ID.String(),
		Name:        board.Name,
		Description: board.Description,
		Color:       board.Color,
		Visibility:  board.Visibility,
		CreatedAt:   board.CreatedAt.Format(time.RFC3339),
	}
}

// Create makes a new board; the creator becomes its single Owner member.
func (h *BoardHandler) Create(c *gin.Context) {
	const op = "handler.Board.Create"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	taken, err := h.boards.NameTaken(c.Request.Context(), req.Name, uuid.Nil)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("name check failed")
		response.NewInternalError().JSON(c)
		return
	}
	if taken {
		response.NewConflictError("a board with this name already exists").JSON(c)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("user lookup failed")
		response.NewInternalError().JSON(c)
		return
	}
	if user == nil {
		response.NewAuthError("unknown user").JSON(c)
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}

	board := &model.Board{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Visibility:  visibility,
	}
	owner := &model.Member{
		UserID: &user.ID,
		Name:   user.Name,
		Role:   model.RoleOwner,
		Avatar: user.Avatar,
	}
	if err := h.boards.CreateWithOwner(c.Request.Context(), board, owner); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("board create failed")
		response.NewInternalError().JSON(c)
		return
	}

	h.recorder.Record(board.ID, user.Name, "created board", board.Name)

	c.JSON(http.StatusCreated, boardResponse(board))
}

// Get returns the full board graph: ordered columns with their
// non-archived tasks and assignees, the member list reconciled against
// the user directory, and the 20 most recent activities.
func (h *BoardHandler) Get(c *gin.Context) {
	const op = "handler.Board.Get"

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}

	board, err := h.boards.GetFull(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	c.JSON(http.StatusOK, h.detailResponse(c, board))
}

func (h *BoardHandler) detailResponse(c *gin.Context, board *model.Board) BoardDetailResponse {
	resp := BoardDetailResponse{
		BoardResponse: boardResponse(board),
		Columns:       board.Columns,
		Members:       make([]MemberResponse, len(board.Members)),
		Activities:    board.Activities,
	}
	for i, m := range board.Members {
		resp.Members[i] = resolveMember(c.Request.Context(), h.users, m)
	}
	return resp
}

// Update changes board settings. Admins and the owner only.
func (h *BoardHandler) Update(c *gin.Context) {
	const op = "handler.Board.Update"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}

	board, err := h.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	decision, err := h.guard.CanManage(c.Request.Context(), userID, boardID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("authorization failed")
		response.NewInternalError().JSON(c)
		return
	}
	if !decision.Allowed {
		response.NewPermissionError("you don't have permission to update this board").JSON(c)
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	if req.Name != nil && *req.Name != board.Name {
		taken, err := h.boards.NameTaken(c.Request.Context(), *req.Name, board.ID)
		if err != nil {
			h.log.WithField("operation", op).WithError(err).Error("name check failed")
			response.NewInternalError().JSON(c)
			return
		}
		if taken {
			response.NewConflictError("a board with this name already exists").JSON(c)
			return
		}
		board.Name = *req.Name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Color != nil {
		board.Color = *req.Color
	}
	if req.Visibility != nil {
		board.Visibility = *req.Visibility
	}

	if err := h.boards.Update(c.Request.Context(), board); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("board update failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(board.ID, user, "updated board", board.Name)
	h.broker.Publish(board.ID, realtime.Event{
		Type:    realtime.EventBoardUpdated,
		User:    user,
		Action:  "updated board",
		Target:  board.Name,
		Payload: board,
	})

	full, err := h.boards.GetFull(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusOK, boardResponse(board))
		return
	}
	c.JSON(http.StatusOK, h.detailResponse(c, full))
}

// Delete removes the board and everything it owns. Admins and the owner
// only.
func (h *BoardHandler) Delete(c *gin.Context) {
	const op = "handler.Board.Delete"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}

	board, err := h.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	decision, err := h.guard.CanManage(c.Request.Context(), userID, boardID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("authorization failed")
		response.NewInternalError().JSON(c)
		return
	}
	if !decision.Allowed {
		response.NewPermissionError("you don't have permission to delete this board").JSON(c)
		return
	}

	if err := h.boards.Delete(c.Request.Context(), boardID); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("board delete failed")
		response.NewInternalError().JSON(c)
		return
	}

	h.broker.Publish(boardID, realtime.Event{
		Type:   realtime.EventBoardDeleted,
		User:   displayName(c.Request.Context(), h.users, userID),
		Action: "deleted board",
		Target: board.Name,
	})

	c.Status(http.StatusNoContent)
}
