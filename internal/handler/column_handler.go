package handler

import (
	"errors"
	"net/http"

	"workspace/internal/activity"
	"workspace/internal/model"
	"workspace/internal/realtime"
	"workspace/internal/repository"
	"workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ColumnHandler struct {
	columns  *repository.ColumnRepository
	boards   *repository.BoardRepository
	users    *repository.UserRepository
	recorder *activity.Recorder
	broker   *realtime.Broker
	log      *logrus.Logger
}

func NewColumnHandler(
	columns *repository.ColumnRepository,
	boards *repository.BoardRepository,
	users *repository.UserRepository,
	recorder *activity.Recorder,
	broker *realtime.Broker,
	log *logrus.Logger,
) *ColumnHandler {
	return &ColumnHandler{
		columns:  columns,
		boards:   boards,
		users:    users,
		recorder: recorder,
		broker:   broker,
		log:      log,
	}
}

type CreateColumnRequest struct {
	BoardID  string `json:"board_id" binding:"required,uuid"`
	Title    string `json:"title" binding:"required"`
	Position *int   `json:"position"`
}

type UpdateColumnRequest struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

type ReorderColumnsRequest struct {
	Columns []struct {
		ID       string `json:"id" binding:"required,uuid"`
		Position int    `json:"position"`
	} `json:"columns" binding:"required"`
}

func (h *ColumnHandler) Create(c *gin.Context) {
	const op = "handler.Column.Create"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	var req CreateColumnRequest
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

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		max, err := h.columns.GetMaxPosition(c.Request.Context(), boardID)
		if err != nil {
			h.log.WithField("operation", op).WithError(err).Error("position lookup failed")
			response.NewInternalError().JSON(c)
			return
		}
		position = max + 1
	}

	column := &model.Column{
		BoardID:  boardID,
		Title:    req.Title,
		Position: position,
	}
	if err := h.columns.Create(c.Request.Context(), column); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column create failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(boardID, user, "added column", column.Title)
	h.broker.Publish(boardID, realtime.Event{
		Type:    realtime.EventColumnChanged,
		User:    user,
		Action:  "added column",
		Target:  column.Title,
		Payload: column,
	})

	c.JSON(http.StatusCreated, column)
}

func (h *ColumnHandler) Update(c *gin.Context) {
	const op = "handler.Column.Update"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid column ID format").JSON(c)
		return
	}

	column, err := h.columns.GetByID(c.Request.Context(), columnID)
	if err != nil {
		if errors.Is(err, repository.ErrColumnNotFound) {
			response.NewNotFoundError("column not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("column load failed")
		response.NewInternalError().JSON(c)
		return
	}

	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	if req.Title != nil {
		column.Title = *req.Title
	}
	if req.Position != nil {
		column.Position = *req.Position
	}

	if err := h.columns.Update(c.Request.Context(), column); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column update failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(column.BoardID, user, "updated column", column.Title)
	h.broker.Publish(column.BoardID, realtime.Event{
		Type:    realtime.EventColumnChanged,
		User:    user,
		Action:  "updated column",
		Target:  column.Title,
		Payload: column,
	})

	c.JSON(http.StatusOK, column)
}

// Delete removes a column and, through the schema cascade, every task
// in it.
func (h *ColumnHandler) Delete(c *gin.Context) {
	const op = "handler.Column.Delete"

	userID, ok := requesterID(c)
	if !ok {
		response.NewAuthError("not authenticated").JSON(c)
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid column ID format").JSON(c)
		return
	}

	column, err := h.columns.GetByID(c.Request.Context(), columnID)
	if err != nil {
		if errors.Is(err, repository.ErrColumnNotFound) {
			response.NewNotFoundError("column not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("column load failed")
		response.NewInternalError().JSON(c)
		return
	}

	if err := h.columns.Delete(c.Request.Context(), columnID); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column delete failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(column.BoardID, user, "removed column", column.Title)
	h.broker.Publish(column.BoardID, realtime.Event{
		Type:   realtime.EventColumnChanged,
		User:   user,
		Action: "removed column",
		Target: column.Title,
	})

	c.JSON(http.StatusOK, gin.H{"message": "column removed"})
}

// Reorder applies a new display order to a board's columns.
func (h *ColumnHandler) Reorder(c *gin.Context) {
	const op = "handler.Column.Reorder"

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

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	columns := make([]model.Column, 0, len(req.Columns))
	for _, item := range req.Columns {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			response.NewValidationError("invalid column ID format").JSON(c)
			return
		}
		columns = append(columns, model.Column{ID: id, Position: item.Position})
	}

	if err := h.columns.Reorder(c.Request.Context(), boardID, columns); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column reorder failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := displayName(c.Request.Context(), h.users, userID)
	h.recorder.Record(boardID, user, "reordered columns", board.Name)
	h.broker.Publish(boardID, realtime.Event{
		Type:   realtime.EventColumnChanged,
		User:   user,
		Action: "reordered columns",
		Target: board.Name,
	})

	c.JSON(http.StatusOK, gin.H{"message": "columns reordered"})
}
