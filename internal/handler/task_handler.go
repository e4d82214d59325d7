package handler

import (
	"errors"
	"net/http"
	"time"

	"workspace/internal/activity"
	"workspace/internal/model"
	"workspace/internal/realtime"
	"workspace/internal/repository"
	"workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type TaskHandler struct {
	tasks    *repository.TaskRepository
	columns  *repository.ColumnRepository
	users    *repository.UserRepository
	recorder *activity.Recorder
	broker   *realtime.Broker
	log      *logrus.Logger
}

func NewTaskHandler(
	tasks *repository.TaskRepository,
	columns *repository.ColumnRepository,
	users *repository.UserRepository,
	recorder *activity.Recorder,
	broker *realtime.Broker,
	log *logrus.Logger,
) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		columns:  columns,
		users:    users,
		recorder: recorder,
		broker:   broker,
		log:      log,
	}
}

type CreateTaskRequest struct {
	ColumnID    string     `json:"column_id" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Tag         string     `json:"tag"`
	TagColor    string     `json:"tag_color"`
	Priority    string     `json:"priority"`
	Position    *int       `json:"position"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	DueDate     *time.Time `json:"due_date"`
	User        string     `json:"user"`
}

// UpdateTaskRequest carries partial task fields; nil means "leave as is".
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Tag         *string        `json:"tag"`
	TagColor    *string        `json:"tag_color"`
	Priority    *string        `json:"priority"`
	Position    *int           `json:"position"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	DueDate     *time.Time     `json:"due_date"`
	ColumnID    *string        `json:"column_id" binding:"omitempty,uuid"`
	Comments    datatypes.JSON `json:"comments"`
	Attachments datatypes.JSON `json:"attachments"`
	Checklist   datatypes.JSON `json:"checklist"`
	Assignees   *[]string      `json:"assignees"`
	Archived    *bool          `json:"archived"`
	User        string         `json:"user"`
}

// Create adds a task to a column, at the end unless a position is given.
func (h *TaskHandler) Create(c *gin.Context) {
	const op = "handler.Task.Create"

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	columnID, err := uuid.Parse(req.ColumnID)
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

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		max, err := h.tasks.GetMaxPosition(c.Request.Context(), columnID)
		if err != nil {
			h.log.WithField("operation", op).WithError(err).Error("position lookup failed")
			response.NewInternalError().JSON(c)
			return
		}
		position = max + 1
	}

	task := &model.Task{
		ColumnID:    columnID,
		Title:       req.Title,
		Description: req.Description,
		Tag:         req.Tag,
		TagColor:    req.TagColor,
		Priority:    req.Priority,
		Position:    position,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DueDate:     req.DueDate,
	}
	// a task born in a terminal lane is born completed
	if model.MarksCompleted(column.Title) {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("task create failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := req.User
	if user == "" {
		user = fallbackUser
	}
	h.recorder.Record(column.BoardID, user, "created task", task.Title)
	h.broker.Publish(column.BoardID, realtime.Event{
		Type:    realtime.EventTaskCreated,
		User:    user,
		Action:  "created task",
		Target:  task.Title,
		Payload: task,
	})

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	const op = "handler.Task.Get"

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid task ID format").JSON(c)
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			response.NewNotFoundError("task not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("task load failed")
		response.NewInternalError().JSON(c)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update applies partial task fields. Moving a task to another column
// re-derives completion from the destination title: "done"/"completed"
// lanes stamp completed_at, any other lane clears it. An update that
// keeps the column leaves completed_at untouched.
func (h *TaskHandler) Update(c *gin.Context) {
	const op = "handler.Task.Update"

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid task ID format").JSON(c)
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			response.NewNotFoundError("task not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("task load failed")
		response.NewInternalError().JSON(c)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid request").JSON(c)
		return
	}

	// assignees are validated and loaded up front so a bad id cannot
	// reject the request after the task row has already been written
	var assignees []model.User
	if req.Assignees != nil {
		ids := make([]uuid.UUID, 0, len(*req.Assignees))
		for _, raw := range *req.Assignees {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.NewValidationError("invalid assignee ID format").JSON(c)
				return
			}
			ids = append(ids, id)
		}
		var err error
		assignees, err = h.users.GetByIDs(c.Request.Context(), ids)
		if err != nil {
			h.log.WithField("operation", op).WithError(err).Error("assignee lookup failed")
			response.NewInternalError().JSON(c)
			return
		}
	}

	column, err := h.columns.GetByID(c.Request.Context(), task.ColumnID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column load failed")
		response.NewInternalError().JSON(c)
		return
	}
	boardID := column.BoardID

	moved := false
	if req.ColumnID != nil {
		destID, err := uuid.Parse(*req.ColumnID)
		if err != nil {
			response.NewValidationError("invalid column ID format").JSON(c)
			return
		}
		if destID != task.ColumnID {
			dest, err := h.columns.GetByID(c.Request.Context(), destID)
			if err != nil {
				if errors.Is(err, repository.ErrColumnNotFound) {
					response.NewNotFoundError("column not found").JSON(c)
					return
				}
				h.log.WithField("operation", op).WithError(err).Error("column load failed")
				response.NewInternalError().JSON(c)
				return
			}
			if dest.BoardID != boardID {
				response.NewValidationError("column belongs to a different board").JSON(c)
				return
			}
			task.ColumnID = destID
			if model.MarksCompleted(dest.Title) {
				now := time.Now()
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
			moved = true
		}
	}

	renamed := false
	if req.Title != nil && *req.Title != task.Title {
		task.Title = *req.Title
		renamed = true
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Tag != nil {
		task.Tag = *req.Tag
	}
	if req.TagColor != nil {
		task.TagColor = *req.TagColor
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Position != nil {
		task.Position = *req.Position
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		task.EndDate = req.EndDate
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Comments != nil {
		task.Comments = req.Comments
	}
	if req.Attachments != nil {
		task.Attachments = req.Attachments
	}
	if req.Checklist != nil {
		task.Checklist = req.Checklist
	}
	if req.Archived != nil {
		task.Archived = *req.Archived
	}

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("task update failed")
		response.NewInternalError().JSON(c)
		return
	}

	if req.Assignees != nil {
		if err := h.tasks.ReplaceAssignees(c.Request.Context(), task, assignees); err != nil {
			h.log.WithField("operation", op).WithError(err).Error("assignee replace failed")
			response.NewInternalError().JSON(c)
			return
		}
		task.Assignees = assignees
	}

	action := "updated task"
	if moved {
		action = "moved task"
	} else if renamed {
		action = "renamed task"
	}
	user := req.User
	if user == "" {
		user = fallbackUser
	}

	h.recorder.Record(boardID, user, action, task.Title)
	h.broker.Publish(boardID, realtime.Event{
		Type:    realtime.EventTaskUpdated,
		User:    user,
		Action:  action,
		Target:  task.Title,
		Payload: task,
	})

	c.JSON(http.StatusOK, task)
}

// Delete hard-deletes a task. The board is resolved through the task's
// column before the row goes away so the event still reaches the right
// channel.
func (h *TaskHandler) Delete(c *gin.Context) {
	const op = "handler.Task.Delete"

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NewValidationError("invalid task ID format").JSON(c)
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			response.NewNotFoundError("task not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("task load failed")
		response.NewInternalError().JSON(c)
		return
	}

	column, err := h.columns.GetByID(c.Request.Context(), task.ColumnID)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("column load failed")
		response.NewInternalError().JSON(c)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("task delete failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := c.Query("user")
	if user == "" {
		user = fallbackUser
	}
	h.recorder.Record(column.BoardID, user, "deleted task", task.Title)
	h.broker.Publish(column.BoardID, realtime.Event{
		Type:   realtime.EventTaskDeleted,
		User:   user,
		Action: "deleted task",
		Target: task.Title,
	})

	c.Status(http.StatusNoContent)
}
