package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workspace/internal/activity"
	"workspace/internal/handler"
	"workspace/internal/realtime"
	"workspace/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTaskRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := quietLogger()
	userRepo := repository.NewUserRepository(gormDB)
	columnRepo := repository.NewColumnRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	activityRepo := repository.NewActivityRepository(gormDB)
	recorder := activity.NewRecorder(activityRepo, log)
	broker := realtime.NewBroker(rdb, log)

	h := handler.NewTaskHandler(taskRepo, columnRepo, userRepo, recorder, broker, log)

	r := gin.New()
	r.PUT("/task/:id", h.Update)
	return r, mock
}

// expectTaskLoad queues the task fetch plus its empty assignee preload.
func expectTaskLoad(mock sqlmock.Sqlmock, taskID, columnID uuid.UUID, completedAt *time.Time) {
	rows := sqlmock.NewRows([]string{"id", "column_id", "title", "position", "archived", "completed_at", "created_at"}).
		AddRow(taskID.String(), columnID.String(), "Write release notes", 1, false, completedAt, time.Now())
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).WillReturnRows(rows)
	mock.ExpectQuery(`SELECT .* FROM "task_assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "user_id"}))
}

func expectColumnLoad(mock sqlmock.Sqlmock, columnID, boardID uuid.UUID, title string) {
	mock.ExpectQuery(`SELECT .* FROM "columns" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position"}).
			AddRow(columnID.String(), boardID.String(), title, 0))
}

func expectTaskSaveAndAudit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()
}

func moveTask(t *testing.T, r *gin.Engine, taskID, destColumnID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"column_id": %q, "user": "Ada"}`, destColumnID)
	req := httptest.NewRequest(http.MethodPut, "/task/"+taskID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateTask_MoveToDoneStampsCompletion(t *testing.T) {
	r, mock := newTaskRouter(t)

	boardID := uuid.New()
	taskID := uuid.New()
	srcColumn := uuid.New()
	destColumn := uuid.New()

	expectTaskLoad(mock, taskID, srcColumn, nil)
	expectColumnLoad(mock, srcColumn, boardID, "In Progress")
	expectColumnLoad(mock, destColumn, boardID, "Done")
	expectTaskSaveAndAudit(mock)

	w := moveTask(t, r, taskID, destColumn)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed_at"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_MoveOutOfDoneClearsCompletion(t *testing.T) {
	r, mock := newTaskRouter(t)

	boardID := uuid.New()
	taskID := uuid.New()
	srcColumn := uuid.New()
	destColumn := uuid.New()
	done := time.Now()

	expectTaskLoad(mock, taskID, srcColumn, &done)
	expectColumnLoad(mock, srcColumn, boardID, "Done")
	expectColumnLoad(mock, destColumn, boardID, "In Progress")
	expectTaskSaveAndAudit(mock)

	w := moveTask(t, r, taskID, destColumn)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"completed_at"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_MoveAcrossBoardsRejected(t *testing.T) {
	r, mock := newTaskRouter(t)

	taskID := uuid.New()
	srcColumn := uuid.New()
	destColumn := uuid.New()

	expectTaskLoad(mock, taskID, srcColumn, nil)
	expectColumnLoad(mock, srcColumn, uuid.New(), "In Progress")
	expectColumnLoad(mock, destColumn, uuid.New(), "Done")

	w := moveTask(t, r, taskID, destColumn)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "column belongs to a different board")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_InvalidAssigneeRejectedBeforeWrite(t *testing.T) {
	r, mock := newTaskRouter(t)

	taskID := uuid.New()
	expectTaskLoad(mock, taskID, uuid.New(), nil)
	// no UPDATE is queued: a bad assignee id must fail before the task
	// row is touched

	body := `{"description": "ship it", "assignees": ["not-a-uuid"], "user": "Ada"}`
	req := httptest.NewRequest(http.MethodPut, "/task/"+taskID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid assignee ID format")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_SameColumnLeavesCompletionAlone(t *testing.T) {
	r, mock := newTaskRouter(t)

	boardID := uuid.New()
	taskID := uuid.New()
	column := uuid.New()
	done := time.Now()

	expectTaskLoad(mock, taskID, column, &done)
	expectColumnLoad(mock, column, boardID, "Done")
	expectTaskSaveAndAudit(mock)

	body := `{"description": "ship it", "user": "Ada"}`
	req := httptest.NewRequest(http.MethodPut, "/task/"+taskID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed_at"`)
	assert.Contains(t, w.Body.String(), "ship it")
	assert.NoError(t, mock.ExpectationsWereMet())
}
