package repository_test

import (
	"context"
	"testing"
	"time"

	"workspace/internal/model"
	"workspace/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	task := &model.Task{
		ColumnID: uuid.New(),
		Title:    "Write release notes",
		Position: 3,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Create(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	taskID := uuid.New()
	columnID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "column_id", "title", "position", "archived"}).
			AddRow(taskID.String(), columnID.String(), "Write release notes", 3, false))
	mock.ExpectQuery(`SELECT .* FROM "task_assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "user_id"}))

	// Act
	task, err := taskRepo.GetByID(context.Background(), taskID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, columnID, task.ColumnID)
	assert.Empty(t, task.Assignees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Act
	task, err := taskRepo.GetByID(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_PersistsClearedCompletion(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	task := &model.Task{
		ID:          uuid.New(),
		ColumnID:    uuid.New(),
		Title:       "Write release notes",
		CompletedAt: nil,
		CreatedAt:   time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Update(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetMaxPosition(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	columnID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), 0\) as max FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(7))

	// Act
	max, err := taskRepo.GetMaxPosition(context.Background(), columnID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 7, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Delete(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
