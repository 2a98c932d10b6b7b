package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_db "github.com/abishek1718/package-locker/internal/db/mocks"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/repository/postgresql"
)

func TestOutboxTaskRepo_GetProcessableTasks(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTx := mock_db.NewMockTx(ctrl)
	repo := postgresql.NewOutboxTaskRepo()

	taskID := uuid.New()
	mockTx.EXPECT().Select(
		gomock.Any(),
		gomock.Any(),
		gomock.Any(),
		gomock.Eq(repository.TaskStatusCreated),
		gomock.Eq(repository.TaskStatusFailed),
		gomock.Any(),
		gomock.Eq(10),
	).DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
		tasks := dest.(*[]*repository.OutboxTask)
		*tasks = append(*tasks, &repository.OutboxTask{
			ID:     taskID,
			Status: repository.TaskStatusCreated,
			Topic:  "audit_logs",
		})
		return nil
	})

	tasks, err := repo.GetProcessableTasks(ctx, mockTx, 10)
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0].ID)
}

func TestOutboxTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("marks done", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_db.NewMockDB(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		id := uuid.New()
		done := time.Now().UTC()
		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(id),
			gomock.Eq(repository.TaskStatusDone),
			gomock.Eq(1),
			gomock.Nil(),
			gomock.Eq(&done),
		).Return(pgconn.CommandTag("UPDATE 1"), nil)

		assert.NoError(t, repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusDone, 1, nil, &done))
	})

	t.Run("unknown task", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_db.NewMockDB(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		mockDB.EXPECT().Exec(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := repo.UpdateTaskStatus(ctx, mockDB, uuid.New(), repository.TaskStatusDone, 1, nil, nil)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}
