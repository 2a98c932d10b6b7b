package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	mock_db "github.com/abishek1718/package-locker/internal/db/mocks"
	"github.com/abishek1718/package-locker/internal/repository"
	mock_storage "github.com/abishek1718/package-locker/internal/storage/mocks"
)

type failingProducer struct{}

func (failingProducer) SendMessage(context.Context, string, []byte, []byte) error {
	return errors.New("broker unreachable")
}

func (failingProducer) Close() error { return nil }

func newPublisherMocks(t *testing.T) (*mock_db.MockDB, *mock_db.MockTx, *mock_storage.MockOutboxTaskRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	dbMock := mock_db.NewMockDB(ctrl)
	txMock := mock_db.NewMockTx(ctrl)
	txMock.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	return dbMock, txMock, mock_storage.NewMockOutboxTaskRepository(ctrl)
}

func TestProcessBatchDeliversWithConsoleProducer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbMock, txMock, repoMock := newPublisherMocks(t)

	task := NewTask("audit_logs", []byte(`{"method":"POST","path":"/packages"}`))

	dbMock.EXPECT().BeginTx(ctx).Return(txMock, nil)
	repoMock.EXPECT().GetProcessableTasks(ctx, txMock, 50).
		Return([]*repository.OutboxTask{task}, nil)
	repoMock.EXPECT().UpdateTaskStatusTx(ctx, txMock, task.ID,
		repository.TaskStatusProcessing, 0, gomock.Nil(), gomock.Nil()).Return(nil)
	txMock.EXPECT().Commit(ctx).Return(nil)
	repoMock.EXPECT().UpdateTaskStatus(ctx, dbMock, task.ID,
		repository.TaskStatusDone, 0, gomock.Nil(), gomock.Not(gomock.Nil())).Return(nil)

	p := NewPublisher(dbMock, repoMock, NewConsoleProducer(zap.NewNop()), PublisherConfig{
		PollInterval: time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, zap.NewNop())

	require.NoError(t, p.processBatch(ctx))
}

func TestProcessBatchMarksFailedOnSendError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbMock, txMock, repoMock := newPublisherMocks(t)

	task := NewTask("audit_logs", []byte(`{}`))
	task.Attempts = 4

	dbMock.EXPECT().BeginTx(ctx).Return(txMock, nil)
	repoMock.EXPECT().GetProcessableTasks(ctx, txMock, 50).
		Return([]*repository.OutboxTask{task}, nil)
	repoMock.EXPECT().UpdateTaskStatusTx(ctx, txMock, task.ID,
		repository.TaskStatusProcessing, 4, gomock.Nil(), gomock.Nil()).Return(nil)
	txMock.EXPECT().Commit(ctx).Return(nil)
	repoMock.EXPECT().UpdateTaskStatus(ctx, dbMock, task.ID,
		repository.TaskStatusFailed, 5, gomock.Not(gomock.Nil()), gomock.Nil()).Return(nil)

	p := NewPublisher(dbMock, repoMock, failingProducer{}, PublisherConfig{
		PollInterval: time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, zap.NewNop())

	require.NoError(t, p.processBatch(ctx))
}

func TestProcessBatchEmptyCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbMock, txMock, repoMock := newPublisherMocks(t)

	dbMock.EXPECT().BeginTx(ctx).Return(txMock, nil)
	repoMock.EXPECT().GetProcessableTasks(ctx, txMock, 50).Return(nil, nil)
	txMock.EXPECT().Commit(ctx).Return(nil)

	p := NewPublisher(dbMock, repoMock, NewConsoleProducer(zap.NewNop()), PublisherConfig{
		PollInterval: time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, zap.NewNop())

	require.NoError(t, p.processBatch(ctx))
}
