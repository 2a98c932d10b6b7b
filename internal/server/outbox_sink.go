package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/kafka"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/storage"
)

// OutboxSink persists audit batches into the outbox table, from where
// the kafka publisher eventually ships them.
type OutboxSink struct {
	db     db.DB
	tasks  storage.OutboxTaskRepository
	topic  string
	logger *zap.Logger
}

func NewOutboxSink(database db.DB, tasks storage.OutboxTaskRepository, topic string, logger *zap.Logger) *OutboxSink {
	return &OutboxSink{db: database, tasks: tasks, topic: topic, logger: logger}
}

func (s *OutboxSink) Persist(ctx context.Context, batch []AuditLogEntry) error {
	var failed int
	for _, entry := range batch {
		payload, err := json.Marshal(repository.AuditLogPayload{
			Timestamp:  entry.Timestamp,
			UserID:     entry.UserID,
			PackageID:  entry.PackageID,
			Method:     entry.Method,
			Path:       entry.Path,
			Handler:    entry.Handler,
			StatusCode: entry.StatusCode,
			Request:    entry.Request,
			Response:   entry.Response,
		})
		if err != nil {
			s.logger.Error("failed to marshal audit payload", zap.Error(err))
			failed++
			continue
		}

		if err := s.tasks.Create(ctx, s.db, kafka.NewTask(s.topic, payload)); err != nil {
			s.logger.Error("failed to enqueue audit task", zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to enqueue %d of %d audit entries", failed, len(batch))
	}
	return nil
}
