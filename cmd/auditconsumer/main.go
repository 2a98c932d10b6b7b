// Auditconsumer tails the audit topic and pretty-prints each event.
// Useful when checking what the outbox publisher actually shipped.
package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/config"
	"github.com/abishek1718/package-locker/internal/logger"
	"github.com/abishek1718/package-locker/internal/repository"
)

const groupID = "audit-log-consumer-group"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.New()
	defer log.Sync()

	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        groupID,
		Topic:          cfg.AuditTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	log.Info("consumer connected",
		zap.String("topic", cfg.AuditTopic), zap.Strings("brokers", cfg.KafkaBrokers))

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping consumer")
			return
		default:
			m, err := r.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("failed to read message", zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}

			var payload repository.AuditLogPayload
			if err := json.Unmarshal(m.Value, &payload); err != nil {
				log.Warn("skipping malformed audit event",
					zap.Int64("offset", m.Offset), zap.Error(err))
				continue
			}

			log.Info("audit event",
				zap.Time("timestamp", payload.Timestamp),
				zap.String("handler", payload.Handler),
				zap.String("method", payload.Method),
				zap.String("path", payload.Path),
				zap.Int("status", payload.StatusCode),
				zap.String("user_id", payload.UserID),
				zap.String("package_id", payload.PackageID),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}
