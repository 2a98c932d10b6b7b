package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []AuditLogEntry
}

func (s *recordingSink) Persist(_ context.Context, batch []AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, batch...)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestAuditManager_FlushesFullBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	manager := NewAuditManager(1, 2, time.Minute, sink, zap.NewNop())
	manager.Start(ctx)

	manager.LogEntry(ctx, AuditLogEntry{Handler: "create_package", StatusCode: 201})
	manager.LogEntry(ctx, AuditLogEntry{Handler: "mark_picked_up", StatusCode: 200})

	require.Eventually(t, func() bool { return sink.count() == 2 },
		2*time.Second, 10*time.Millisecond)
}

func TestAuditManager_FlushesOnTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	manager := NewAuditManager(1, 100, 50*time.Millisecond, sink, zap.NewNop())
	manager.Start(ctx)

	manager.LogEntry(ctx, AuditLogEntry{Handler: "login", StatusCode: 200})

	require.Eventually(t, func() bool { return sink.count() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestAuditManager_ShutdownDrainsPartialBatch(t *testing.T) {
	ctx := context.Background()

	sink := &recordingSink{}
	manager := NewAuditManager(2, 100, time.Minute, sink, zap.NewNop())
	manager.Start(ctx)

	manager.LogEntry(ctx, AuditLogEntry{Handler: "create_resident", StatusCode: 201})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	manager.Shutdown(shutdownCtx)

	assert.Equal(t, 1, sink.count())

	// A second shutdown is a no-op.
	manager.Shutdown(shutdownCtx)
}
