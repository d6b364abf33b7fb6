package usecase

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// LogCapacity bounds the in-memory activity ring.
const LogCapacity = 50

// Telemetry holds the process-wide counters and the recent activity ring.
// Nothing here is persisted; a restart starts from zero.
type Telemetry struct {
	logger   *slog.Logger
	now      func() time.Time
	capacity int

	mu    sync.Mutex
	start time.Time
	total int64
	hits  map[string]int64
	ring  []domain.LogEntry
}

func NewTelemetry(logger *slog.Logger) *Telemetry {
	return newTelemetry(logger, time.Now, LogCapacity)
}

func newTelemetry(logger *slog.Logger, now func() time.Time, capacity int) *Telemetry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Telemetry{
		logger:   logger,
		now:      now,
		capacity: capacity,
		start:    now().UTC(),
		hits:     make(map[string]int64),
		ring:     make([]domain.LogEntry, 0, capacity+1),
	}
}

// CountRequest records one accepted, authenticated call.
func (t *Telemetry) CountRequest() {
	t.mu.Lock()
	t.total++
	t.mu.Unlock()
}

// Hit records one routed query of the given kind.
func (t *Telemetry) Hit(kind domain.QueryKind) {
	t.mu.Lock()
	t.hits[string(kind)]++
	t.mu.Unlock()
}

// Record pushes an entry to the front of the ring, evicting the oldest one
// past capacity, and mirrors it to the structured logger.
func (t *Telemetry) Record(ctx context.Context, kind domain.LogKind, message, details string) {
	entry := domain.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: t.now().UTC(),
		Type:      kind,
		Message:   message,
		Details:   details,
	}

	t.mu.Lock()
	t.ring = slices.Insert(t.ring, 0, entry)
	if len(t.ring) > t.capacity {
		t.ring = t.ring[:t.capacity]
	}
	t.mu.Unlock()

	t.logger.Log(ctx, levelFor(kind), message, "type", string(kind), "details", details)
}

// Logs returns a copy of the ring, newest first.
func (t *Telemetry) Logs() []domain.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.ring)
}

func (t *Telemetry) Snapshot() domain.TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.TelemetrySnapshot{
		StartTime:     t.start,
		TotalRequests: t.total,
		EndpointHits:  maps.Clone(t.hits),
		UptimeMillis:  t.now().UTC().Sub(t.start).Milliseconds(),
	}
}

func levelFor(kind domain.LogKind) slog.Level {
	switch kind {
	case domain.LogError:
		return slog.LevelError
	case domain.LogWarn, domain.LogAuth:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
