package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

func TestTelemetryRingKeepsNewestFifty(t *testing.T) {
	tel := NewTelemetry(nil)
	ctx := context.Background()

	for i := range 60 {
		tel.Record(ctx, domain.LogInfo, fmt.Sprintf("event-%d", i), "")
	}

	logs := tel.Logs()
	require.Len(t, logs, LogCapacity)
	assert.Equal(t, "event-59", logs[0].Message)
	assert.Equal(t, "event-10", logs[len(logs)-1].Message)
	for i := 1; i < len(logs); i++ {
		assert.NotEqual(t, logs[i-1].ID, logs[i].ID)
	}
}

func TestTelemetryLogsReturnsCopy(t *testing.T) {
	tel := NewTelemetry(nil)
	tel.Record(context.Background(), domain.LogAdmin, "first", "details")

	logs := tel.Logs()
	logs[0].Message = "mutated"

	assert.Equal(t, "first", tel.Logs()[0].Message)
	assert.Equal(t, domain.LogAdmin, tel.Logs()[0].Type)
}

func TestTelemetrySnapshot(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	tel := newTelemetry(nil, func() time.Time { return now }, 5)

	tel.CountRequest()
	tel.CountRequest()
	tel.Hit(domain.QueryCPF)
	tel.Hit(domain.QueryCPF)
	tel.Hit(domain.QueryName)
	now = start.Add(1500 * time.Millisecond)

	snap := tel.Snapshot()
	assert.Equal(t, start, snap.StartTime)
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, map[string]int64{"cpf": 2, "nome": 1}, snap.EndpointHits)
	assert.Equal(t, int64(1500), snap.UptimeMillis)

	snap.EndpointHits["cpf"] = 99
	assert.Equal(t, int64(2), tel.Snapshot().EndpointHits["cpf"])
}
