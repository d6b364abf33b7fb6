package domain

import "time"

type LogKind string

const (
	LogInfo    LogKind = "INFO"
	LogSuccess LogKind = "SUCCESS"
	LogWarn    LogKind = "WARN"
	LogError   LogKind = "ERROR"
	LogAuth    LogKind = "AUTH"
	LogAdmin   LogKind = "ADMIN"
	LogRequest LogKind = "REQUEST"
)

type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      LogKind   `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}

type TelemetrySnapshot struct {
	StartTime     time.Time        `json:"startTime"`
	TotalRequests int64            `json:"totalRequests"`
	EndpointHits  map[string]int64 `json:"endpointHits"`
	UptimeMillis  int64            `json:"uptime"`
}
