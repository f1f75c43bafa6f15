package port

import (
	"context"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// MetricSink persists metric records durably. The in-memory collector remains
// the source of truth for the running summary; a sink is an optional mirror.
type MetricSink interface {
	SaveMetricRecord(ctx context.Context, rec *domain.MetricRecord) error
}

// AuditWriter persists audit log entries.
type AuditWriter interface {
	WriteAudit(log *domain.AuditLog) error
}
