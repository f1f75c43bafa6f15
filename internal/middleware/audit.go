package middleware

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/gofiber/fiber/v3"
)

// AuditMiddleware records every handled request through the given writer.
func AuditMiddleware(writer port.AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		err := c.Next()

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":      method,
			"path":        path,
			"status":      statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		detailsJSON, _ := json.Marshal(details)

		// Write asynchronously — all values are captured, safe to use in goroutine
		go func() {
			writeErr := writer.WriteAudit(&domain.AuditLog{
				ClientID:  ip,
				Action:    domain.AuditActionHTTPRequest,
				Resource:  path,
				Details:   string(detailsJSON),
				IP:        ip,
				UserAgent: userAgent,
				CreatedAt: start,
			})
			if writeErr != nil {
				slog.Warn("audit write failed", "error", writeErr)
			}
		}()

		return err
	}
}

// SlogAuditWriter is the fallback audit writer used when no database is
// configured: entries go to the structured log only.
type SlogAuditWriter struct{}

// WriteAudit logs the audit entry.
func (SlogAuditWriter) WriteAudit(log *domain.AuditLog) error {
	slog.Info("audit",
		"client_id", log.ClientID,
		"action", log.Action,
		"resource", log.Resource,
		"details", log.Details,
	)
	return nil
}
