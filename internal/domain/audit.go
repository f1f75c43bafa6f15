package domain

import "time"

// AuditLog records one handled HTTP request for operational review.
type AuditLog struct {
	ID        string    `json:"id"         db:"id"`
	ClientID  string    `json:"client_id"  db:"client_id"`
	Action    string    `json:"action"     db:"action"`
	Resource  string    `json:"resource"   db:"resource"`
	Details   string    `json:"details"    db:"details"` // JSON blob
	IP        string    `json:"ip"         db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Audit action constants.
const (
	AuditActionHTTPRequest = "http_request"
	AuditActionIngest      = "ingest_page"
	AuditActionAsk         = "ask"
)
