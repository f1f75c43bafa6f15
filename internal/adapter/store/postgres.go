package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// PostgresStore persists the request audit trail and the append-only metric
// record log. Page contexts themselves are intentionally in-memory and
// single-use; only records that outlive a context land here.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, verifies it, and ensures the schema.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id          BIGSERIAL PRIMARY KEY,
		client_id   TEXT NOT NULL,
		action      TEXT NOT NULL,
		resource    TEXT NOT NULL,
		details     JSONB,
		ip          TEXT,
		user_agent  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS metric_records (
		id            BIGSERIAL PRIMARY KEY,
		context_id    TEXT NOT NULL,
		outcome       TEXT NOT NULL,
		keyword_ms    DOUBLE PRECISION NOT NULL,
		semantic_ms   DOUBLE PRECISION NOT NULL,
		generation_ms DOUBLE PRECISION NOT NULL,
		total_ms      DOUBLE PRECISION NOT NULL,
		keyword_hits  INT NOT NULL,
		semantic_hits INT NOT NULL,
		total_chunks  INT NOT NULL,
		used_keyword  BOOLEAN NOT NULL,
		used_semantic BOOLEAN NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// WriteAudit inserts one audit log entry.
func (s *PostgresStore) WriteAudit(log *domain.AuditLog) error {
	query := `INSERT INTO audit_logs (client_id, action, resource, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(query, log.ClientID, log.Action, log.Resource, log.Details, log.IP, log.UserAgent)
	if err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}

// SaveMetricRecord inserts one metric record.
func (s *PostgresStore) SaveMetricRecord(ctx context.Context, rec *domain.MetricRecord) error {
	query := `INSERT INTO metric_records
	          (context_id, outcome, keyword_ms, semantic_ms, generation_ms, total_ms,
	           keyword_hits, semantic_hits, total_chunks, used_keyword, used_semantic, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.db.ExecContext(ctx, query,
		rec.ContextID, rec.Outcome,
		rec.Timing.KeywordMs, rec.Timing.SemanticMs, rec.Timing.GenerationMs, rec.Timing.TotalMs,
		rec.Retrieval.KeywordHits, rec.Retrieval.SemanticHits, rec.Retrieval.TotalChunks,
		rec.Retrieval.UsedKeyword, rec.Retrieval.UsedSemantic, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save metric record: %w", err)
	}
	return nil
}
