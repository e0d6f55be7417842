package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"netpath/domain/core"
	"netpath/models"
	"netpath/ports"
)

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Connect opens and pings a postgres connection.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Schema creates the analyses table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	method TEXT NOT NULL,
	payload JSONB NOT NULL
)`

// EnsureSchema applies the schema.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure analyses schema: %w", err)
	}
	return nil
}

// SaveAnalysis upserts the full analysis record as a JSONB payload. Records
// are immutable, so a replay of the same id simply rewrites identical bytes.
func (r *analysisRepository) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	query := `INSERT INTO analyses (id, created_at, method, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`

	_, err = r.db.ExecContext(ctx, query,
		string(record.ID), record.CreatedAt.Time(), record.Method, payload)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves an analysis record by its ID
func (r *analysisRepository) GetAnalysis(ctx context.Context, id core.AnalysisID) (*models.AnalysisRecord, error) {
	query := `SELECT payload FROM analyses WHERE id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, string(id)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("analysis not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis record: %w", err)
	}
	return &record, nil
}

// ListAnalyses retrieves the most recent analysis records
func (r *analysisRepository) ListAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT payload FROM analyses ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		var record models.AnalysisRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis record: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
