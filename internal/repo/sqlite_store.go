package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

const envelopeSchema = `
CREATE TABLE IF NOT EXISTS envelopes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	envelope_id TEXT NOT NULL,
	agent       TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	payload     TEXT NOT NULL,
	signature   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_envelopes_created ON envelopes(created_at);
`

// SQLiteStore keeps envelopes in a local sqlite database. Suitable for
// single-node deployments where no envelope service is available.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "sentinel-envelopes.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(envelopeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, env models.Envelope) error {
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return fmt.Errorf("marshal envelope payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO envelopes (envelope_id, agent, created_at, payload, signature) VALUES (?, ?, ?, ?, ?)`,
		env.EnvelopeID, env.Agent, env.CreatedAt, string(payload), env.Signature,
	)
	if err != nil {
		return fmt.Errorf("insert envelope: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]models.Envelope, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT envelope_id, agent, created_at, payload, signature FROM envelopes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query envelopes: %w", err)
	}
	defer rows.Close()

	var envs []models.Envelope
	for rows.Next() {
		var env models.Envelope
		var payload string
		if err := rows.Scan(&env.EnvelopeID, &env.Agent, &env.CreatedAt, &payload, &env.Signature); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &env.Payload); err != nil {
			return nil, fmt.Errorf("decode envelope payload: %w", err)
		}
		envs = append(envs, env)
	}
	return envs, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
