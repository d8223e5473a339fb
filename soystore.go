package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// SessionSnapshot is one persisted checkpoint of a session. Snapshots are
// append-only; Resume picks the newest row per session.
type SessionSnapshot struct {
	ID        string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	SessionID string    `db:"session_id" type:"text" constraints:"notnull"`
	Snapshot  string    `db:"snapshot" type:"jsonb" constraints:"notnull"`
	CreatedAt time.Time `db:"created_at" type:"timestamp" constraints:"notnull"`
}

// SoyStore implements Store using soy for Postgres persistence.
type SoyStore struct {
	snapshots *soy.Soy[SessionSnapshot]
	db        *sqlx.DB
}

// NewSoyStore creates a soy-backed session store.
func NewSoyStore(db *sqlx.DB) (*SoyStore, error) {
	snapshots, err := soy.New[SessionSnapshot](db, "session_snapshots", postgres.New())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session_snapshots table: %w", err)
	}
	return &SoyStore{snapshots: snapshots, db: db}, nil
}

// Checkpoint implements Store by appending a new snapshot row.
func (s *SoyStore) Checkpoint(ctx context.Context, sessionID string, state *SharedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	row := &SessionSnapshot{
		SessionID: sessionID,
		Snapshot:  string(payload),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.snapshots.Insert().Exec(ctx, row); err != nil {
		return fmt.Errorf("failed to checkpoint session %s: %w", sessionID, err)
	}
	return nil
}

// Resume implements Store by loading the newest snapshot for the
// session, or a fresh state when none exists.
func (s *SoyStore) Resume(ctx context.Context, sessionID string) (*SharedState, error) {
	rows, err := s.snapshots.Query().
		Where("session_id", "=", "session_id").
		OrderBy("created_at", "desc").
		Limit(1).
		Exec(ctx, map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to resume session %s: %w", sessionID, err)
	}
	if len(rows) == 0 {
		return NewSharedState(), nil
	}

	var state SharedState
	if err := json.Unmarshal([]byte(rows[0].Snapshot), &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Close closes the underlying database connection.
func (s *SoyStore) Close() error {
	return s.db.Close()
}
