package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	id "eventhub/pkg/domain"
)

// InMemoryStore is an append-only slice behind a mutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	seq     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry.ID = s.seq
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityType string, entityID int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Entry
	for _, entry := range s.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// PostgresStore persists entries in the audit_log table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	var actorID any
	if entry.ActorID.Valid() {
		actorID = int64(entry.ActorID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, actor_id, entity_type, entity_id, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(entry.Action), actorID, entry.EntityType, entry.EntityID,
		entry.RequestID, entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, actor_id, entity_type, entity_id, request_id, occurred_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at, id`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			action  string
			actorID sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &action, &actorID, &entry.EntityType,
			&entry.EntityID, &entry.RequestID, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		if actorID.Valid {
			entry.ActorID = id.UserID(actorID.Int64)
		}
		entry.OccurredAt = entry.OccurredAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
