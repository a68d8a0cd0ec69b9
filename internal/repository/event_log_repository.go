package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rgillard/planlog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventLogRepository implements the append-only audit store on pgxpool.
type eventLogRepository struct {
	pool *pgxpool.Pool
}

// NewEventLogRepository wires a repository backed by pgxpool.
func NewEventLogRepository(pool *pgxpool.Pool) EventLogRepository {
	return &eventLogRepository{pool: pool}
}

func (r *eventLogRepository) Append(ctx context.Context, log domain.EventLog) error {
	changesJSON, err := json.Marshal(log.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal change records: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO event_logs (id, event_id, logged_at, changes)
		 VALUES ($1, $2, $3, $4)`,
		log.ID,
		log.EventID,
		log.Timestamp,
		changesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append event log: %w", err)
	}

	return nil
}

// ListForEvent returns audit entries newest first. Referential validity of
// the event id is the caller's concern; an unknown id simply yields an empty
// list here.
func (r *eventLogRepository) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventLog, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, event_id, logged_at, changes, created_at
		 FROM event_logs
		 WHERE event_id = $1
		 ORDER BY logged_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list event logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.EventLog{}
	for rows.Next() {
		var (
			entry       domain.EventLog
			changesJSON []byte
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.Timestamp,
			&changesJSON,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event log: %w", scanErr)
		}

		if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode change records: %w", err)
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate event logs: %w", rowsErr)
	}

	return logs, nil
}
