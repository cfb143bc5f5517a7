package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WEAV04/willy/internal/model"
)

// InsertCriticalEvent appends one consented critical event. The log is
// append-only: there is no update or delete path for this table.
func (d *DB) InsertCriticalEvent(ctx context.Context, e model.CriticalEvent) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO critical_events (id, subject_id, event_type, detail, mode_at_time, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.SubjectID, string(e.EventType), e.Detail, string(e.ModeAtTime),
		e.Timestamp.UTC().Format(time.RFC3339Nano), e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage: insert critical event: %w", err)
	}
	return nil
}

// ListCriticalEvents returns a subject's critical events, most recent
// first, capped at limit.
func (d *DB) ListCriticalEvents(ctx context.Context, subjectID string, limit int) ([]model.CriticalEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, subject_id, event_type, detail, mode_at_time, occurred_at, created_at
		 FROM critical_events
		 WHERE subject_id = ?
		 ORDER BY occurred_at DESC, created_at DESC
		 LIMIT ?`,
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list critical events: %w", err)
	}
	defer rows.Close()

	var events []model.CriticalEvent
	for rows.Next() {
		e, err := scanCriticalEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetCriticalEvent returns one event by ID, or ErrNotFound.
func (d *DB) GetCriticalEvent(ctx context.Context, id uuid.UUID) (model.CriticalEvent, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, subject_id, event_type, detail, mode_at_time, occurred_at, created_at
		 FROM critical_events WHERE id = ?`,
		id.String(),
	)
	e, err := scanCriticalEvent(row)
	if err != nil {
		if isNoRows(err) {
			return model.CriticalEvent{}, ErrNotFound
		}
		return model.CriticalEvent{}, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCriticalEvent(row rowScanner) (model.CriticalEvent, error) {
	var e model.CriticalEvent
	var id, eventType, md, occurred, created string
	if err := row.Scan(&id, &e.SubjectID, &eventType, &e.Detail, &md, &occurred, &created); err != nil {
		return model.CriticalEvent{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.CriticalEvent{}, fmt.Errorf("storage: parse event id %q: %w", id, err)
	}
	e.ID = parsed
	e.EventType = model.CriticalEventType(eventType)
	e.ModeAtTime = model.Mode(md)
	if e.Timestamp, err = time.Parse(time.RFC3339Nano, occurred); err != nil {
		return model.CriticalEvent{}, fmt.Errorf("storage: parse occurred_at %q: %w", occurred, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return model.CriticalEvent{}, fmt.Errorf("storage: parse created_at %q: %w", created, err)
	}
	return e, nil
}
