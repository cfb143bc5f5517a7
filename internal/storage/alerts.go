package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WEAV04/willy/internal/model"
)

// InsertAlert records a fired caregiver alert. The row is the durable
// counterpart of the in-flight AlertEvent handed to the notifier.
func (d *DB) InsertAlert(ctx context.Context, ev model.AlertEvent) error {
	var name, phone string
	if ev.Caregiver != nil {
		name, phone = ev.Caregiver.Name, ev.Caregiver.Phone
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO alerts (id, subject_id, caregiver_name, caregiver_phone, last_message, fired_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), ev.SubjectID, name, phone, ev.LastMessage,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage: insert alert: %w", err)
	}
	return nil
}

// ListAlerts returns a subject's fired alerts, most recent first.
func (d *DB) ListAlerts(ctx context.Context, subjectID string, limit int) ([]model.AlertEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT subject_id, caregiver_name, caregiver_phone, last_message, fired_at
		 FROM alerts WHERE subject_id = ? ORDER BY fired_at DESC LIMIT ?`,
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.AlertEvent
	for rows.Next() {
		var ev model.AlertEvent
		var name, phone, fired string
		if err := rows.Scan(&ev.SubjectID, &name, &phone, &ev.LastMessage, &fired); err != nil {
			return nil, fmt.Errorf("storage: scan alert: %w", err)
		}
		if name != "" || phone != "" {
			ev.Caregiver = &model.CaregiverContact{Name: name, Phone: phone}
		}
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, fired); err != nil {
			return nil, fmt.Errorf("storage: parse fired_at %q: %w", fired, err)
		}
		alerts = append(alerts, ev)
	}
	return alerts, rows.Err()
}
