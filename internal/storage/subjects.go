package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/WEAV04/willy/internal/model"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// UpsertSubject stores or replaces a subject profile and its caregiver
// contact. Called when supervision starts so an alert fired after a restart
// still knows who to contact.
func (d *DB) UpsertSubject(ctx context.Context, s model.Subject) error {
	var name, rel, phone string
	if s.Caregiver != nil {
		name, rel, phone = s.Caregiver.Name, s.Caregiver.Relationship, s.Caregiver.Phone
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO subjects (id, display_name, caregiver_name, caregiver_relationship, caregiver_phone, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = excluded.display_name,
		   caregiver_name = excluded.caregiver_name,
		   caregiver_relationship = excluded.caregiver_relationship,
		   caregiver_phone = excluded.caregiver_phone,
		   updated_at = excluded.updated_at`,
		s.ID, s.DisplayName, name, rel, phone, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert subject %s: %w", s.ID, err)
	}
	return nil
}

// GetSubject returns a stored subject profile, or ErrNotFound.
func (d *DB) GetSubject(ctx context.Context, id string) (model.Subject, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, display_name, caregiver_name, caregiver_relationship, caregiver_phone
		 FROM subjects WHERE id = ?`, id,
	)

	var s model.Subject
	var name, rel, phone string
	if err := row.Scan(&s.ID, &s.DisplayName, &name, &rel, &phone); err != nil {
		if isNoRows(err) {
			return model.Subject{}, ErrNotFound
		}
		return model.Subject{}, fmt.Errorf("storage: get subject %s: %w", id, err)
	}
	if name != "" || phone != "" {
		s.Caregiver = &model.CaregiverContact{Name: name, Relationship: rel, Phone: phone}
	}
	return s, nil
}
