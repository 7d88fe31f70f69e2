package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/rigmatch/internal/request"
)

// CreateRecord inserts a finalized record and returns its assigned ID.
//
// The insert is atomic: either the full record row exists afterwards
// or nothing does. The store never accepts partial records - callers
// assemble the record from a completed flow's field set first.
func (s *Store) CreateRecord(ctx context.Context, rec *request.Record) (int64, error) {
	if !rec.Kind.Valid() {
		return 0, fmt.Errorf("create record: unknown kind %q", rec.Kind)
	}

	now := time.Now().UTC()
	status := rec.Status
	if status == "" {
		status = request.StatusActive
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO requests
		(owner_id, kind,
		 equipment_type, description, budget, work_duration,
		 available_equipment, experience_years, price_per_hour,
		 location, contact_preference, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.OwnerID,
		string(rec.Kind),
		rec.EquipmentType,
		rec.Description,
		rec.Budget,
		rec.WorkDuration,
		rec.AvailableEquipment,
		rec.ExperienceYears,
		rec.PricePerHour,
		rec.Location,
		string(rec.ContactPreference),
		string(status),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create record: last insert id: %w", err)
	}

	rec.ID = id
	rec.Status = status
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return id, nil
}

// GetOrCreateOwner looks up an owner by external (transport) ID,
// creating the profile on first contact.
//
// An existing owner's profile is not overwritten; the stored row wins.
// Use SetOwnerPhone to update contact details explicitly.
func (s *Store) GetOrCreateOwner(ctx context.Context, externalID int64, profile request.OwnerProfile) (request.Owner, error) {
	owner, err := s.getOwnerByExternalID(ctx, externalID)
	if err == nil {
		return owner, nil
	}
	if err != ErrNotFound {
		return request.Owner{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (external_id, username, first_name, last_name, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING
	`,
		externalID,
		profile.Username,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		now,
	)
	if err != nil {
		return request.Owner{}, fmt.Errorf("create owner: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Lost a race with a concurrent insert; the row exists now.
		return s.getOwnerByExternalID(ctx, externalID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return request.Owner{}, fmt.Errorf("create owner: last insert id: %w", err)
	}

	return request.Owner{
		ID:         id,
		ExternalID: externalID,
		Username:   profile.Username,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Phone:      profile.Phone,
		CreatedAt:  now,
	}, nil
}

// SetOwnerPhone updates an owner's phone number.
func (s *Store) SetOwnerPhone(ctx context.Context, ownerID int64, phone string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE owners SET phone = ? WHERE id = ?`, phone, ownerID)
	if err != nil {
		return fmt.Errorf("set owner phone: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set owner phone %d: %w", ownerID, ErrNotFound)
	}
	return nil
}

// UpdateStatus transitions a record's lifecycle status.
//
// This is the external dispatcher's surface. The intake and matching
// engines never call it.
func (s *Store) UpdateStatus(ctx context.Context, recordID int64, status request.Status) error {
	if !status.Valid() {
		return fmt.Errorf("update status: unknown status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), recordID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update status %d: %w", recordID, ErrNotFound)
	}
	return nil
}

// RecordMatch persists a dispatcher's match decision. Returns the
// match row ID and whether a new row was inserted.
//
// Uses ON CONFLICT(demand_id, supply_id) DO NOTHING for idempotency:
// recording the same pair twice returns the existing row's ID with
// inserted=false.
func (s *Store) RecordMatch(ctx context.Context, demandID, supplyID int64, score float64, notes string) (id int64, inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("record match: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO matches (demand_id, supply_id, score, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(demand_id, supply_id) DO NOTHING
	`, demandID, supplyID, score, notes, time.Now().UTC())
	if err != nil {
		return 0, false, fmt.Errorf("record match: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("record match: rows affected: %w", err)
	}

	if n == 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM matches WHERE demand_id = ? AND supply_id = ?`,
			demandID, supplyID,
		).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("record match: select existing: %w", err)
		}
	} else {
		if id, err = res.LastInsertId(); err != nil {
			return 0, false, fmt.Errorf("record match: last insert id: %w", err)
		}
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("record match: commit: %w", err)
	}
	return id, inserted, nil
}
