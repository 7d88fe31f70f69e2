package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rigmatch/internal/request"
)

const recordColumns = `
	id, owner_id, kind,
	equipment_type, description, budget, work_duration,
	available_equipment, experience_years, price_per_hour,
	location, contact_preference, status, created_at, updated_at`

// GetRecord returns one record by ID. Returns ErrNotFound if it
// doesn't exist.
func (s *Store) GetRecord(ctx context.Context, id int64) (request.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+recordColumns+` FROM requests WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return request.Record{}, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return request.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// FindActive returns active records, optionally filtered by kind and
// by a location substring. Results are ordered by ascending ID for a
// deterministic, stable order.
//
// The location filter is an ASCII-case-insensitive substring prefilter
// on the SQL side (SQLite's lower() only folds ASCII); the matching
// engine re-applies full Unicode folding on the returned pool, so this
// only needs to be a superset of the true candidates. Pass the
// demand's location to narrow the supply pool before matching.
func (s *Store) FindActive(ctx context.Context, kind request.Kind, locationSubstring string) ([]request.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+recordColumns+`
		FROM requests
		WHERE status = 'active'
		  AND (? = '' OR kind = ?)
		  AND (? = '' OR instr(lower(location), lower(?)) > 0)
		ORDER BY id ASC
	`, string(kind), string(kind), locationSubstring, locationSubstring)
	if err != nil {
		return nil, fmt.Errorf("find active: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByOwner returns all records posted by an owner, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]request.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+recordColumns+`
		FROM requests
		WHERE owner_id = ?
		ORDER BY id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// GetOwner returns one owner by ID. Returns ErrNotFound if it doesn't
// exist.
func (s *Store) GetOwner(ctx context.Context, id int64) (request.Owner, error) {
	var o request.Owner
	err := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, username, first_name, last_name, phone, created_at
		FROM owners WHERE id = ?
	`, id).Scan(&o.ID, &o.ExternalID, &o.Username, &o.FirstName, &o.LastName, &o.Phone, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return request.Owner{}, fmt.Errorf("get owner %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return request.Owner{}, fmt.Errorf("get owner %d: %w", id, err)
	}
	return o, nil
}

func (s *Store) getOwnerByExternalID(ctx context.Context, externalID int64) (request.Owner, error) {
	var o request.Owner
	err := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, username, first_name, last_name, phone, created_at
		FROM owners WHERE external_id = ?
	`, externalID).Scan(&o.ID, &o.ExternalID, &o.Username, &o.FirstName, &o.LastName, &o.Phone, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return request.Owner{}, ErrNotFound
	}
	if err != nil {
		return request.Owner{}, fmt.Errorf("get owner by external id %d: %w", externalID, err)
	}
	return o, nil
}

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (request.Record, error) {
	var rec request.Record
	var kind, pref, status string

	err := sc.Scan(
		&rec.ID, &rec.OwnerID, &kind,
		&rec.EquipmentType, &rec.Description, &rec.Budget, &rec.WorkDuration,
		&rec.AvailableEquipment, &rec.ExperienceYears, &rec.PricePerHour,
		&rec.Location, &pref, &status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return request.Record{}, err
	}

	rec.Kind = request.Kind(kind)
	rec.ContactPreference = request.ContactPreference(pref)
	rec.Status = request.Status(status)
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]request.Record, error) {
	// Return empty slice instead of nil so callers can range and
	// serialize without nil checks.
	records := []request.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
