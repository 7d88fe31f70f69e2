// Package export mirrors the request table to CSV for operators who
// track postings in a spreadsheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/rigmatch/internal/request"
)

// Header is the CSV column order. Kept stable so re-exports can be
// diffed against earlier snapshots.
var Header = []string{
	"id", "kind", "status", "location",
	"equipment_type", "description", "budget", "work_duration",
	"available_equipment", "experience_years", "price_per_hour",
	"contact_preference", "created_at",
}

// WriteCSV writes records as CSV, header first. Records are written in
// the order given; pass a store-ordered slice for a deterministic file.
func WriteCSV(w io.Writer, records []request.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export csv: write header: %w", err)
	}

	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return fmt.Errorf("export csv: write record %d: %w", records[i].ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: flush: %w", err)
	}
	return nil
}

func row(rec *request.Record) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		string(rec.Kind),
		string(rec.Status),
		rec.Location,
		rec.EquipmentType,
		rec.Description,
		decimal(rec.Budget),
		rec.WorkDuration,
		rec.AvailableEquipment,
		integer(rec.ExperienceYears),
		decimal(rec.PricePerHour),
		string(rec.ContactPreference),
		rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func decimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func integer(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
