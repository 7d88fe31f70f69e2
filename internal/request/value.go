package request

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface over the types an intake step can
// collect. Only TextValue, IntValue, DecimalValue, and ChoiceValue
// implement it.
type Value interface {
	value() // Sealed - only these types implement it
	String() string
}

// TextValue is a free-text answer.
type TextValue string

func (TextValue) value() {}

func (v TextValue) String() string { return string(v) }

// IntValue is an integer answer. Always int64.
type IntValue int64

func (IntValue) value() {}

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

// DecimalValue is a numeric answer (currency amounts, hourly prices).
type DecimalValue float64

func (DecimalValue) value() {}

func (v DecimalValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// ChoiceValue is the enumerated value a choice token resolved to.
type ChoiceValue string

func (ChoiceValue) value() {}

func (v ChoiceValue) String() string { return string(v) }

// Fields maps field name → collected value for one completed intake.
type Fields map[string]Value

// Text returns the named field as a string. Works for text and choice
// values; returns false for numeric values or missing fields.
func (f Fields) Text(name string) (string, bool) {
	switch v := f[name].(type) {
	case TextValue:
		return string(v), true
	case ChoiceValue:
		return string(v), true
	default:
		return "", false
	}
}

// Int returns the named field as an int64.
func (f Fields) Int(name string) (int64, bool) {
	v, ok := f[name].(IntValue)
	return int64(v), ok
}

// Decimal returns the named field as a float64.
func (f Fields) Decimal(name string) (float64, bool) {
	v, ok := f[name].(DecimalValue)
	return float64(v), ok
}

// Field name constants shared by the flow definitions, the store, and
// the record assembly below. These are the canonical schema; the step
// graphs reference them and FromFields checks against them.
const (
	FieldEquipmentType      = "equipment_type"
	FieldLocation           = "location"
	FieldDescription        = "description"
	FieldBudget             = "budget"
	FieldWorkDuration       = "work_duration"
	FieldAvailableEquipment = "available_equipment"
	FieldExperienceYears    = "experience_years"
	FieldPricePerHour       = "price_per_hour"
	FieldContactPreference  = "contact_preference"
)

// FromFields assembles a Record of the given kind from a completed
// field set. The record carries no ID, owner, or timestamps - the
// store assigns those on creation. Status starts Active.
//
// Returns an error if a required field is missing or has the wrong
// value type; a completed flow for the canonical graphs never
// triggers this.
func FromFields(kind Kind, fields Fields) (*Record, error) {
	rec := &Record{Kind: kind, Status: StatusActive}

	loc, ok := fields.Text(FieldLocation)
	if !ok {
		return nil, fmt.Errorf("assemble %s record: missing field %q", kind, FieldLocation)
	}
	rec.Location = loc

	pref, ok := fields.Text(FieldContactPreference)
	if !ok {
		return nil, fmt.Errorf("assemble %s record: missing field %q", kind, FieldContactPreference)
	}
	rec.ContactPreference = ContactPreference(pref)

	switch kind {
	case KindDemand:
		if rec.EquipmentType, ok = fields.Text(FieldEquipmentType); !ok {
			return nil, fmt.Errorf("assemble demand record: missing field %q", FieldEquipmentType)
		}
		if rec.Description, ok = fields.Text(FieldDescription); !ok {
			return nil, fmt.Errorf("assemble demand record: missing field %q", FieldDescription)
		}
		budget, ok := fields.Decimal(FieldBudget)
		if !ok {
			return nil, fmt.Errorf("assemble demand record: missing field %q", FieldBudget)
		}
		rec.Budget = &budget
		if rec.WorkDuration, ok = fields.Text(FieldWorkDuration); !ok {
			return nil, fmt.Errorf("assemble demand record: missing field %q", FieldWorkDuration)
		}

	case KindSupply:
		if rec.AvailableEquipment, ok = fields.Text(FieldAvailableEquipment); !ok {
			return nil, fmt.Errorf("assemble supply record: missing field %q", FieldAvailableEquipment)
		}
		years, ok := fields.Int(FieldExperienceYears)
		if !ok {
			return nil, fmt.Errorf("assemble supply record: missing field %q", FieldExperienceYears)
		}
		rec.ExperienceYears = &years
		price, ok := fields.Decimal(FieldPricePerHour)
		if !ok {
			return nil, fmt.Errorf("assemble supply record: missing field %q", FieldPricePerHour)
		}
		rec.PricePerHour = &price

	default:
		return nil, fmt.Errorf("assemble record: unknown kind %q", kind)
	}

	return rec, nil
}
