package request

import "time"

// Kind distinguishes the two record types the broker carries.
type Kind string

const (
	// KindDemand is a party looking for equipment.
	KindDemand Kind = "demand"

	// KindSupply is a party offering equipment.
	KindSupply Kind = "supply"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDemand || k == KindSupply
}

// Status is the lifecycle state of a record.
//
// A record starts Active. All transitions are driven by the external
// dispatcher, never by the intake or matching engines.
type Status string

const (
	StatusActive    Status = "active"
	StatusMatched   Status = "matched"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMatched, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ContactPreference is how the posting party wants to be reached.
type ContactPreference string

const (
	ContactMessage ContactPreference = "message"
	ContactCall    ContactPreference = "call"
)

// Record is one demand or supply posting.
//
// Which field group is populated depends on Kind; the other group stays
// at its zero value. Budget, ExperienceYears, and PricePerHour use
// pointers because "not provided" is distinct from zero for matching.
type Record struct {
	ID      int64
	OwnerID int64
	Kind    Kind

	// Demand fields
	EquipmentType string
	Description   string
	Budget        *float64
	WorkDuration  string

	// Supply fields
	AvailableEquipment string
	ExperienceYears    *int64
	PricePerHour       *float64

	// Shared fields
	Location          string
	ContactPreference ContactPreference

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner is the posting party's profile.
//
// Phone lives here, not on the record: contact details are a property
// of the profile, collected by the transport layer.
type Owner struct {
	ID         int64
	ExternalID int64
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	CreatedAt  time.Time
}

// OwnerProfile carries the transport-provided identity used to create
// or look up an Owner.
type OwnerProfile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}
