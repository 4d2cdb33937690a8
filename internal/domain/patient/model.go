package patient

import (
	"strings"
	"time"
)

// Patient is a case record on the dashboard. Records live in one of two
// stored collections, active or archived, and move between them as a
// whole; the id is generated once at intake and stable for the life of
// the record.
type Patient struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Preferred  *string `json:"preferred_name,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`

	// Emergency / care contacts
	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Relationship *string `json:"relationship,omitempty"`

	// Medical
	Diagnosis          *string `json:"diagnosis,omitempty"`
	Prognosis          *string `json:"prognosis,omitempty"`
	AttendingPhysician *string `json:"attending_physician,omitempty"`
	HospiceAgency      *string `json:"hospice_agency,omitempty"`
	Insurance          *string `json:"insurance,omitempty"`
	Pharmacy           *string `json:"pharmacy,omitempty"`
	ReferralSource     *string `json:"referral_source,omitempty"`
	Notes              *string `json:"notes,omitempty"`

	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	ArchiveReason *string    `json:"archive_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last" with whatever parts are present.
func (p *Patient) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// NameMatches reports whether the patient's name contains the query,
// case-insensitively. Used by checklist bulk operations that look
// patients up by display name.
func (p *Patient) NameMatches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.FullName()), q)
}
