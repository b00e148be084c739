package models

import "time"

// Document types accepted on the identity step.
const (
	DocumentTypePassport = "passport"
	DocumentTypeIDCard   = "idcard"
)

// Payment options on the payment step. The actual amount is always derived
// server-side from the booking price, never taken from the client.
const (
	PaymentOptionDeposit = "deposit"
	PaymentOptionFull    = "full"
)

// GuestSubmittedData is the record the guest fills in over the multi-step
// intake form. It is stored as one JSON document on the booking row and only
// ever mutated through the step submission coordinator: each step overlays
// its own fields, everything else survives untouched.
type GuestSubmittedData struct {
	// LastCompletedStep is -1 until the first step commits and is
	// monotonically non-decreasing afterwards.
	LastCompletedStep int `json:"lastCompletedStep"`

	// Step 0: contact
	Salutation string `json:"salutation,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`

	// Step 1: identity
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	DocumentType      string `json:"documentType,omitempty"`
	DocumentFrontPath string `json:"documentFrontPath,omitempty"`
	DocumentBackPath  string `json:"documentBackPath,omitempty"`

	// Step 2: companions
	Companions []Companion `json:"companions,omitempty"`

	// Step 3: payment (bank transfer proof, manually verified)
	PaymentOption    string  `json:"paymentOption,omitempty"`
	PaymentAmount    float64 `json:"paymentAmount,omitempty"`
	PaymentDate      string  `json:"paymentDate,omitempty"`
	PaymentProofPath string  `json:"paymentProofPath,omitempty"`

	// Step 4: consent. SubmittedAt is set exactly once, when both consents
	// arrive true on the final step, and is never cleared afterwards.
	AgbAkzeptiert         bool       `json:"agbAkzeptiert,omitempty"`
	DatenschutzAkzeptiert bool       `json:"datenschutzAkzeptiert,omitempty"`
	SubmittedAt           *time.Time `json:"submittedAt,omitempty"`
}

// Companion is one additional traveler. ID is chosen by the client when the
// guest adds the row and stays stable across resubmissions of the companion
// step so uploaded documents can be correlated with the same person.
type Companion struct {
	ID                string `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	DocumentFrontPath string `json:"documentFrontPath,omitempty"`
	DocumentBackPath  string `json:"documentBackPath,omitempty"`
}

// NewGuestSubmittedData returns the empty record a booking starts with.
func NewGuestSubmittedData() GuestSubmittedData {
	return GuestSubmittedData{LastCompletedStep: -1}
}

// Clone returns a deep copy; Companions is the only reference field.
func (g GuestSubmittedData) Clone() GuestSubmittedData {
	out := g
	if g.Companions != nil {
		out.Companions = make([]Companion, len(g.Companions))
		copy(out.Companions, g.Companions)
	}
	if g.SubmittedAt != nil {
		t := *g.SubmittedAt
		out.SubmittedAt = &t
	}
	return out
}

// ArtifactLocators returns every artifact locator the record currently owns,
// in slot order. Used for cascading deletion when a booking is removed.
func (g GuestSubmittedData) ArtifactLocators() []string {
	var out []string
	add := func(loc string) {
		if loc != "" {
			out = append(out, loc)
		}
	}
	add(g.DocumentFrontPath)
	add(g.DocumentBackPath)
	add(g.PaymentProofPath)
	for _, c := range g.Companions {
		add(c.DocumentFrontPath)
		add(c.DocumentBackPath)
	}
	return out
}

// CompanionByID returns the companion with the given id, if present.
func (g GuestSubmittedData) CompanionByID(id string) (Companion, bool) {
	for _, c := range g.Companions {
		if c.ID == id {
			return c, true
		}
	}
	return Companion{}, false
}
