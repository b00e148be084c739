package services

import (
	"fmt"
	"time"

	"github.com/rese02/pradell-booking-sub000/models"
)

// ServerDerived holds values the coordinator computes itself. They overlay
// the previous record before the client's form values do and are never
// trusted from client input.
type ServerDerived struct {
	PaymentAmount *float64
}

// ApplyServerDerived overlays server-computed values onto the draft record.
func ApplyServerDerived(draft *models.GuestSubmittedData, sd ServerDerived) {
	if sd.PaymentAmount != nil {
		draft.PaymentAmount = *sd.PaymentAmount
	}
}

// ApplyStepValues overlays one step's validated form values onto the draft.
// The overlay is field-additive: only the submitted step's fields are
// touched, every other step's data survives as-is. Companion values go
// through ReconcileCompanions and are applied by the caller.
func ApplyStepValues(draft *models.GuestSubmittedData, vals StepValues) {
	switch {
	case vals.Contact != nil:
		draft.Salutation = vals.Contact.Salutation
		draft.FirstName = vals.Contact.FirstName
		draft.LastName = vals.Contact.LastName
		draft.Email = vals.Contact.Email
		draft.Phone = vals.Contact.Phone
	case vals.Identity != nil:
		draft.DateOfBirth = vals.Identity.DateOfBirth
		draft.DocumentType = vals.Identity.DocumentType
	case vals.Payment != nil:
		draft.PaymentOption = vals.Payment.PaymentOption
		draft.PaymentDate = vals.Payment.PaymentDate
	case vals.Consent != nil:
		draft.AgbAkzeptiert = vals.Consent.AgbAkzeptiert
		draft.DatenschutzAkzeptiert = vals.Consent.DatenschutzAkzeptiert
	}
}

// ReconcileCompanions merges the client-declared roster with the server-known
// companion list. Declared ids keep their stored artifact locators; names are
// overwritten from the current submission (latest wins, not additive). The
// result keeps the roster's insertion order. Companions the roster no longer
// declares are dropped and their artifact locators returned for deletion.
func ReconcileCompanions(previous []models.Companion, roster []CompanionInput) ([]models.Companion, []string) {
	prevByID := make(map[string]models.Companion, len(previous))
	for _, c := range previous {
		prevByID[c.ID] = c
	}

	next := make([]models.Companion, 0, len(roster))
	declared := make(map[string]bool, len(roster))
	for _, in := range roster {
		declared[in.ID] = true
		c := models.Companion{ID: in.ID}
		if known, ok := prevByID[in.ID]; ok {
			c.DocumentFrontPath = known.DocumentFrontPath
			c.DocumentBackPath = known.DocumentBackPath
		}
		c.FirstName = in.FirstName
		c.LastName = in.LastName
		next = append(next, c)
	}

	var orphaned []string
	for _, c := range previous {
		if declared[c.ID] {
			continue
		}
		if c.DocumentFrontPath != "" {
			orphaned = append(orphaned, c.DocumentFrontPath)
		}
		if c.DocumentBackPath != "" {
			orphaned = append(orphaned, c.DocumentBackPath)
		}
	}

	return next, orphaned
}

// FinalizeStep raises LastCompletedStep (monotonic, never lowered) and, on
// the final step with both consents affirmative, stamps SubmittedAt exactly
// once. It reports whether the booking should transition to Confirmed.
func FinalizeStep(draft *models.GuestSubmittedData, step int, now time.Time) bool {
	if step > draft.LastCompletedStep {
		draft.LastCompletedStep = step
	}
	if step != StepConsent {
		return false
	}
	if !draft.AgbAkzeptiert || !draft.DatenschutzAkzeptiert {
		return false
	}
	if draft.SubmittedAt == nil {
		t := now.UTC()
		draft.SubmittedAt = &t
	}
	return true
}

// FileSlot binds a form file field to its locator slot on the guest record.
// The table is typed per (step, slot), so the mapping from form field to
// merge target is exhaustive instead of stringly keyed.
type FileSlot struct {
	Field string
	Get   func(*models.GuestSubmittedData) string
	Set   func(*models.GuestSubmittedData, string)
}

// StepFileSlots returns the file slots of a step against the given draft.
// Companion slots are built from the draft's (already reconciled) companion
// list, one front/back pair per declared companion id.
func StepFileSlots(step int, draft *models.GuestSubmittedData) []FileSlot {
	switch step {
	case StepIdentity:
		return []FileSlot{
			{
				Field: "documentFront",
				Get:   func(g *models.GuestSubmittedData) string { return g.DocumentFrontPath },
				Set:   func(g *models.GuestSubmittedData, loc string) { g.DocumentFrontPath = loc },
			},
			{
				Field: "documentBack",
				Get:   func(g *models.GuestSubmittedData) string { return g.DocumentBackPath },
				Set:   func(g *models.GuestSubmittedData, loc string) { g.DocumentBackPath = loc },
			},
		}
	case StepPayment:
		return []FileSlot{
			{
				Field: "paymentProof",
				Get:   func(g *models.GuestSubmittedData) string { return g.PaymentProofPath },
				Set:   func(g *models.GuestSubmittedData, loc string) { g.PaymentProofPath = loc },
			},
		}
	case StepCompanions:
		slots := make([]FileSlot, 0, len(draft.Companions)*2)
		for i := range draft.Companions {
			idx := i
			id := draft.Companions[i].ID
			slots = append(slots,
				FileSlot{
					Field: fmt.Sprintf("documentFront_%s", id),
					Get:   func(g *models.GuestSubmittedData) string { return g.Companions[idx].DocumentFrontPath },
					Set:   func(g *models.GuestSubmittedData, loc string) { g.Companions[idx].DocumentFrontPath = loc },
				},
				FileSlot{
					Field: fmt.Sprintf("documentBack_%s", id),
					Get:   func(g *models.GuestSubmittedData) string { return g.Companions[idx].DocumentBackPath },
					Set:   func(g *models.GuestSubmittedData, loc string) { g.Companions[idx].DocumentBackPath = loc },
				},
			)
		}
		return slots
	}
	return nil
}
