package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rese02/pradell-booking-sub000/models"
)

func TestApplyStepValuesIsFieldAdditive(t *testing.T) {
	record := models.NewGuestSubmittedData()
	record.Email = "max@example.com"
	record.FirstName = "Max"
	record.DocumentType = models.DocumentTypePassport
	record.DocumentFrontPath = "tok/documentFront/a.jpg"

	// Applying the payment step must not touch contact or identity fields.
	ApplyStepValues(&record, StepValues{
		Step:    StepPayment,
		Payment: &PaymentFields{PaymentOption: models.PaymentOptionFull, PaymentDate: "2026-09-01"},
	})

	assert.Equal(t, "max@example.com", record.Email)
	assert.Equal(t, "Max", record.FirstName)
	assert.Equal(t, models.DocumentTypePassport, record.DocumentType)
	assert.Equal(t, "tok/documentFront/a.jpg", record.DocumentFrontPath)
	assert.Equal(t, models.PaymentOptionFull, record.PaymentOption)
	assert.Equal(t, "2026-09-01", record.PaymentDate)
}

func TestApplyServerDerived(t *testing.T) {
	record := models.NewGuestSubmittedData()
	amount := 123.45
	ApplyServerDerived(&record, ServerDerived{PaymentAmount: &amount})
	assert.Equal(t, 123.45, record.PaymentAmount)

	// No derived value: nothing changes.
	ApplyServerDerived(&record, ServerDerived{})
	assert.Equal(t, 123.45, record.PaymentAmount)
}

func TestFinalizeStepMonotonic(t *testing.T) {
	record := models.NewGuestSubmittedData()
	now := time.Now()

	FinalizeStep(&record, StepContact, now)
	assert.Equal(t, StepContact, record.LastCompletedStep)

	FinalizeStep(&record, StepPayment, now)
	assert.Equal(t, StepPayment, record.LastCompletedStep)

	// Going back to an earlier step never lowers the high-water mark.
	FinalizeStep(&record, StepContact, now)
	assert.Equal(t, StepPayment, record.LastCompletedStep)
}

func TestFinalizeStepConsentStampsOnce(t *testing.T) {
	record := models.NewGuestSubmittedData()
	record.AgbAkzeptiert = true
	record.DatenschutzAkzeptiert = true

	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	confirmed := FinalizeStep(&record, StepConsent, first)
	require.True(t, confirmed)
	require.NotNil(t, record.SubmittedAt)
	assert.Equal(t, first, *record.SubmittedAt)

	// A later resubmission must not move the timestamp.
	later := first.Add(2 * time.Hour)
	confirmed = FinalizeStep(&record, StepConsent, later)
	require.True(t, confirmed)
	assert.Equal(t, first, *record.SubmittedAt)
}

func TestFinalizeStepConsentNotAffirmative(t *testing.T) {
	record := models.NewGuestSubmittedData()
	record.AgbAkzeptiert = true
	record.DatenschutzAkzeptiert = false

	confirmed := FinalizeStep(&record, StepConsent, time.Now())
	assert.False(t, confirmed)
	assert.Nil(t, record.SubmittedAt)
	assert.Equal(t, StepConsent, record.LastCompletedStep)
}

func TestReconcileCompanionsPreservesArtifactsByID(t *testing.T) {
	previous := []models.Companion{
		{ID: "c1", FirstName: "Anna", LastName: "Alt", DocumentFrontPath: "tok/f1.jpg", DocumentBackPath: "tok/b1.jpg"},
		{ID: "c2", FirstName: "Ben", LastName: "Berg"},
	}
	roster := []CompanionInput{
		{ID: "c2", FirstName: "Ben", LastName: "Bergmann"},
		{ID: "c1", FirstName: "Anna", LastName: "Neu"},
	}

	next, orphaned := ReconcileCompanions(previous, roster)
	require.Len(t, next, 2)
	assert.Empty(t, orphaned)

	// Order follows the declared roster, not the server's prior order.
	assert.Equal(t, "c2", next[0].ID)
	assert.Equal(t, "c1", next[1].ID)

	// Names are overwritten, artifacts preserved by id.
	assert.Equal(t, "Bergmann", next[0].LastName)
	assert.Equal(t, "Neu", next[1].LastName)
	assert.Equal(t, "tok/f1.jpg", next[1].DocumentFrontPath)
	assert.Equal(t, "tok/b1.jpg", next[1].DocumentBackPath)
}

func TestReconcileCompanionsDropsRemoved(t *testing.T) {
	previous := []models.Companion{
		{ID: "c1", FirstName: "Anna", DocumentFrontPath: "tok/f1.jpg", DocumentBackPath: "tok/b1.jpg"},
		{ID: "c2", FirstName: "Ben", DocumentFrontPath: "tok/f2.jpg"},
	}
	roster := []CompanionInput{{ID: "c2", FirstName: "Ben", LastName: "Berg"}}

	next, orphaned := ReconcileCompanions(previous, roster)
	require.Len(t, next, 1)
	assert.Equal(t, "c2", next[0].ID)
	assert.ElementsMatch(t, []string{"tok/f1.jpg", "tok/b1.jpg"}, orphaned)
}

func TestReconcileCompanionsAddsNew(t *testing.T) {
	roster := []CompanionInput{{ID: "c9", FirstName: "Nina", LastName: "Neu"}}
	next, orphaned := ReconcileCompanions(nil, roster)
	require.Len(t, next, 1)
	assert.Empty(t, orphaned)
	assert.Equal(t, "c9", next[0].ID)
	assert.Empty(t, next[0].DocumentFrontPath)
}

func TestStepFileSlotsCompanions(t *testing.T) {
	record := models.NewGuestSubmittedData()
	record.Companions = []models.Companion{{ID: "c1"}, {ID: "c2"}}

	slots := StepFileSlots(StepCompanions, &record)
	require.Len(t, slots, 4)
	assert.Equal(t, "documentFront_c1", slots[0].Field)
	assert.Equal(t, "documentBack_c2", slots[3].Field)

	slots[0].Set(&record, "tok/x.jpg")
	assert.Equal(t, "tok/x.jpg", record.Companions[0].DocumentFrontPath)
	assert.Equal(t, "tok/x.jpg", slots[0].Get(&record))
}

func TestStepFileSlotsPerStep(t *testing.T) {
	record := models.NewGuestSubmittedData()

	assert.Len(t, StepFileSlots(StepIdentity, &record), 2)
	assert.Len(t, StepFileSlots(StepPayment, &record), 1)
	assert.Empty(t, StepFileSlots(StepContact, &record))
	assert.Empty(t, StepFileSlots(StepConsent, &record))
}

func TestGuestDataCloneIsDeep(t *testing.T) {
	record := models.NewGuestSubmittedData()
	record.Companions = []models.Companion{{ID: "c1", FirstName: "Anna"}}
	now := time.Now()
	record.SubmittedAt = &now

	clone := record.Clone()
	clone.Companions[0].FirstName = "Changed"
	*clone.SubmittedAt = now.Add(time.Hour)

	assert.Equal(t, "Anna", record.Companions[0].FirstName)
	assert.Equal(t, now, *record.SubmittedAt)
}
