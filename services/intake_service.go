package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/rese02/pradell-booking-sub000/models"
)

// ErrInvalidStep is returned for a step index outside the workflow.
var ErrInvalidStep = errors.New("invalid_step")

// DepositShare is the fraction of the booking price due when the guest picks
// the deposit payment option.
const DepositShare = 0.30

// Outcome is the structured result of one step submission. Every submission
// gets one, including failures; ActionToken lets the client deduplicate side
// effects and lets the server correlate log lines.
type Outcome struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	FieldErrors FieldErrors               `json:"fieldErrors,omitempty"`
	GuestData   models.GuestSubmittedData `json:"guestData"`
	Step        int                       `json:"step"`
	Status      models.BookingStatus      `json:"status"`
	ActionToken string                    `json:"actionToken"`
}

// IntakeService is the step submission coordinator: it turns a sequence of
// partial, possibly retried client submissions into one consistent,
// monotonically advancing guest record.
type IntakeService struct {
	Store     BookingStore
	Artifacts ArtifactStore
}

func NewIntakeService(store BookingStore, artifacts ArtifactStore) *IntakeService {
	return &IntakeService{Store: store, Artifacts: artifacts}
}

// Session loads the booking behind a guest link so the client can resume the
// workflow. Cancelled bookings behave like unknown tokens: the capability is
// revoked.
func (s *IntakeService) Session(ctx context.Context, token string) (*models.Booking, error) {
	booking, err := s.Store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.StatusCancelled {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// paymentAmountFor derives the amount due from the booking price. Client
// submissions never carry an amount.
func paymentAmountFor(priceTotal float64, option string) float64 {
	if option == models.PaymentOptionDeposit {
		return math.Round(priceTotal*DepositShare*100) / 100
	}
	return priceTotal
}

// artifactDir derives the storage directory for a slot from the booking
// token, so a booking's objects can be located from (token, slot) alone.
func artifactDir(bookingToken, slotField string) string {
	return path.Join(bookingToken, slotField)
}

// SubmitStep handles one step submission end to end: load, validate, resolve
// file slots, reconcile companions, merge, persist, clean up.
//
// Failure contract: validation errors return the unmodified previous record.
// Artifact errors are field-scoped; unaffected fields and files of the same
// submission are still applied and persisted, but LastCompletedStep does not
// advance and the outcome is not a success. Only ErrBookingNotFound,
// ErrInvalidStep and persistence faults surface as Go errors; everything
// else is carried inside the Outcome.
func (s *IntakeService) SubmitStep(ctx context.Context, token string, step int, form map[string]string, files map[string]*FileUpload) (out Outcome, err error) {
	out = Outcome{Step: step, ActionToken: uuid.NewString()}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic in SubmitStep (action=%s step=%d): %v", out.ActionToken, step, r)
			out.Success = false
			out.FieldErrors = nil
			out.Message = "unexpected error"
			err = fmt.Errorf("unexpected failure (action=%s): %v", out.ActionToken, r)
		}
	}()

	if step < 0 || step >= TotalSteps {
		return out, ErrInvalidStep
	}

	booking, err := s.Store.GetByToken(ctx, token)
	if err != nil {
		return out, err
	}
	if booking.Status == models.StatusCancelled {
		return out, ErrBookingNotFound
	}

	prev := booking.GuestData
	out.GuestData = prev.Clone()
	out.Status = booking.Status

	// 1. Declarative per-step validation. On failure the previous record is
	// returned untouched — never a half-applied one.
	vals, fieldErrs := ValidateStep(step, form)
	if !fieldErrs.Empty() {
		out.FieldErrors = fieldErrs
		out.Message = "validation failed"
		return out, nil
	}

	// Final step: both consents must be literally affirmative before
	// anything is merged or the step advances.
	if step == StepConsent {
		consentErrs := FieldErrors{}
		if !vals.Consent.AgbAkzeptiert {
			consentErrs.Add("agbAkzeptiert", "the terms and conditions must be accepted")
		}
		if !vals.Consent.DatenschutzAkzeptiert {
			consentErrs.Add("datenschutzAkzeptiert", "the privacy policy must be accepted")
		}
		if !consentErrs.Empty() {
			out.FieldErrors = consentErrs
			out.Message = "consent missing"
			return out, nil
		}
	}

	// 2. Build the merged draft: deep copy, server-derived values, roster
	// reconciliation, then the step's own fields.
	draft := prev.Clone()

	if step == StepPayment {
		amount := paymentAmountFor(booking.PriceTotal, vals.Payment.PaymentOption)
		ApplyServerDerived(&draft, ServerDerived{PaymentAmount: &amount})
	}

	var orphaned []string
	if step == StepCompanions {
		draft.Companions, orphaned = ReconcileCompanions(prev.Companions, vals.Companions)
	}

	ApplyStepValues(&draft, vals)

	// 3. Resolve file slots. Each slot is independent: a failed upload
	// restores the slot's previous locator and records a field error, the
	// remaining slots still go through. Per-slot order is fixed: the bytes
	// are already fully read, delete the old object best-effort, store the
	// new one, then assign the locator.
	artifactErrs := FieldErrors{}
	for _, slot := range StepFileSlots(step, &draft) {
		up := files[slot.Field]
		if up == nil {
			continue // no new file, retain the existing artifact
		}
		if msgs := ValidateArtifactUpload(up); len(msgs) > 0 {
			for _, m := range msgs {
				artifactErrs.Add(slot.Field, m)
			}
			continue
		}

		prior := slot.Get(&draft)
		if prior != "" {
			deleteArtifactQuietly(s.Artifacts, prior)
		}

		locator, putErr := s.Artifacts.Put(up.Data, up.EffectiveContentType(), up.Filename, artifactDir(booking.BookingToken, slot.Field))
		if putErr != nil {
			log.Printf("⚠️ artifact upload failed (action=%s field=%s): %v", out.ActionToken, slot.Field, putErr)
			slot.Set(&draft, prior)
			artifactErrs.Add(slot.Field, "file upload failed, please try again")
			continue
		}
		slot.Set(&draft, locator)
	}

	// 4. Advance and, on the final step, confirm — but only on a clean
	// submission. With field errors the partial merge is still persisted
	// (the user should not re-enter what already worked), the step just
	// does not count as completed.
	confirmed := false
	if artifactErrs.Empty() {
		confirmed = FinalizeStep(&draft, step, time.Now())
	}

	// 5. Persist guest record and status in a single update.
	booking.GuestData = draft
	if confirmed {
		booking.Status = models.StatusConfirmed
	}
	if updateErr := s.Store.Update(ctx, booking); updateErr != nil {
		return out, fmt.Errorf("failed to persist step %d (action=%s): %w", step, out.ActionToken, updateErr)
	}

	// 6. Only after the record is durable, drop artifacts of removed
	// companions. Best-effort: hygiene never blocks the step.
	for _, locator := range orphaned {
		deleteArtifactQuietly(s.Artifacts, locator)
	}

	out.GuestData = draft
	out.Status = booking.Status

	if !artifactErrs.Empty() {
		out.FieldErrors = artifactErrs
		out.Message = "some files could not be stored"
		return out, nil
	}

	out.Success = true
	if confirmed {
		out.Message = "booking confirmed"
	} else {
		out.Message = "step saved"
	}
	return out, nil
}
