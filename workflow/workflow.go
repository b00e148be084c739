// Package workflow implements the client-resident step state machine of the
// guest intake flow. It is deliberately dependency-free and pure: a client
// embeds a Session, feeds it submission outcomes and renders whatever
// DisplayStep says. All server truth lives in the guest record the server
// returns; the session only decides what to show and deduplicates side
// effects.
package workflow

import (
	"errors"

	"github.com/rese02/pradell-booking-sub000/models"
)

// ErrStepAhead is returned when Back targets a step past the allowed range.
var ErrStepAhead = errors.New("cannot navigate ahead of the next open step")

// Outcome is the slice of a submission result the state machine cares about.
type Outcome struct {
	Success     bool
	Step        int
	ActionToken string
	GuestData   models.GuestSubmittedData
	Status      models.BookingStatus
}

// DisplayStep derives the step to render from the persisted progress:
// the step after the last completed one, capped at totalSteps. A value equal
// to totalSteps means the workflow has no more forms to show.
func DisplayStep(lastCompletedStep, totalSteps int) int {
	d := lastCompletedStep + 1
	if d > totalSteps {
		d = totalSteps
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Session is the client-side view of one booking's workflow.
type Session struct {
	TotalSteps int
	Record     models.GuestSubmittedData
	Status     models.BookingStatus

	display int
	// lastAppliedToken makes deduplication an explicit, testable piece of
	// state: an outcome is applied at most once per action token.
	lastAppliedToken string
}

// NewSession starts a session from the server's persisted state.
func NewSession(totalSteps int, record models.GuestSubmittedData, status models.BookingStatus) *Session {
	return &Session{
		TotalSteps: totalSteps,
		Record:     record,
		Status:     status,
		display:    DisplayStep(record.LastCompletedStep, totalSteps),
	}
}

// Display returns the step index currently rendered.
func (s *Session) Display() int { return s.display }

// Apply folds a submission outcome into the session. It returns false when
// the outcome's action token was already applied (re-render, stale response)
// so no side effect runs twice. Failed outcomes still refresh the local
// record — the server returns the last persisted state — but never advance.
func (s *Session) Apply(o Outcome) bool {
	if o.ActionToken == "" || o.ActionToken == s.lastAppliedToken {
		return false
	}
	s.lastAppliedToken = o.ActionToken

	s.Record = o.GuestData
	if o.Status != "" {
		s.Status = o.Status
	}

	if o.Success && o.Step == s.display {
		s.display = DisplayStep(s.Record.LastCompletedStep, s.TotalSteps)
	}
	return true
}

// Back re-renders an earlier step. Persisted progress is untouched; the next
// submission from that step overwrites only that step's fields. Skipping
// ahead of the furthest reachable step is not allowed.
func (s *Session) Back(step int) error {
	if step < 0 || step > s.display {
		return ErrStepAhead
	}
	s.display = step
	return nil
}

// Completed reports whether the static confirmation view should replace the
// form. Reaching the end of the steps is not enough: the booking must be
// Confirmed and the record stamped, so a guest who merely validated the last
// step's fields never sees a false confirmation.
func (s *Session) Completed() bool {
	return s.display >= s.TotalSteps &&
		s.Status == models.StatusConfirmed &&
		s.Record.SubmittedAt != nil
}
