package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rese02/pradell-booking-sub000/models"
)

func TestDisplayStep(t *testing.T) {
	cases := []struct {
		last, total, want int
	}{
		{-1, 5, 0},
		{0, 5, 1},
		{3, 5, 4},
		{4, 5, 5}, // all steps done, nothing left to render
		{9, 5, 5},
		{-5, 5, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DisplayStep(c.last, c.total), "last=%d total=%d", c.last, c.total)
	}
}

func record(last int) models.GuestSubmittedData {
	r := models.NewGuestSubmittedData()
	r.LastCompletedStep = last
	return r
}

func TestNewSessionResumesFromRecord(t *testing.T) {
	s := NewSession(5, record(1), models.StatusPendingGuestInformation)
	assert.Equal(t, 2, s.Display())
}

func TestApplyAdvancesOnSuccess(t *testing.T) {
	s := NewSession(5, record(-1), models.StatusPendingGuestInformation)

	applied := s.Apply(Outcome{
		Success:     true,
		Step:        0,
		ActionToken: "a1",
		GuestData:   record(0),
		Status:      models.StatusPendingGuestInformation,
	})
	assert.True(t, applied)
	assert.Equal(t, 1, s.Display())
	assert.Equal(t, 0, s.Record.LastCompletedStep)
}

func TestApplyDeduplicatesByActionToken(t *testing.T) {
	s := NewSession(5, record(-1), models.StatusPendingGuestInformation)

	o := Outcome{Success: true, Step: 0, ActionToken: "a1", GuestData: record(0)}
	assert.True(t, s.Apply(o))
	assert.False(t, s.Apply(o), "same action token must not apply twice")
	assert.Equal(t, 1, s.Display())

	assert.False(t, s.Apply(Outcome{Success: true, Step: 1, ActionToken: ""}),
		"an outcome without an action token is never applied")
}

func TestApplyFailureRefreshesButNeverAdvances(t *testing.T) {
	s := NewSession(5, record(0), models.StatusPendingGuestInformation)
	require.Equal(t, 1, s.Display())

	r := record(0)
	r.DateOfBirth = "1990-05-04"
	applied := s.Apply(Outcome{Success: false, Step: 1, ActionToken: "a2", GuestData: r})
	assert.True(t, applied)
	assert.Equal(t, 1, s.Display())
	assert.Equal(t, "1990-05-04", s.Record.DateOfBirth)
}

func TestApplyAfterBackResumesAtFrontier(t *testing.T) {
	s := NewSession(5, record(2), models.StatusPendingGuestInformation)
	require.Equal(t, 3, s.Display())

	// Resubmitting a re-entered earlier step jumps back to the furthest open
	// step; persisted progress was never lowered by going back.
	require.NoError(t, s.Back(0))
	applied := s.Apply(Outcome{Success: true, Step: 0, ActionToken: "a3", GuestData: record(2)})
	assert.True(t, applied)
	assert.Equal(t, 3, s.Display())
}

func TestBackNavigation(t *testing.T) {
	s := NewSession(5, record(2), models.StatusPendingGuestInformation)
	require.Equal(t, 3, s.Display())

	require.NoError(t, s.Back(1))
	assert.Equal(t, 1, s.Display())

	assert.ErrorIs(t, s.Back(4), ErrStepAhead)
	assert.ErrorIs(t, s.Back(-1), ErrStepAhead)
}

func TestCompletedRequiresConfirmationAndStamp(t *testing.T) {
	done := record(4)
	now := time.Now()
	done.SubmittedAt = &now

	s := NewSession(5, done, models.StatusConfirmed)
	assert.True(t, s.Completed())

	// Reaching the end without the confirmed status is not completion.
	s = NewSession(5, record(4), models.StatusPendingGuestInformation)
	assert.False(t, s.Completed())

	// Confirmed status without the stamped record is not completion either.
	s = NewSession(5, record(4), models.StatusConfirmed)
	assert.False(t, s.Completed())

	s = NewSession(5, record(1), models.StatusConfirmed)
	assert.False(t, s.Completed())
}
