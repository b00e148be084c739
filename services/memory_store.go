package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rese02/pradell-booking-sub000/models"
)

// MemoryBookingStore is a mutex-guarded in-memory BookingStore. It backs the
// test suite behind the same interface as the MySQL store; bookings are
// deep-copied on the way in and out so callers mutate snapshots, not the
// stored state, until they Update.
type MemoryBookingStore struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.Booking
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{
		nextID: 1,
		byID:   make(map[uint]models.Booking),
	}
}

func cloneBooking(b models.Booking) models.Booking {
	out := b
	out.GuestData = b.GuestData.Clone()
	if b.Rooms != nil {
		out.Rooms = append(out.Rooms[:0:0], b.Rooms...)
	}
	if b.CheckIn != nil {
		t := *b.CheckIn
		out.CheckIn = &t
	}
	if b.CheckOut != nil {
		t := *b.CheckOut
		out.CheckOut = &t
	}
	return out
}

func (s *MemoryBookingStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.BookingToken == b.BookingToken {
			return &uniqueViolationError{}
		}
	}

	b.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.byID[b.ID] = cloneBooking(*b)
	return nil
}

func (s *MemoryBookingStore) GetByID(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryBookingStore) GetByToken(_ context.Context, token string) (*models.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrBookingNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.byID {
		if b.BookingToken == token {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (s *MemoryBookingStore) Update(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[b.ID]; !ok {
		return ErrBookingNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	s.byID[b.ID] = cloneBooking(*b)
	return nil
}

func (s *MemoryBookingStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrBookingNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryBookingStore) List(_ context.Context, f BookingFilter) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Booking, 0, len(s.byID))
	for _, b := range s.byID {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(b.GuestName), search) {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryBookingStore) CountByStatus(_ context.Context) (map[models.BookingStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.BookingStatus]int64)
	for _, b := range s.byID {
		out[b.Status]++
	}
	return out, nil
}

type uniqueViolationError struct{}

func (*uniqueViolationError) Error() string { return "unique constraint violation: booking_token" }
