package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rese02/pradell-booking-sub000/models"

	"gorm.io/gorm"
)

// ErrBookingNotFound is returned when no booking matches the given id or
// token. The guest link of a cancelled booking behaves the same way.
var ErrBookingNotFound = errors.New("booking_not_found")

// BookingFilter narrows admin listing queries.
type BookingFilter struct {
	Status models.BookingStatus
	Search string // substring match on guest name
}

// BookingStore is the record layer behind the intake coordinator and the
// admin booking service. Update persists the whole booking row (guest record
// and status together) in one write; callers do the read-merge-write.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	GetByToken(ctx context.Context, token string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}

// IsUniqueViolation reports whether err looks like a unique-key collision.
// MySQL surfaces these as driver errors, match on message like the token
// mint retry expects.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") || strings.Contains(lc, "constraint")
}

// GormBookingStore is the MySQL-backed BookingStore.
type GormBookingStore struct {
	DB *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{DB: db}
}

func (s *GormBookingStore) Create(ctx context.Context, b *models.Booking) error {
	return s.DB.WithContext(ctx).Create(b).Error
}

func (s *GormBookingStore) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &b, nil
}

func (s *GormBookingStore) GetByToken(ctx context.Context, token string) (*models.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrBookingNotFound
	}
	var b models.Booking
	if err := s.DB.WithContext(ctx).Where("booking_token = ?", token).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking by token: %w", err)
	}
	return &b, nil
}

func (s *GormBookingStore) Update(ctx context.Context, b *models.Booking) error {
	// Save writes all columns of the row at once, so guest record and status
	// can never be applied separately.
	return s.DB.WithContext(ctx).Save(b).Error
}

func (s *GormBookingStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (s *GormBookingStore) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Model(&models.Booking{}).Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if strings.TrimSpace(f.Search) != "" {
		q = q.Where("LOWER(guest_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(f.Search))+"%")
	}
	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

func (s *GormBookingStore) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	type row struct {
		Status models.BookingStatus
		N      int64
	}
	var rows []row
	if err := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	out := make(map[models.BookingStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
