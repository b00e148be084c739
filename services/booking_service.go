package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"gorm.io/datatypes"

	"github.com/rese02/pradell-booking-sub000/models"
	"github.com/rese02/pradell-booking-sub000/utils"
)

const (
	statsCacheKey = "booking_stats"
	statsCacheTTL = 30 * time.Second
)

// BookingService covers the administrative side: creating a booking (which
// mints the guest link), listing, cancelling and deleting. The intake flow
// itself lives in IntakeService.
type BookingService struct {
	Store     BookingStore
	Artifacts ArtifactStore
	cache     *gocache.Cache
}

func NewBookingService(store BookingStore, artifacts ArtifactStore) *BookingService {
	return &BookingService{
		Store:     store,
		Artifacts: artifacts,
		cache:     gocache.New(statsCacheTTL, 2*statsCacheTTL),
	}
}

// CreateBookingRequest is the admin create payload.
type CreateBookingRequest struct {
	GuestName  string                 `json:"guestName" form:"guestName" validate:"required,min=2,max=255"`
	GuestEmail string                 `json:"guestEmail" form:"guestEmail" validate:"omitempty,email"`
	PriceTotal float64                `json:"priceTotal" form:"priceTotal" validate:"required,gt=0"`
	CheckIn    string                 `json:"checkIn" form:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut   string                 `json:"checkOut" form:"checkOut" validate:"required,datetime=2006-01-02"`
	Rooms      []models.RoomSelection `json:"rooms" form:"rooms"`
	SendEmail  bool                   `json:"sendEmail" form:"sendEmail"`
}

// ValidateCreate runs the declarative rules plus the cross-field refinement
// that checkout must come after checkin.
func ValidateCreate(req CreateBookingRequest) FieldErrors {
	fe := FieldErrors{}
	if err := validate.Struct(req); err != nil {
		collectFieldErrors(err, fe, "")
	}
	ci, errIn := time.Parse("2006-01-02", req.CheckIn)
	co, errOut := time.Parse("2006-01-02", req.CheckOut)
	if errIn == nil && errOut == nil && !co.After(ci) {
		fe.Add("checkOut", "must be after the check-in date")
	}
	for i, r := range req.Rooms {
		if strings.TrimSpace(r.RoomType) == "" {
			fe.Add(fmt.Sprintf("rooms[%d].roomType", i), "this field is required")
		}
		if r.Adults <= 0 {
			fe.Add(fmt.Sprintf("rooms[%d].adults", i), "must be at least 1")
		}
	}
	return fe
}

// CreateBooking validates the request, mints a unique single-use booking
// token (retrying on the rare collision) and stores the booking with an
// empty guest record. The guest link email is best-effort.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, FieldErrors, error) {
	if fe := ValidateCreate(req); !fe.Empty() {
		return nil, fe, nil
	}

	ci, _ := time.Parse("2006-01-02", req.CheckIn)
	co, _ := time.Parse("2006-01-02", req.CheckOut)

	roomsJSON, err := json.Marshal(req.Rooms)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode rooms: %w", err)
	}

	var booking *models.Booking
	backoff := retry.WithMaxRetries(5, retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, genErr := utils.GenerateSecureToken(32)
		if genErr != nil {
			return fmt.Errorf("failed to generate booking token: %w", genErr)
		}

		b := &models.Booking{
			BookingToken: token,
			GuestName:    strings.TrimSpace(req.GuestName),
			GuestEmail:   strings.TrimSpace(req.GuestEmail),
			PriceTotal:   req.PriceTotal,
			CheckIn:      utils.PtrTime(ci),
			CheckOut:     utils.PtrTime(co),
			Rooms:        datatypes.JSON(roomsJSON),
			Status:       models.StatusPendingGuestInformation,
			GuestData:    models.NewGuestSubmittedData(),
		}
		if createErr := s.Store.Create(ctx, b); createErr != nil {
			if IsUniqueViolation(createErr) {
				log.Printf("booking token collision, retrying")
				return retry.RetryableError(createErr)
			}
			return fmt.Errorf("failed to create booking: %w", createErr)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.cache.Delete(statsCacheKey)

	if req.SendEmail && booking.GuestEmail != "" {
		link := utils.BuildGuestLink(utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000"), booking.BookingToken)
		if mailErr := utils.SendGuestLinkEmail(booking.GuestEmail, booking.GuestName, link, req.CheckIn, req.CheckOut); mailErr != nil {
			log.Printf("warning: guest link email for booking %d failed: %v", booking.ID, mailErr)
		}
	}

	return booking, nil, nil
}

// GetBooking returns one booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return s.Store.GetByID(ctx, id)
}

// ListBookings returns bookings matching the filter, newest first.
func (s *BookingService) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	return s.Store.List(ctx, f)
}

// CancelBooking marks the booking Cancelled, which also revokes its guest
// link. Uploaded artifacts are kept until the booking is deleted.
func (s *BookingService) CancelBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.StatusCancelled {
		return booking, nil
	}
	booking.Status = models.StatusCancelled
	if err := s.Store.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking %d: %w", id, err)
	}
	s.cache.Delete(statsCacheKey)
	return booking, nil
}

// DeleteBooking removes the booking row and cascades deletion of every
// artifact its guest record owns. Artifact failures are aggregated and
// logged but do not block the record deletion: the user-visible data wins
// over storage hygiene.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint) error {
	booking, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var cleanupErr error
	for _, locator := range booking.GuestData.ArtifactLocators() {
		if delErr := s.Artifacts.Delete(locator); delErr != nil {
			cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("artifact %s: %w", locator, delErr))
		}
	}
	if cleanupErr != nil {
		log.Printf("warning: artifact cleanup for booking %d incomplete: %v", id, cleanupErr)
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(statsCacheKey)
	return nil
}

// BookingStats is the dashboard summary.
type BookingStats struct {
	Total                   int64 `json:"total"`
	PendingGuestInformation int64 `json:"pendingGuestInformation"`
	AwaitingConfirmation    int64 `json:"awaitingConfirmation"`
	Confirmed               int64 `json:"confirmed"`
	Cancelled               int64 `json:"cancelled"`
}

// Stats returns per-status booking counts, cached briefly because the
// dashboard polls it.
func (s *BookingService) Stats(ctx context.Context) (BookingStats, error) {
	if cached, ok := s.cache.Get(statsCacheKey); ok {
		return cached.(BookingStats), nil
	}

	counts, err := s.Store.CountByStatus(ctx)
	if err != nil {
		return BookingStats{}, err
	}

	stats := BookingStats{
		PendingGuestInformation: counts[models.StatusPendingGuestInformation],
		AwaitingConfirmation:    counts[models.StatusAwaitingConfirmation],
		Confirmed:               counts[models.StatusConfirmed],
		Cancelled:               counts[models.StatusCancelled],
	}
	for _, n := range counts {
		stats.Total += n
	}

	s.cache.Set(statsCacheKey, stats, statsCacheTTL)
	return stats, nil
}
