package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/metrics"
	"turfbook/internal/models"

	"github.com/rs/zerolog"
)

// CancelWindow is how long before the booked date a booking may still be cancelled.
const CancelWindow = models.DefaultCancelWindowMinutes * time.Minute

var (
	ErrAmountMismatch = errors.New("booked amount differs from the selected slots total")
	ErrNotCancellable = errors.New("booking can no longer be cancelled")
	ErrBusy           = errors.New("request already in progress")
)

// IsCancellable reports whether b is CONFIRMED and at least two hours away.
func IsCancellable(b *models.Booking, now time.Time) bool {
	return IsCancellableWithin(b, now, CancelWindow)
}

// IsCancellableWithin is IsCancellable with a custom window. The boundary is inclusive.
func IsCancellableWithin(b *models.Booking, now time.Time, window time.Duration) bool {
	if b == nil || b.Status != models.BookingStatusConfirmed {
		return false
	}
	return b.Date.Sub(now) >= window
}

// Service covers booking submission, "my bookings" and the admin list.
type Service struct {
	mu         sync.Mutex
	mine       []models.Booking
	all        []models.Booking
	cancelling bool

	api    domain.BookingAPI
	events domain.EventPublisher
	logger *zerolog.Logger
	window time.Duration
	now    func() time.Time
}

func NewService(bookingAPI domain.BookingAPI, publisher domain.EventPublisher, cancelWindow time.Duration, logger *zerolog.Logger) *Service {
	if cancelWindow <= 0 {
		cancelWindow = CancelWindow
	}
	return &Service{
		api:    bookingAPI,
		events: publisher,
		logger: logger,
		window: cancelWindow,
		now:    time.Now,
	}
}

// Create submits req. If the backend total differs from the draft total the
// created booking is returned together with ErrAmountMismatch.
func (s *Service) Create(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if len(req.Slots) == 0 {
		return nil, errors.New("booking request has no slots")
	}
	if want := models.SlotsTotal(req.Slots); !want.Equal(req.TotalAmount) {
		return nil, fmt.Errorf("%w: draft %s, slots %s", ErrAmountMismatch, req.TotalAmount, want)
	}

	created, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(events.EventBookingCreated, created)
	if s.logger != nil {
		s.logger.Info().Int64("booking_id", created.ID).Int64("turf_id", req.TurfID).Str("date", req.Date).
			Str("amount", created.TotalAmount.String()).Msg("booking created")
	}

	if !created.TotalAmount.Equal(req.TotalAmount) {
		return created, fmt.Errorf("%w: expected ₹%s, booked ₹%s",
			ErrAmountMismatch, req.TotalAmount.StringFixed(2), created.TotalAmount.StringFixed(2))
	}
	return created, nil
}

// Mine loads the customer's bookings.
func (s *Service) Mine(ctx context.Context) ([]models.Booking, error) {
	list, err := s.api.MyBookings(ctx)
	metrics.IncAction("my_bookings", err)
	if err != nil {
		return nil, fmt.Errorf("load my bookings: %w", err)
	}
	s.mu.Lock()
	s.mine = list
	s.mu.Unlock()
	return list, nil
}

// All loads every booking (admin).
func (s *Service) All(ctx context.Context) ([]models.Booking, error) {
	list, err := s.api.AllBookings(ctx)
	metrics.IncAction("all_bookings", err)
	if err != nil {
		return nil, fmt.Errorf("load all bookings: %w", err)
	}
	s.mu.Lock()
	s.all = list
	s.mu.Unlock()
	return list, nil
}

// Cached returns the last loaded "my bookings" list.
func (s *Service) Cached() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Booking(nil), s.mine...)
}

// CachedAll returns the last loaded admin list.
func (s *Service) CachedAll() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Booking(nil), s.all...)
}

// CanCancel evaluates eligibility against the current time.
func (s *Service) CanCancel(b *models.Booking) bool {
	return IsCancellableWithin(b, s.now(), s.window)
}

// Cancel checks eligibility locally, cancels and reloads "my bookings".
func (s *Service) Cancel(ctx context.Context, b *models.Booking) error {
	if !s.CanCancel(b) {
		return ErrNotCancellable
	}

	s.mu.Lock()
	if s.cancelling {
		s.mu.Unlock()
		return ErrBusy
	}
	s.cancelling = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancelling = false
		s.mu.Unlock()
	}()

	err := s.api.CancelBooking(ctx, b.ID)
	metrics.IncAction("cancel_booking", err)
	if err != nil {
		return fmt.Errorf("cancel booking %d: %w", b.ID, err)
	}

	cancelled := *b
	cancelled.Status = models.BookingStatusCancelled
	s.publish(events.EventBookingCancelled, &cancelled)

	if _, err := s.Mine(ctx); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("reload after cancel failed")
	}
	return nil
}

func (s *Service) publish(eventType string, b *models.Booking) {
	if s.events == nil {
		return
	}
	slots := make([]string, 0, len(b.Slots))
	for _, sl := range b.Slots {
		slots = append(slots, sl.Key())
	}
	payload := events.BookingEventPayload{
		BookingID:   b.ID,
		TurfID:      b.TurfID,
		TurfName:    b.TurfName,
		Date:        b.Date.Format(models.DateLayout),
		Slots:       slots,
		TotalAmount: b.TotalAmount,
		Status:      string(b.Status),
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish booking event")
	}
}
