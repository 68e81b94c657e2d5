package domain

import (
	"context"
	"time"

	"turfbook/internal/models"
)

type AuthAPI interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*models.VerifyOTPResponse, error)
	SetName(ctx context.Context, name string) error
}

type TurfAPI interface {
	ListTurfs(ctx context.Context) ([]models.Turf, error)
	GetTurf(ctx context.Context, id int64) (*models.Turf, error)
	GetSlots(ctx context.Context, turfID int64, date string) ([]models.TimeSlot, error)
}

type BookingAPI interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	MyBookings(ctx context.Context) ([]models.Booking, error)
	AllBookings(ctx context.Context) ([]models.Booking, error)
	CancelBooking(ctx context.Context, id int64) error
}

type AdminAPI interface {
	CreateTurf(ctx context.Context, turf *models.Turf) (*models.Turf, error)
	UpdateTurf(ctx context.Context, turf *models.Turf) (*models.Turf, error)
	DeleteTurf(ctx context.Context, id int64) error
	SetTurfAvailability(ctx context.Context, id int64, available bool) error
	UploadTurfImages(ctx context.Context, id int64, images []models.ImageAsset) (*models.Turf, error)
	DeleteTurfImages(ctx context.Context, id int64, urls []string) error
}

// TurfCache drops cached turf responses after a mutation.
type TurfCache interface {
	InvalidateTurf(ctx context.Context, id int64)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SessionReader interface {
	Current() *models.Session
}
