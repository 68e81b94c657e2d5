package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingStatuses lists statuses in the order the admin tabs show them.
var BookingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusPending, BookingStatusCancelled}

type Booking struct {
	ID          int64           `json:"id"`
	TurfID      int64           `json:"turfId,omitempty"`
	TurfName    string          `json:"turfName"`
	Date        time.Time       `json:"date"`
	Slots       []TimeSlot      `json:"slots"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	PlayerName  string          `json:"playerName,omitempty"`
	Phone       string          `json:"phone,omitempty"`
}

// BookingRequest is the draft built from a slot selection.
type BookingRequest struct {
	TurfID      int64           `json:"turfId"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Slots       []TimeSlot      `json:"slots"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// SlotsTotal sums slot prices.
func SlotsTotal(slots []TimeSlot) decimal.Decimal {
	total := decimal.Zero
	for _, s := range slots {
		total = total.Add(s.Price)
	}
	return total
}
