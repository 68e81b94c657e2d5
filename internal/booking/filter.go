package booking

import (
	"fmt"

	"turfbook/internal/models"
)

// FilterAll selects every status in Filter.
const FilterAll = "ALL"

type Tab struct {
	Key   string
	Label string
	Count int
}

// Filter keeps bookings with the given status; FilterAll or "" keeps all.
func Filter(list []models.Booking, status string) []models.Booking {
	if status == "" || status == FilterAll {
		return append([]models.Booking(nil), list...)
	}
	out := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if string(b.Status) == status {
			out = append(out, b)
		}
	}
	return out
}

// Counts returns the number of bookings per status plus FilterAll.
func Counts(list []models.Booking) map[string]int {
	counts := map[string]int{FilterAll: len(list)}
	for _, st := range models.BookingStatuses {
		counts[string(st)] = 0
	}
	for _, b := range list {
		counts[string(b.Status)]++
	}
	return counts
}

// Tabs lists the admin filter tabs in display order.
func Tabs(list []models.Booking) []Tab {
	counts := Counts(list)
	tabs := []Tab{{Key: FilterAll, Label: "All", Count: counts[FilterAll]}}
	for _, st := range models.BookingStatuses {
		tabs = append(tabs, Tab{Key: string(st), Label: statusLabel(st), Count: counts[string(st)]})
	}
	return tabs
}

func statusLabel(st models.BookingStatus) string {
	switch st {
	case models.BookingStatusConfirmed:
		return "Confirmed"
	case models.BookingStatusPending:
		return "Pending"
	case models.BookingStatusCancelled:
		return "Cancelled"
	default:
		return string(st)
	}
}

// SlotSummary renders "06:00 - 07:00" for one slot and "N slots" otherwise.
func SlotSummary(b *models.Booking) string {
	if len(b.Slots) == 1 {
		return b.Slots[0].Label()
	}
	return fmt.Sprintf("%d slots", len(b.Slots))
}
