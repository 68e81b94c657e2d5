package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Форматы дат, которые присылает бэкенд
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// ParseTime accepts RFC3339, a zone-less local date-time or a bare date.
// Bare dates are midnight UTC.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		loc := time.Local
		if layout == DateLayout {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	type alias Booking
	aux := struct {
		*alias
		Date      string `json:"date"`
		CreatedAt string `json:"createdAt"`
	}{alias: (*alias)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if b.Date, err = ParseTime(aux.Date); err != nil {
		return fmt.Errorf("booking %d date: %w", b.ID, err)
	}
	if b.CreatedAt, err = ParseTime(aux.CreatedAt); err != nil {
		return fmt.Errorf("booking %d createdAt: %w", b.ID, err)
	}
	return nil
}
