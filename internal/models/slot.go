package models

import "github.com/shopspring/decimal"

type TimeSlot struct {
	StartTime   string          `json:"startTime"` // HH:MM
	EndTime     string          `json:"endTime"`   // HH:MM
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"isAvailable"`
}

// Key identifies a slot within one date.
func (s TimeSlot) Key() string {
	return s.StartTime + "-" + s.EndTime
}

func (s TimeSlot) Label() string {
	return s.StartTime + " - " + s.EndTime
}
