package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_NeedsName(t *testing.T) {
	t.Run("NewUserWithoutName", func(t *testing.T) {
		s := &Session{Role: RoleUser, IsNewUser: true}
		assert.True(t, s.NeedsName())
	})

	t.Run("AdminNeverNeedsName", func(t *testing.T) {
		s := &Session{Role: RoleAdmin, IsNewUser: true}
		assert.False(t, s.NeedsName())
	})

	t.Run("NameAlreadySet", func(t *testing.T) {
		s := &Session{Role: RoleUser, IsNewUser: true, Name: "Ravi"}
		assert.False(t, s.NeedsName())
	})
}

func TestSession_AuthHeader(t *testing.T) {
	assert.Equal(t, "", (&Session{}).AuthHeader())
	assert.Equal(t, "Bearer abc", (&Session{Token: "abc"}).AuthHeader())
	assert.Equal(t, "Token abc", (&Session{Token: "abc", TokenType: "Token"}).AuthHeader())
}

func TestTurf_IsActive(t *testing.T) {
	off := false
	assert.True(t, (&Turf{}).IsActive())
	assert.False(t, (&Turf{Availability: &off}).IsActive())
}

func TestSlotsTotal(t *testing.T) {
	slots := []TimeSlot{
		{StartTime: "06:00", EndTime: "07:00", Price: decimal.RequireFromString("499.50")},
		{StartTime: "07:00", EndTime: "08:00", Price: decimal.RequireFromString("0.25")},
		{StartTime: "08:00", EndTime: "09:00", Price: decimal.RequireFromString("600")},
	}
	assert.True(t, SlotsTotal(slots).Equal(decimal.RequireFromString("1099.75")))
	assert.True(t, SlotsTotal(nil).IsZero())
	assert.Equal(t, "06:00-07:00", slots[0].Key())
}

func TestBooking_UnmarshalDates(t *testing.T) {
	var b Booking
	err := json.Unmarshal([]byte(`{"id":3,"date":"2025-06-01","createdAt":"2025-05-30T10:15:00Z","status":"CONFIRMED","totalAmount":1000}`), &b)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), b.Date)
	assert.True(t, b.CreatedAt.Equal(time.Date(2025, 5, 30, 10, 15, 0, 0, time.UTC)))
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(1000)))

	err = json.Unmarshal([]byte(`{"id":4,"date":"01/06/2025"}`), &b)
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2025-06-01T18:00:00")
	require.NoError(t, err)
	assert.Equal(t, 18, got.Hour())

	got, err = ParseTime("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
