package slots

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"turfbook/internal/api"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTurfAPI struct {
	mock.Mock
}

func (m *MockTurfAPI) ListTurfs(ctx context.Context) ([]models.Turf, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Turf), args.Error(1)
}

func (m *MockTurfAPI) GetTurf(ctx context.Context, id int64) (*models.Turf, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Turf), args.Error(1)
}

func (m *MockTurfAPI) GetSlots(ctx context.Context, turfID int64, date string) ([]models.TimeSlot, error) {
	args := m.Called(ctx, turfID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimeSlot), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Create(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func slot(start, end, price string, available bool) models.TimeSlot {
	return models.TimeSlot{StartTime: start, EndTime: end, Price: decimal.RequireFromString(price), IsAvailable: available}
}

func daySlots() []models.TimeSlot {
	return []models.TimeSlot{
		slot("06:00", "07:00", "500", true),
		slot("07:00", "08:00", "500.50", true),
		slot("08:00", "09:00", "650", false),
		slot("18:00", "19:00", "1200", true),
		slot("19:00", "20:00", "1200.25", true),
	}
}

func loadedSelector(t *testing.T, sub Submitter) (*Selector, *notify.Center) {
	t.Helper()
	m := new(MockTurfAPI)
	m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(daySlots(), nil)
	center := notify.NewCenter(nil)
	s := NewSelector(1, "2025-06-01", m, sub, center, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, center
}

func TestSelector_TotalEqualsSum(t *testing.T) {
	s, _ := loadedSelector(t, nil)
	r := rand.New(rand.NewSource(1))
	all := daySlots()

	for i := 0; i < 200; i++ {
		s.Toggle(all[r.Intn(len(all))])
		want := decimal.Zero
		for _, sel := range s.Selected() {
			want = want.Add(sel.Price)
		}
		assert.True(t, want.Equal(s.Total()), "iteration %d", i)
	}
}

func TestSelector_TogglePairIsIdentity(t *testing.T) {
	s, _ := loadedSelector(t, nil)
	all := daySlots()
	s.Toggle(all[0])
	before := s.Selected()

	for _, sl := range all {
		s.Toggle(sl)
		s.Toggle(sl)
		assert.Equal(t, before, s.Selected(), sl.Key())
	}
}

func TestSelector_UnavailableNeverSelected(t *testing.T) {
	s, _ := loadedSelector(t, nil)
	taken := daySlots()[2]

	for i := 0; i < 5; i++ {
		assert.False(t, s.Toggle(taken))
		assert.False(t, s.IsSelected(taken))
	}

	// the loaded list wins over a stale copy claiming availability
	forged := taken
	forged.IsAvailable = true
	assert.False(t, s.Toggle(forged))
	assert.Empty(t, s.Selected())
}

func TestSelector_DraftSortedByStart(t *testing.T) {
	s, _ := loadedSelector(t, nil)
	all := daySlots()
	s.Toggle(all[4])
	s.Toggle(all[0])
	s.Toggle(all[3])

	assert.Equal(t, "19:00", s.Selected()[0].StartTime)

	draft, err := s.Draft()
	require.NoError(t, err)
	assert.Equal(t, int64(1), draft.TurfID)
	assert.Equal(t, "2025-06-01", draft.Date)
	require.Len(t, draft.Slots, 3)
	assert.Equal(t, []string{"06:00", "18:00", "19:00"},
		[]string{draft.Slots[0].StartTime, draft.Slots[1].StartTime, draft.Slots[2].StartTime})
	assert.Equal(t, "2900.25", draft.TotalAmount.String())
}

func TestSelector_SubmitEmpty(t *testing.T) {
	sub := new(MockSubmitter)
	s, center := loadedSelector(t, sub)

	assert.False(t, s.CanSubmit())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrEmptySelection)
	sub.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	last, _ := center.Last()
	assert.Equal(t, ErrEmptySelection.Error(), last.Text)
}

func TestSelector_SubmitFailureKeepsSelection(t *testing.T) {
	sub := new(MockSubmitter)
	sub.On("Create", mock.Anything, mock.Anything).
		Return(nil, &api.Error{Status: 409, Message: "Slot 06:00-07:00 is already booked"}).Once()

	s, center := loadedSelector(t, sub)
	s.Toggle(daySlots()[0])

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Len(t, s.Selected(), 1)
	assert.True(t, s.Stale())
	assert.True(t, s.CanSubmit())

	last, _ := center.Last()
	assert.Equal(t, "Slot 06:00-07:00 is already booked", last.Text)
}

func TestSelector_SubmitSuccess(t *testing.T) {
	sub := new(MockSubmitter)
	sub.On("Create", mock.Anything, mock.MatchedBy(func(req *models.BookingRequest) bool {
		return len(req.Slots) == 2 && req.TotalAmount.Equal(decimal.RequireFromString("1000.50"))
	})).Return(&models.Booking{ID: 9, Status: models.BookingStatusConfirmed}, nil).Once()

	s, center := loadedSelector(t, sub)
	s.Toggle(daySlots()[1])
	s.Toggle(daySlots()[0])

	b, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.ID)
	assert.Empty(t, s.Selected())

	last, _ := center.Last()
	assert.Equal(t, models.NotificationSuccess, last.Kind)
	sub.AssertExpectations(t)
}

func TestSelector_SubmitBusy(t *testing.T) {
	release := make(chan time.Time)
	sub := new(MockSubmitter)
	sub.On("Create", mock.Anything, mock.Anything).
		WaitUntil(release).
		Return(&models.Booking{ID: 1}, nil).Once()

	s, _ := loadedSelector(t, sub)
	s.Toggle(daySlots()[0])

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, s.Submitting, time.Second, time.Millisecond)
	assert.False(t, s.CanSubmit())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestSelector_SubmitAndRefresh(t *testing.T) {
	taken := daySlots()
	taken[0].IsAvailable = false

	t.Run("failure keeps selection", func(t *testing.T) {
		m := new(MockTurfAPI)
		m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(daySlots(), nil).Once()
		m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(taken, nil).Maybe()
		sub := new(MockSubmitter)
		sub.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

		s := NewSelector(1, "2025-06-01", m, sub, nil, nil)
		ctx := context.Background()
		require.NoError(t, s.Load(ctx))
		s.Toggle(daySlots()[0])
		s.Toggle(daySlots()[3])

		_, err := s.SubmitAndRefresh(ctx)
		require.Error(t, err)
		assert.Len(t, s.Selected(), 2)
		assert.True(t, s.Stale())
		m.AssertNumberOfCalls(t, "GetSlots", 1)
	})

	t.Run("success reloads", func(t *testing.T) {
		m := new(MockTurfAPI)
		m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(daySlots(), nil).Once()
		m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(taken, nil).Once()
		sub := new(MockSubmitter)
		sub.On("Create", mock.Anything, mock.Anything).Return(&models.Booking{ID: 4}, nil).Once()

		s := NewSelector(1, "2025-06-01", m, sub, nil, nil)
		ctx := context.Background()
		require.NoError(t, s.Load(ctx))
		s.Toggle(daySlots()[0])

		b, err := s.SubmitAndRefresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), b.ID)
		assert.Empty(t, s.Selected())
		assert.False(t, s.Stale())
		assert.False(t, s.Slots()[0].IsAvailable)
		m.AssertExpectations(t)
	})
}

func TestSelector_ReloadPrunesSelection(t *testing.T) {
	m := new(MockTurfAPI)
	first := daySlots()
	second := daySlots()
	second[0].IsAvailable = false
	m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(first, nil).Once()
	m.On("GetSlots", mock.Anything, int64(1), "2025-06-01").Return(second, nil).Once()

	s := NewSelector(1, "2025-06-01", m, nil, nil, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	s.Toggle(first[0])
	s.Toggle(first[3])

	require.NoError(t, s.Load(ctx))
	sel := s.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "18:00", sel[0].StartTime)
	assert.False(t, s.Stale())
}

func TestSelector_SetDateAndLoadError(t *testing.T) {
	m := new(MockTurfAPI)
	m.On("GetSlots", mock.Anything, int64(1), "2025-06-02").Return(nil, errors.New("boom"))

	s, _ := loadedSelector(t, nil)
	s.api = m
	s.Toggle(daySlots()[0])

	s.SetDate("2025-06-02")
	assert.Empty(t, s.Selected())
	assert.True(t, s.Stale())
	assert.Error(t, s.Load(context.Background()))
	assert.True(t, s.Stale())
}

func TestNextDates(t *testing.T) {
	now := time.Date(2025, 12, 30, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-12-30", "2025-12-31", "2026-01-01"}, NextDates(now, 3))
	assert.Len(t, NextDates(now, 0), models.DefaultDateRangeDays)
}
