package slots

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"turfbook/internal/api"
	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptySelection = errors.New("please select at least one time slot")
	ErrBusy           = errors.New("booking already in progress")
)

// Submitter creates a booking from a draft. A non-nil booking together with
// an error means the booking exists but needs the user's attention.
type Submitter interface {
	Create(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// Selector is the slot picking state for one turf and date.
type Selector struct {
	mu         sync.Mutex
	turfID     int64
	date       string
	slots      []models.TimeSlot
	selected   []models.TimeSlot
	stale      bool
	loading    bool
	submitting bool

	api       domain.TurfAPI
	submitter Submitter
	notifier  domain.Notifier
	logger    *zerolog.Logger
}

func NewSelector(turfID int64, date string, turfAPI domain.TurfAPI, submitter Submitter, notifier domain.Notifier, logger *zerolog.Logger) *Selector {
	return &Selector{
		turfID:    turfID,
		date:      date,
		stale:     true,
		api:       turfAPI,
		submitter: submitter,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *Selector) TurfID() int64 { return s.turfID }

func (s *Selector) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// SetDate switches the date, clears the selection and marks slots stale.
func (s *Selector) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if date == s.date {
		return
	}
	s.date = date
	s.slots = nil
	s.selected = nil
	s.stale = true
}

// Load fetches slots for the current date. The selection keeps only slots
// that are still offered and available.
func (s *Selector) Load(ctx context.Context) error {
	s.mu.Lock()
	date := s.date
	s.loading = true
	s.mu.Unlock()

	fetched, err := s.api.GetSlots(ctx, s.turfID, date)
	metrics.IncAction("load_slots", err)

	s.mu.Lock()
	s.loading = false
	if err != nil || date != s.date {
		s.mu.Unlock()
		if err != nil {
			s.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load time slots")))
		}
		return err
	}
	s.slots = fetched
	s.stale = false

	index := make(map[string]models.TimeSlot, len(fetched))
	for _, sl := range fetched {
		index[sl.Key()] = sl
	}
	kept := s.selected[:0]
	for _, sel := range s.selected {
		if cur, ok := index[sel.Key()]; ok && cur.IsAvailable {
			kept = append(kept, cur)
		}
	}
	s.selected = kept
	s.mu.Unlock()
	return nil
}

// Slots returns the offered slots in backend order.
func (s *Selector) Slots() []models.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TimeSlot(nil), s.slots...)
}

func (s *Selector) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

func (s *Selector) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Toggle adds an available slot or removes a selected one. Unavailable slots
// are ignored. It reports whether the selection changed.
func (s *Selector) Toggle(slot models.TimeSlot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slot.Key()
	for i, sel := range s.selected {
		if sel.Key() == key {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return true
		}
	}

	// доступность берём из загруженного списка, если слот там есть
	for _, cur := range s.slots {
		if cur.Key() == key {
			slot = cur
			break
		}
	}
	if !slot.IsAvailable {
		return false
	}
	s.selected = append(s.selected, slot)
	return true
}

func (s *Selector) IsSelected(slot models.TimeSlot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.selected {
		if sel.Key() == slot.Key() {
			return true
		}
	}
	return false
}

// Selected returns the selection in the order it was made.
func (s *Selector) Selected() []models.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TimeSlot(nil), s.selected...)
}

func (s *Selector) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SlotsTotal(s.selected)
}

func (s *Selector) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected) > 0 && !s.submitting
}

func (s *Selector) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Clear drops the selection.
func (s *Selector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Draft builds the booking request with slots sorted by start time.
func (s *Selector) Draft() (*models.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftLocked()
}

func (s *Selector) draftLocked() (*models.BookingRequest, error) {
	if len(s.selected) == 0 {
		return nil, ErrEmptySelection
	}
	sorted := append([]models.TimeSlot(nil), s.selected...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })
	return &models.BookingRequest{
		TurfID:      s.turfID,
		Date:        s.date,
		Slots:       sorted,
		TotalAmount: models.SlotsTotal(sorted),
	}, nil
}

// Submit sends the draft. On failure the selection is kept and the slots are
// marked stale so the next Load re-fetches availability.
func (s *Selector) Submit(ctx context.Context) (*models.Booking, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	draft, err := s.draftLocked()
	if err != nil {
		s.mu.Unlock()
		s.notify(ctx, notify.Error("No Slots Selected", err.Error()))
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	booking, err := s.submitter.Create(ctx, draft)
	metrics.IncAction("submit_booking", err)

	s.mu.Lock()
	s.submitting = false
	s.stale = true
	if booking != nil {
		s.selected = nil
	}
	s.mu.Unlock()

	switch {
	case err != nil && booking != nil:
		s.notify(ctx, notify.Error("Booking Created", err.Error()))
	case err != nil:
		if s.logger != nil {
			s.logger.Warn().Err(err).Int64("turf_id", s.turfID).Str("date", draft.Date).Msg("booking failed")
		}
		s.notify(ctx, notify.Error("Booking Failed", api.UserMessage(err, "Failed to create booking")))
	default:
		s.notify(ctx, notify.Success("Booking Confirmed", "Your booking has been created successfully"))
	}
	return booking, err
}

// SubmitAndRefresh submits and re-fetches availability only when a booking
// came back. A failed submit leaves the selection untouched and the slots stale.
func (s *Selector) SubmitAndRefresh(ctx context.Context) (*models.Booking, error) {
	booking, err := s.Submit(ctx)
	if booking != nil {
		_ = s.Load(ctx)
	}
	return booking, err
}

func (s *Selector) notify(ctx context.Context, n models.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

// NextDates lists n selectable dates starting with today.
func NextDates(now time.Time, n int) []string {
	if n <= 0 {
		n = models.DefaultDateRangeDays
	}
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(models.DateLayout))
	}
	return dates
}
