package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/metrics"
	"turfbook/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidTurf = errors.New("invalid turf")
	ErrBusy        = errors.New("request already in progress")
)

// ValidateTurf checks the fields the admin form requires.
func ValidateTurf(t *models.Turf) error {
	var problems []string
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(t.Location) == "" {
		problems = append(problems, "location is required")
	}
	if !t.PricePerHour.IsPositive() {
		problems = append(problems, "price per hour must be greater than 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTurf, strings.Join(problems, ", "))
	}
	return nil
}

// TurfManager backs the admin turf list and form.
type TurfManager struct {
	mu    sync.Mutex
	turfs []models.Turf
	busy  bool

	turfAPI  domain.TurfAPI
	adminAPI domain.AdminAPI
	cache    domain.TurfCache
	events   domain.EventPublisher
	logger   *zerolog.Logger
}

func NewTurfManager(turfAPI domain.TurfAPI, adminAPI domain.AdminAPI, cache domain.TurfCache, publisher domain.EventPublisher, logger *zerolog.Logger) *TurfManager {
	return &TurfManager{
		turfAPI:  turfAPI,
		adminAPI: adminAPI,
		cache:    cache,
		events:   publisher,
		logger:   logger,
	}
}

// List loads every turf, bypassing the cache.
func (m *TurfManager) List(ctx context.Context) ([]models.Turf, error) {
	if m.cache != nil {
		m.cache.InvalidateTurf(ctx, 0)
	}
	turfs, err := m.turfAPI.ListTurfs(ctx)
	metrics.IncAction("admin_list_turfs", err)
	if err != nil {
		return nil, fmt.Errorf("list turfs: %w", err)
	}
	m.mu.Lock()
	m.turfs = turfs
	m.mu.Unlock()
	return turfs, nil
}

// Turfs returns the last loaded list.
func (m *TurfManager) Turfs() []models.Turf {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Turf(nil), m.turfs...)
}

// Stats summarises the loaded list for the dashboard.
func (m *TurfManager) Stats() (total, active, withImages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.turfs {
		total++
		if m.turfs[i].IsActive() {
			active++
		}
		if m.turfs[i].HasImages() {
			withImages++
		}
	}
	return total, active, withImages
}

func (m *TurfManager) Create(ctx context.Context, t *models.Turf) (*models.Turf, error) {
	if err := ValidateTurf(t); err != nil {
		return nil, err
	}
	var created *models.Turf
	err := m.mutate(ctx, "create_turf", 0, func() error {
		var err error
		created, err = m.adminAPI.CreateTurf(ctx, normalize(t))
		return err
	})
	if err != nil {
		return nil, err
	}
	m.publish(events.EventTurfSaved, created)
	return created, nil
}

func (m *TurfManager) Update(ctx context.Context, t *models.Turf) (*models.Turf, error) {
	if t.ID <= 0 {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidTurf)
	}
	if err := ValidateTurf(t); err != nil {
		return nil, err
	}
	var updated *models.Turf
	err := m.mutate(ctx, "update_turf", t.ID, func() error {
		var err error
		updated, err = m.adminAPI.UpdateTurf(ctx, normalize(t))
		return err
	})
	if err != nil {
		return nil, err
	}
	m.publish(events.EventTurfSaved, updated)
	return updated, nil
}

func (m *TurfManager) Delete(ctx context.Context, t *models.Turf) error {
	err := m.mutate(ctx, "delete_turf", t.ID, func() error {
		return m.adminAPI.DeleteTurf(ctx, t.ID)
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	for i := range m.turfs {
		if m.turfs[i].ID == t.ID {
			m.turfs = append(m.turfs[:i], m.turfs[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	m.publish(events.EventTurfDeleted, t)
	return nil
}

// SetAvailability toggles whether customers can book the turf.
func (m *TurfManager) SetAvailability(ctx context.Context, id int64, available bool) error {
	err := m.mutate(ctx, "set_availability", id, func() error {
		return m.adminAPI.SetTurfAvailability(ctx, id, available)
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	for i := range m.turfs {
		if m.turfs[i].ID == id {
			v := available
			m.turfs[i].Availability = &v
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *TurfManager) mutate(ctx context.Context, action string, id int64, fn func() error) error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	m.busy = true
	m.mu.Unlock()

	err := fn()
	metrics.IncAction(action, err)

	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()

	if err != nil {
		if m.logger != nil {
			m.logger.Warn().Err(err).Int64("turf_id", id).Str("action", action).Msg("turf mutation failed")
		}
		return fmt.Errorf("%s: %w", action, err)
	}
	if m.cache != nil {
		m.cache.InvalidateTurf(ctx, id)
	}
	return nil
}

func (m *TurfManager) publish(eventType string, t *models.Turf) {
	if m.events == nil || t == nil {
		return
	}
	payload := events.TurfEventPayload{TurfID: t.ID, TurfName: t.Name}
	if err := m.events.PublishJSON(eventType, payload); err != nil && m.logger != nil {
		m.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish turf event")
	}
}

func normalize(t *models.Turf) *models.Turf {
	c := *t
	c.Name = strings.TrimSpace(c.Name)
	c.Location = strings.TrimSpace(c.Location)
	c.ContactNumber = strings.TrimSpace(c.ContactNumber)
	c.Description = strings.TrimSpace(c.Description)
	return &c
}
