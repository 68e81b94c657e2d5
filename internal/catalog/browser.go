package catalog

import (
	"context"
	"strings"
	"sync"

	"turfbook/internal/api"
	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/notify"

	"github.com/rs/zerolog"
)

// Browser holds the turf list screen state.
type Browser struct {
	mu      sync.RWMutex
	turfs   []models.Turf
	query   string
	loading bool

	api      domain.TurfAPI
	cache    domain.TurfCache
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewBrowser(turfAPI domain.TurfAPI, cache domain.TurfCache, notifier domain.Notifier, logger *zerolog.Logger) *Browser {
	return &Browser{api: turfAPI, cache: cache, notifier: notifier, logger: logger}
}

// Load fetches the catalog; cached responses are accepted.
func (b *Browser) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	turfs, err := b.api.ListTurfs(ctx)
	metrics.IncAction("load_turfs", err)

	b.mu.Lock()
	b.loading = false
	if err == nil {
		b.turfs = turfs
	}
	b.mu.Unlock()

	if err != nil {
		if b.logger != nil {
			b.logger.Warn().Err(err).Msg("failed to load turfs")
		}
		b.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load turfs")))
		return err
	}
	return nil
}

// Refresh drops the cached catalog before loading.
func (b *Browser) Refresh(ctx context.Context) error {
	if b.cache != nil {
		b.cache.InvalidateTurf(ctx, 0)
	}
	return b.Load(ctx)
}

func (b *Browser) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Search sets the free-text filter.
func (b *Browser) Search(q string) []models.Turf {
	b.mu.Lock()
	b.query = strings.TrimSpace(q)
	b.mu.Unlock()
	return b.Visible()
}

func (b *Browser) Query() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.query
}

// Visible returns the turfs matching the current query in backend order.
func (b *Browser) Visible() []models.Turf {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Filter(b.turfs, b.query)
}

// Detail fetches one turf.
func (b *Browser) Detail(ctx context.Context, id int64) (*models.Turf, error) {
	turf, err := b.api.GetTurf(ctx, id)
	metrics.IncAction("turf_detail", err)
	if err != nil {
		b.notify(ctx, notify.Error("Error", api.UserMessage(err, "Failed to load turf details")))
		return nil, err
	}
	return turf, nil
}

// Filter matches q case-insensitively against name and location.
func Filter(turfs []models.Turf, q string) []models.Turf {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Turf, 0, len(turfs))
	for _, t := range turfs {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Location), q) {
			out = append(out, t)
		}
	}
	return out
}

func (b *Browser) notify(ctx context.Context, n models.Notification) {
	if b.notifier != nil {
		b.notifier.Notify(ctx, n)
	}
}
