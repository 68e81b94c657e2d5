package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"turfbook/internal/models"

	"github.com/rs/zerolog"
)

const defaultHistory = 50

// Center collects transient user-visible notifications and fans them out
// to listeners (the terminal UI shows them as toasts).
type Center struct {
	mu        sync.RWMutex
	history   []models.Notification
	limit     int
	listeners []func(models.Notification)
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewCenter(logger *zerolog.Logger) *Center {
	return &Center{limit: defaultHistory, logger: logger, now: time.Now}
}

// Listen registers fn for every future notification.
func (c *Center) Listen(fn func(models.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Center) Notify(_ context.Context, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}

	c.mu.Lock()
	c.history = append(c.history, n)
	if len(c.history) > c.limit {
		c.history = c.history[len(c.history)-c.limit:]
	}
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if c.logger != nil {
		ev := c.logger.Info()
		if n.Kind == models.NotificationError {
			ev = c.logger.Warn()
		}
		ev.Str("kind", string(n.Kind)).Str("title", n.Title).Msg(n.Text)
	}

	for _, fn := range listeners {
		fn(n)
	}
}

// Recent returns up to the last limit notifications, oldest first.
func (c *Center) Recent() []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Notification(nil), c.history...)
}

// Last returns the latest notification, if any.
func (c *Center) Last() (models.Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.history) == 0 {
		return models.Notification{}, false
	}
	return c.history[len(c.history)-1], true
}

func Success(title, text string) models.Notification {
	return models.Notification{Kind: models.NotificationSuccess, Title: title, Text: text}
}

func Error(title, text string) models.Notification {
	return models.Notification{Kind: models.NotificationError, Title: title, Text: text}
}

func Info(title, text string) models.Notification {
	return models.Notification{Kind: models.NotificationInfo, Title: title, Text: text}
}
