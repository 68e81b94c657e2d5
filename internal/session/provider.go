package session

import (
	"errors"
	"sync"

	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/models"

	"github.com/rs/zerolog"
)

var ErrNoSession = errors.New("no active session")

// Listener receives the new session after each change; nil means logged out.
type Listener func(s *models.Session)

// Provider is the single owner of the process session. Readers get copies.
type Provider struct {
	mu        sync.RWMutex
	current   *models.Session
	listeners []Listener
	events    domain.EventPublisher
	logger    *zerolog.Logger
}

func NewProvider(publisher domain.EventPublisher, logger *zerolog.Logger) *Provider {
	return &Provider{events: publisher, logger: logger}
}

// Current returns a copy of the session or nil.
func (p *Provider) Current() *models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.current)
}

func (p *Provider) Subscribe(fn Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Login replaces any existing session.
func (p *Provider) Login(s models.Session) {
	if s.Role == "" {
		s.Role = models.RoleUser
	}
	p.set(&s)

	if p.logger != nil {
		p.logger.Info().Int64("user_id", s.UserID).Str("role", string(s.Role)).Msg("session started")
	}
	p.publish(events.EventSessionStarted, &s)
}

func (p *Provider) Logout() {
	p.mu.Lock()
	prev := p.current
	if prev == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	listeners, snapshot := p.listenersLocked()
	p.mu.Unlock()

	notify(listeners, snapshot)
	if p.logger != nil {
		p.logger.Info().Int64("user_id", prev.UserID).Msg("session ended")
	}
	p.publish(events.EventSessionEnded, prev)
}

// UpdateUser applies fn to the live session.
func (p *Provider) UpdateUser(fn func(s *models.Session)) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return ErrNoSession
	}
	next := clone(p.current)
	fn(next)
	p.current = next
	listeners, snapshot := p.listenersLocked()
	p.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

func (p *Provider) set(s *models.Session) {
	p.mu.Lock()
	p.current = clone(s)
	listeners, snapshot := p.listenersLocked()
	p.mu.Unlock()

	notify(listeners, snapshot)
}

func (p *Provider) listenersLocked() ([]Listener, *models.Session) {
	return append([]Listener(nil), p.listeners...), clone(p.current)
}

func (p *Provider) publish(eventType string, s *models.Session) {
	if p.events == nil {
		return
	}
	payload := events.SessionEventPayload{UserID: s.UserID, Role: string(s.Role), Phone: s.Phone}
	if err := p.events.PublishJSON(eventType, payload); err != nil && p.logger != nil {
		p.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish session event")
	}
}

func notify(listeners []Listener, s *models.Session) {
	for _, fn := range listeners {
		fn(clone(s))
	}
}

func clone(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
