package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-engine/internal/engine"
	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options tune every session a Manager creates.
type Options struct {
	BotDelay time.Duration
	BotMark  game.PlayerMark
	// TTL is how long a session may stay untouched before the sweeper drops it.
	// Zero keeps sessions forever.
	TTL           time.Duration
	SweepInterval time.Duration
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	calculator engine.MoveCalculator
	opts       Options
	publisher  events.Publisher
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewManager(calculator engine.MoveCalculator, opts Options, publisher events.Publisher, metrics *telemetry.Metrics) *Manager {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.BotMark == game.None {
		opts.BotMark = game.PlayerO
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		calculator: calculator,
		opts:       opts,
		publisher:  publisher,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Create starts a new session in mode. When the bot plays X its first move is scheduled immediately.
func (m *Manager) Create(ctx context.Context, mode game.Mode) (*Session, error) {
	if _, err := mode.MarshalText(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	ctx, span := tracer.Start(ctx, "manager.Create", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("game.mode", mode.String()),
	))
	defer span.End()

	eng := engine.New(m.calculator, engine.WithBotMark(m.opts.BotMark), engine.WithMode(mode))
	s := newSession(id, eng, m.opts.BotDelay, m.publisher, m.metrics, m.now)

	s.mu.Lock()
	s.restartLocked(ctx)
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	payload := events.SessionCreatedPayload{SessionID: id, Mode: mode.String()}
	if err := m.publisher.Publish(ctx, events.TypeSessionCreated, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish session_created event", "session.id", id, "error", err)
	}
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is cancelled, then closes the rest.
func (m *Manager) Run(ctx context.Context) {
	interval := m.opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "session sweeper started", "interval", interval, "ttl", m.opts.TTL)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep drops sessions idle for longer than the TTL with no viewer attached
// and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.opts.TTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.opts.TTL)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) && s.Viewers() == 0 {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		slog.InfoContext(ctx, "session expired", "session.id", s.ID)
		if err := m.publisher.Publish(ctx, events.TypeSessionExpired, events.SessionExpiredPayload{SessionID: s.ID}); err != nil {
			slog.ErrorContext(ctx, "failed to publish session_expired event", "session.id", s.ID, "error", err)
		}
	}
	return len(expired)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
