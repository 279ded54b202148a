package timer

import (
	"context"
	"sync"
	"time"

	"researchhub/pkg/metrics"

	"go.uber.org/zap"
)

const defaultMaxPending = 32

type entry struct {
	mu      sync.Mutex
	session *Session
	pending []Alert
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager owns one Session per user and ticks running sessions from a
// goroutine each. Fired alerts are buffered until the next Status call.
type Manager struct {
	mu      sync.Mutex
	entries map[int64]*entry

	tick       time.Duration
	maxPending int
	newRand    func() RandSource
	logger     *zap.Logger
}

type Option func(*Manager)

// WithTick overrides the one-second tick period.
func WithTick(d time.Duration) Option {
	return func(m *Manager) { m.tick = d }
}

func WithRandSource(fn func() RandSource) Option {
	return func(m *Manager) { m.newRand = fn }
}

func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		entries:    make(map[int64]*entry),
		tick:       time.Second,
		maxPending: defaultMaxPending,
		newRand:    func() RandSource { return globalRand{} },
		logger:     logger.Named("timer"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a new session for the user, replacing any running one.
func (m *Manager) Start(userID int64, cfg Config) (Snapshot, error) {
	session, err := NewSession(cfg, m.newRand())
	if err != nil {
		return Snapshot{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{session: session, cancel: cancel, done: make(chan struct{})}
	session.Start()
	go m.run(ctx, userID, e)

	// Whoever replaces an entry halts it.
	m.mu.Lock()
	prev := m.entries[userID]
	m.entries[userID] = e
	m.mu.Unlock()
	if prev != nil {
		prev.halt()
	}

	m.logger.Info("Timer started",
		zap.Int64("user_id", userID),
		zap.Int("break_interval", session.cfg.BreakInterval),
		zap.Int("focus_min", session.cfg.FocusMin),
		zap.Int("focus_max", session.cfg.FocusMax),
	)
	return e.snapshot(false), nil
}

// Stop freezes the user's session; a stopped session keeps its elapsed time.
func (m *Manager) Stop(userID int64) (Snapshot, bool) {
	m.mu.Lock()
	e := m.entries[userID]
	m.mu.Unlock()
	if e == nil {
		return Snapshot{}, false
	}
	e.halt()
	m.logger.Info("Timer stopped", zap.Int64("user_id", userID))
	return e.snapshot(false), true
}

// Status returns the session state and drains buffered alerts.
func (m *Manager) Status(userID int64) (Snapshot, bool) {
	m.mu.Lock()
	e := m.entries[userID]
	m.mu.Unlock()
	if e == nil {
		return Snapshot{}, false
	}
	return e.snapshot(true), true
}

// Close stops every running session.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.halt()
	}
}

func (m *Manager) run(ctx context.Context, userID int64, e *entry) {
	defer close(e.done)
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			alerts := e.session.Tick()
			for _, a := range alerts {
				metrics.IncrementTimerAlert(string(a.Kind))
				m.logger.Debug("Timer alert", zap.Int64("user_id", userID), zap.String("kind", string(a.Kind)), zap.Int("at", a.At))
			}
			e.pending = append(e.pending, alerts...)
			if over := len(e.pending) - m.maxPending; over > 0 {
				e.pending = e.pending[over:]
			}
			e.mu.Unlock()
		}
	}
}

func (e *entry) halt() {
	e.cancel()
	<-e.done
	e.mu.Lock()
	e.session.Stop()
	e.mu.Unlock()
}

func (e *entry) snapshot(drain bool) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session.Snapshot()
	s.Alerts = append([]Alert{}, e.pending...)
	if drain {
		e.pending = nil
	}
	return s
}
