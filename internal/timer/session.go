// Package timer implements the study-session timer: elapsed seconds while
// running, a break alert every BreakInterval minutes and a focus alert at a
// random offset within [FocusMin, FocusMax] minutes.
package timer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"researchhub/pkg/apperr"
)

const (
	DefaultBreakInterval = 40
	DefaultFocusMin      = 5
	DefaultFocusMax      = 10

	minBreakInterval = 10
	maxBreakInterval = 120
	minFocus         = 1
	maxFocus         = 30
)

// Config values are minutes.
type Config struct {
	BreakInterval int `json:"break_interval"`
	FocusMin      int `json:"focus_min"`
	FocusMax      int `json:"focus_max"`
}

func DefaultConfig() Config {
	return Config{
		BreakInterval: DefaultBreakInterval,
		FocusMin:      DefaultFocusMin,
		FocusMax:      DefaultFocusMax,
	}
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.BreakInterval == 0 {
		c.BreakInterval = DefaultBreakInterval
	}
	if c.FocusMin == 0 {
		c.FocusMin = DefaultFocusMin
	}
	if c.FocusMax == 0 {
		c.FocusMax = DefaultFocusMax
	}
	return c
}

func (c Config) Validate() error {
	if c.BreakInterval < minBreakInterval || c.BreakInterval > maxBreakInterval {
		return apperr.Validation("break interval must be between %d and %d minutes", minBreakInterval, maxBreakInterval)
	}
	if c.FocusMin < minFocus || c.FocusMin > maxFocus || c.FocusMax < minFocus || c.FocusMax > maxFocus {
		return apperr.Validation("focus interval must be between %d and %d minutes", minFocus, maxFocus)
	}
	if c.FocusMin > c.FocusMax {
		return apperr.Validation("focus minimum cannot exceed focus maximum")
	}
	return nil
}

type AlertKind string

const (
	AlertBreak AlertKind = "break"
	AlertFocus AlertKind = "focus"
)

type Alert struct {
	Kind    AlertKind `json:"kind"`
	At      int       `json:"at"`
	Message string    `json:"message"`
}

// RandSource yields floats in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Session is one Start..Stop run. It is not safe for concurrent use.
type Session struct {
	cfg  Config
	rand RandSource

	running   bool
	elapsed   int
	lastBreak int
	nextFocus int
}

func NewSession(cfg Config, src RandSource) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = globalRand{}
	}
	return &Session{cfg: cfg, rand: src}, nil
}

// Start zeroes the counters and draws the first focus time.
func (s *Session) Start() {
	s.running = true
	s.elapsed = 0
	s.lastBreak = 0
	s.nextFocus = s.drawFocus()
}

// Stop freezes the elapsed counter.
func (s *Session) Stop() {
	s.running = false
}

// Tick advances one second and returns the alerts that fired on it.
func (s *Session) Tick() []Alert {
	if !s.running {
		return nil
	}
	s.elapsed++

	var alerts []Alert
	if s.elapsed-s.lastBreak >= s.cfg.BreakInterval*60 {
		alerts = append(alerts, Alert{
			Kind:    AlertBreak,
			At:      s.elapsed,
			Message: breakMessage(s.cfg.BreakInterval),
		})
		s.lastBreak = s.elapsed
	}
	if s.elapsed >= s.nextFocus {
		alerts = append(alerts, Alert{
			Kind:    AlertFocus,
			At:      s.elapsed,
			Message: "Stay focused! Take a moment to concentrate on your task.",
		})
		s.nextFocus = s.drawFocus()
	}
	return alerts
}

// drawFocus returns elapsed + a uniform whole number of seconds in
// [FocusMin*60, FocusMax*60].
func (s *Session) drawFocus() int {
	lo, hi := s.cfg.FocusMin*60, s.cfg.FocusMax*60
	return s.elapsed + lo + int(math.Floor(s.rand.Float64()*float64(hi-lo+1)))
}

func breakMessage(minutes int) string {
	return fmt.Sprintf("Time for a break! You've been working for %d minutes.", minutes)
}

type Snapshot struct {
	Running        bool    `json:"running"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	LastBreak      int     `json:"last_break"`
	NextFocus      int     `json:"next_focus"`
	Config         Config  `json:"config"`
	Alerts         []Alert `json:"alerts"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Running:        s.running,
		ElapsedSeconds: s.elapsed,
		LastBreak:      s.lastBreak,
		NextFocus:      s.nextFocus,
		Config:         s.cfg,
	}
}

func (s *Session) Running() bool { return s.running }
