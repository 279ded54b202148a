package timer

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"researchhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func tickUntil(s *Session, second int) []Alert {
	var fired []Alert
	for s.elapsed < second {
		fired = append(fired, s.Tick()...)
	}
	return fired
}

func alertsOfKind(alerts []Alert, kind AlertKind) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func TestBreakFiresAtInterval(t *testing.T) {
	s, err := NewSession(Config{BreakInterval: 40}, fixedRand(0.999))
	require.NoError(t, err)
	s.Start()

	fired := alertsOfKind(tickUntil(s, 2399), AlertBreak)
	assert.Empty(t, fired)

	fired = alertsOfKind(s.Tick(), AlertBreak)
	require.Len(t, fired, 1)
	assert.Equal(t, 2400, fired[0].At)
	assert.Equal(t, 2400, s.lastBreak)

	fired = alertsOfKind(tickUntil(s, 4800), AlertBreak)
	require.Len(t, fired, 1)
	assert.Equal(t, 4800, fired[0].At)
}

func TestFirstFocusDrawBounds(t *testing.T) {
	for _, r := range []float64{0, 0.5, 0.999999} {
		s, err := NewSession(Config{FocusMin: 5, FocusMax: 10}, fixedRand(r))
		require.NoError(t, err)
		s.Start()
		assert.GreaterOrEqual(t, s.nextFocus, 300)
		assert.LessOrEqual(t, s.nextFocus, 600)
	}

	low, _ := NewSession(Config{FocusMin: 5, FocusMax: 10}, fixedRand(0))
	low.Start()
	assert.Equal(t, 300, low.nextFocus)

	high, _ := NewSession(Config{FocusMin: 5, FocusMax: 10}, fixedRand(0.999999))
	high.Start()
	assert.Equal(t, 600, high.nextFocus)
}

func TestFocusRedrawsAfterFiring(t *testing.T) {
	s, err := NewSession(Config{FocusMin: 1, FocusMax: 1}, fixedRand(0))
	require.NoError(t, err)
	s.Start()

	fired := alertsOfKind(tickUntil(s, 180), AlertFocus)
	require.Len(t, fired, 3)
	assert.Equal(t, []int{60, 120, 180}, []int{fired[0].At, fired[1].At, fired[2].At})
	assert.Equal(t, 240, s.nextFocus)
}

func TestStopFreezesAndStartResets(t *testing.T) {
	s, err := NewSession(DefaultConfig(), fixedRand(0.5))
	require.NoError(t, err)
	s.Start()
	tickUntil(s, 10)
	s.Stop()

	assert.Nil(t, s.Tick())
	assert.Equal(t, 10, s.Snapshot().ElapsedSeconds)
	assert.False(t, s.Running())

	s.Start()
	assert.Equal(t, 0, s.Snapshot().ElapsedSeconds)
	assert.Equal(t, 0, s.Snapshot().LastBreak)
}

func TestConfigValidation(t *testing.T) {
	cases := []Config{
		{BreakInterval: 9},
		{BreakInterval: 121},
		{FocusMin: 31},
		{FocusMin: 12, FocusMax: 8},
		{FocusMax: 31},
	}
	for _, cfg := range cases {
		_, err := NewSession(cfg, nil)
		require.Error(t, err, "%+v", cfg)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}

	s, err := NewSession(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), s.Snapshot().Config)
}

func TestManagerTicksAndStops(t *testing.T) {
	m := NewManager(zap.NewNop(), WithTick(time.Millisecond), WithRandSource(func() RandSource { return fixedRand(0) }))
	defer m.Close()

	_, err := m.Start(7, Config{FocusMin: 1, FocusMax: 1})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, ok := m.Status(7)
		return ok && s.ElapsedSeconds >= 5
	}, 2*time.Second, 5*time.Millisecond)

	stopped, ok := m.Stop(7)
	require.True(t, ok)
	assert.False(t, stopped.Running)

	time.Sleep(20 * time.Millisecond)
	after, _ := m.Status(7)
	assert.Equal(t, stopped.ElapsedSeconds, after.ElapsedSeconds)
}

func TestManagerBuffersAlertsUntilPolled(t *testing.T) {
	m := NewManager(zap.NewNop(), WithTick(time.Millisecond), WithRandSource(func() RandSource { return fixedRand(0) }))
	defer m.Close()

	_, err := m.Start(1, Config{FocusMin: 1, FocusMax: 1})
	require.NoError(t, err)

	var got []Alert
	require.Eventually(t, func() bool {
		s, _ := m.Status(1)
		got = append(got, s.Alerts...)
		return len(got) > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, AlertFocus, got[0].Kind)

	m.Stop(1)
	m.Status(1)
	drained, _ := m.Status(1)
	assert.Empty(t, drained.Alerts)
}

func TestManagerUnknownUser(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, ok := m.Status(99)
	assert.False(t, ok)
	_, ok = m.Stop(99)
	assert.False(t, ok)
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, err := m.Start(1, Config{BreakInterval: 500})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestManagerConcurrentStartLeavesOneTicker(t *testing.T) {
	before := runtime.NumGoroutine()
	m := NewManager(zap.NewNop(), WithTick(time.Hour))

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.Start(1, DefaultConfig())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	}

	s, ok := m.Status(1)
	require.True(t, ok)
	assert.True(t, s.Running)

	m.Close()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}
