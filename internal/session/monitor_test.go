package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorWarningThenLogout(t *testing.T) {
	var warnings, logouts atomic.Int32
	var order atomic.Value

	m := NewMonitor(Config{
		WarningAfter: 40 * time.Millisecond,
		LogoutAfter:  80 * time.Millisecond,
		Throttle:     5 * time.Millisecond,
		OnWarning: func() {
			warnings.Add(1)
			order.CompareAndSwap(nil, "warning")
		},
		OnLogout: func() {
			logouts.Add(1)
			order.CompareAndSwap(nil, "logout")
		},
	})
	m.Start()
	defer m.Stop()

	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(1), warnings.Load())
	assert.Equal(t, int32(1), logouts.Load())
	assert.Equal(t, "warning", order.Load(), "warning must precede logout")
	assert.Equal(t, StateLoggedOut, m.State())

	// terminal: no further activity revives it
	m.Touch()
	assert.Equal(t, StateLoggedOut, m.State())
}

func TestMonitorTouchResetsTimers(t *testing.T) {
	var warnings, logouts atomic.Int32

	m := NewMonitor(Config{
		WarningAfter: 60 * time.Millisecond,
		LogoutAfter:  100 * time.Millisecond,
		Throttle:     time.Millisecond,
		OnWarning:    func() { warnings.Add(1) },
		OnLogout:     func() { logouts.Add(1) },
	})
	m.Start()
	defer m.Stop()

	// keep touching just before the warning threshold
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		m.Touch()
	}
	assert.Equal(t, int32(0), warnings.Load())
	assert.Equal(t, int32(0), logouts.Load())
	assert.Equal(t, StateActive, m.State())

	// then go idle for a full period from the last touch
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), warnings.Load())
	assert.Equal(t, int32(1), logouts.Load())
}

func TestMonitorTouchClearsWarning(t *testing.T) {
	var warnings atomic.Int32

	m := NewMonitor(Config{
		WarningAfter: 30 * time.Millisecond,
		LogoutAfter:  500 * time.Millisecond,
		Throttle:     time.Millisecond,
		OnWarning:    func() { warnings.Add(1) },
	})
	m.Start()
	defer m.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, StateWarned, m.State())
	require.Equal(t, int32(1), warnings.Load())

	// activity after the warning returns to Active and re-arms it
	m.Touch()
	assert.Equal(t, StateActive, m.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(2), warnings.Load(), "warning fires again after a new idle episode")
}

func TestMonitorThrottleCollapsesBursts(t *testing.T) {
	m := NewMonitor(Config{
		WarningAfter: time.Hour,
		LogoutAfter:  2 * time.Hour,
		Throttle:     50 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	m.mu.Lock()
	first := m.lastTouch
	m.mu.Unlock()

	// a burst inside the throttle window must not move lastTouch
	for i := 0; i < 10; i++ {
		m.Touch()
	}
	m.mu.Lock()
	assert.Equal(t, first, m.lastTouch)
	m.mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	m.Touch()
	m.mu.Lock()
	assert.True(t, m.lastTouch.After(first))
	m.mu.Unlock()
}

func TestMonitorTouchAtDeadlineSuppressesStaleLogout(t *testing.T) {
	// A logout timer that expires concurrently with an accepted Touch is past
	// Timer.Stop and waits on the mutex; it must recognize that its timer pair
	// was replaced and do nothing.
	for i := 0; i < 500; i++ {
		m := NewMonitor(Config{
			WarningAfter: 2 * time.Millisecond,
			LogoutAfter:  3 * time.Millisecond,
			Throttle:     time.Microsecond,
		})
		m.Start()

		// land the touch right on the logout deadline
		time.Sleep(3 * time.Millisecond)
		m.Touch()

		m.mu.Lock()
		accepted := m.state == StateActive
		m.mu.Unlock()
		if !accepted {
			// logout won outright before the touch; that ordering is fine
			m.Stop()
			continue
		}

		time.Sleep(time.Millisecond)
		assert.NotEqual(t, StateLoggedOut, m.State(),
			"logout fired after an accepted activity reset (iteration %d)", i)
		m.Stop()
	}
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	var fired atomic.Int32

	m := NewMonitor(Config{
		WarningAfter: 20 * time.Millisecond,
		LogoutAfter:  40 * time.Millisecond,
		OnWarning:    func() { fired.Add(1) },
		OnLogout:     func() { fired.Add(1) },
	})
	m.Start()
	m.Stop()
	m.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "no timer may fire after teardown")

	// stopped monitors ignore activity
	m.Touch()
	assert.Equal(t, StateLoggedOut, m.State())
}

func TestMonitorInertBeforeStart(t *testing.T) {
	var fired atomic.Int32
	m := NewMonitor(Config{
		WarningAfter: 10 * time.Millisecond,
		LogoutAfter:  20 * time.Millisecond,
		OnWarning:    func() { fired.Add(1) },
		OnLogout:     func() { fired.Add(1) },
	})

	m.Touch()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.Equal(t, StateActive, m.State())
}
