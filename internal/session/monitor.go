// Package session provides an idle-session watchdog: after a configurable
// quiet period it emits a warning, then forces a logout. One monitor instance
// covers one authenticated session; after logout it is spent and a fresh
// instance must be created on the next login.
package session

import (
	"sync"
	"time"
)

// State of a monitor instance.
type State int

const (
	StateActive State = iota
	StateWarned
	StateLoggedOut
	stateStopped
)

// Default thresholds.
const (
	DefaultWarningAfter = 28 * time.Minute
	DefaultLogoutAfter  = 30 * time.Minute
	DefaultThrottle     = time.Second
)

// Config controls monitor timing and callbacks.
type Config struct {
	// WarningAfter is the quiet period before OnWarning fires.
	WarningAfter time.Duration
	// LogoutAfter is the quiet period before OnLogout fires. Must exceed
	// WarningAfter for the warning to be observable.
	LogoutAfter time.Duration
	// Throttle collapses activity signals arriving within this window into a
	// single timer reset.
	Throttle time.Duration

	OnWarning func()
	OnLogout  func()
}

// Monitor is the two-stage inactivity timer state machine.
type Monitor struct {
	cfg Config

	mu           sync.Mutex
	state        State
	started      bool
	warningShown bool
	gen          uint64
	lastTouch    time.Time
	warningTimer *time.Timer
	logoutTimer  *time.Timer
}

// NewMonitor creates a monitor. Zero durations fall back to the defaults.
func NewMonitor(cfg Config) *Monitor {
	if cfg.WarningAfter <= 0 {
		cfg.WarningAfter = DefaultWarningAfter
	}
	if cfg.LogoutAfter <= 0 {
		cfg.LogoutAfter = DefaultLogoutAfter
	}
	if cfg.Throttle <= 0 {
		cfg.Throttle = DefaultThrottle
	}
	return &Monitor{cfg: cfg, state: StateActive}
}

// Start arms the warning and logout timers. Calling Start twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.state == stateStopped {
		return
	}
	m.started = true
	m.lastTouch = time.Now()
	m.armLocked()
}

// Touch records a qualifying activity signal. Signals within the throttle
// window of the last accepted one are dropped. An accepted touch cancels the
// current timer pair, arms a fresh pair and clears the warning flag. After
// logout the monitor is terminal and Touch does nothing.
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.state == StateLoggedOut || m.state == stateStopped {
		return
	}
	now := time.Now()
	if now.Sub(m.lastTouch) < m.cfg.Throttle {
		return
	}
	m.lastTouch = now
	m.warningShown = false
	m.state = StateActive
	m.armLocked()
}

// Stop tears the monitor down. It is idempotent and safe to call from any
// state; no callback fires after Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	m.state = stateStopped
}

// State returns the current machine state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateStopped {
		return StateLoggedOut
	}
	return m.state
}

// armLocked replaces the live timer pair. Each pair carries a generation;
// a callback from a replaced pair may already be past Timer.Stop and waiting
// on m.mu, so the fire path ignores any generation but the current one.
// Callers hold m.mu.
func (m *Monitor) armLocked() {
	m.cancelLocked()
	m.gen++
	gen := m.gen
	m.warningTimer = time.AfterFunc(m.cfg.WarningAfter, func() { m.fireWarning(gen) })
	m.logoutTimer = time.AfterFunc(m.cfg.LogoutAfter, func() { m.fireLogout(gen) })
}

// cancelLocked stops any pending timers. Callers hold m.mu.
func (m *Monitor) cancelLocked() {
	if m.warningTimer != nil {
		m.warningTimer.Stop()
		m.warningTimer = nil
	}
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
}

func (m *Monitor) fireWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateActive || m.warningShown {
		m.mu.Unlock()
		return
	}
	m.state = StateWarned
	m.warningShown = true
	cb := m.cfg.OnWarning
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (m *Monitor) fireLogout(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || (m.state != StateActive && m.state != StateWarned) {
		m.mu.Unlock()
		return
	}
	m.state = StateLoggedOut
	if m.warningTimer != nil {
		m.warningTimer.Stop()
		m.warningTimer = nil
	}
	m.logoutTimer = nil
	cb := m.cfg.OnLogout
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}
