package session

import (
	"sync"
	"time"
)

// Registry tracks one Monitor per live session token. Watch arms a monitor
// when a session is issued, Touch feeds it activity, and Remove tears it down
// on logout or rotation. When a session goes idle past the logout threshold
// its monitor is dropped and the expiry callback runs with the token.
type Registry struct {
	warningAfter time.Duration
	logoutAfter  time.Duration

	onWarning func(token string)
	onExpire  func(token string)

	mu       sync.Mutex
	monitors map[string]*Monitor
}

// NewRegistry creates a registry. Callbacks may be nil; zero durations fall
// back to the monitor defaults.
func NewRegistry(warningAfter, logoutAfter time.Duration, onWarning, onExpire func(token string)) *Registry {
	return &Registry{
		warningAfter: warningAfter,
		logoutAfter:  logoutAfter,
		onWarning:    onWarning,
		onExpire:     onExpire,
		monitors:     make(map[string]*Monitor),
	}
}

// Watch starts idle tracking for a session token. Watching an already-tracked
// token is a no-op.
func (r *Registry) Watch(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.monitors[token]; ok {
		return
	}

	m := NewMonitor(Config{
		WarningAfter: r.warningAfter,
		LogoutAfter:  r.logoutAfter,
		OnWarning: func() {
			if r.onWarning != nil {
				r.onWarning(token)
			}
		},
		OnLogout: func() {
			r.expire(token)
		},
	})
	r.monitors[token] = m
	m.Start()
}

// Touch records activity for a token. Unknown tokens are ignored.
func (r *Registry) Touch(token string) {
	r.mu.Lock()
	m := r.monitors[token]
	r.mu.Unlock()
	if m != nil {
		m.Touch()
	}
}

// Remove stops tracking a token without firing the expiry callback.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	m := r.monitors[token]
	delete(r.monitors, token)
	r.mu.Unlock()
	if m != nil {
		m.Stop()
	}
}

// Len reports how many sessions are being tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.monitors)
}

// expire runs on the monitor's logout transition.
func (r *Registry) expire(token string) {
	r.mu.Lock()
	delete(r.monitors, token)
	r.mu.Unlock()
	if r.onExpire != nil {
		r.onExpire(token)
	}
}
