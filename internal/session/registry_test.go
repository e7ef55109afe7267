package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryExpiresIdleSessions(t *testing.T) {
	var mu sync.Mutex
	expired := []string{}

	r := NewRegistry(20*time.Millisecond, 40*time.Millisecond, nil, func(token string) {
		mu.Lock()
		expired = append(expired, token)
		mu.Unlock()
	})

	r.Watch("tok-a")
	r.Watch("tok-b")
	assert.Equal(t, 2, r.Len())

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, expired)
	mu.Unlock()
	assert.Equal(t, 0, r.Len(), "expired sessions leave the registry")
}

func TestRegistryTouchKeepsSessionAlive(t *testing.T) {
	var expirations atomic.Int32

	r := NewRegistry(40*time.Millisecond, 60*time.Millisecond, nil, func(string) {
		expirations.Add(1)
	})

	r.Watch("tok")
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		r.Touch("tok")
	}
	assert.Equal(t, int32(0), expirations.Load())
	assert.Equal(t, 1, r.Len())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), expirations.Load())
}

func TestRegistryRemoveSkipsExpiry(t *testing.T) {
	var expirations atomic.Int32

	r := NewRegistry(10*time.Millisecond, 20*time.Millisecond, nil, func(string) {
		expirations.Add(1)
	})

	r.Watch("tok")
	r.Remove("tok")
	assert.Equal(t, 0, r.Len())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), expirations.Load(), "removed sessions must not expire")

	// unknown tokens are harmless
	r.Touch("gone")
	r.Remove("gone")
}

func TestRegistryWarningCallback(t *testing.T) {
	var warned atomic.Value

	r := NewRegistry(20*time.Millisecond, time.Hour, func(token string) {
		warned.CompareAndSwap(nil, token)
	}, nil)

	r.Watch("tok")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, "tok", warned.Load())
	assert.Equal(t, 1, r.Len(), "a warned session is still tracked")
}

func TestRegistryWatchIsIdempotent(t *testing.T) {
	r := NewRegistry(time.Hour, 2*time.Hour, nil, nil)
	r.Watch("tok")
	r.Watch("tok")
	assert.Equal(t, 1, r.Len())
}
