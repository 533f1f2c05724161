// Package timecache provides a cached, second-granular view of the system
// clock.
//
// The cached value is the number of seconds since the Unix Epoch, stored as
// an int64 and accessed atomically. Seconds are all a Rogue seed ever needed,
// so the cache is refreshed once per second by default.
package timecache

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the refresh interval of the global TimeCache.
const DefaultInterval = time.Second

var global *TimeCache

func init() {
	global = New()
	go global.Run(DefaultInterval)
}

// A TimeCache caches the current system time in seconds.
type TimeCache struct {
	// unix holds the cached seconds since the Epoch.
	// Must be accessed atomically.
	unix int64

	closed  chan struct{}
	running chan struct{}
	m       sync.Mutex
}

// New returns a new TimeCache holding the current time.
// Run must be called for the cached time to advance.
func New() *TimeCache {
	return &TimeCache{
		unix:    time.Now().Unix(),
		closed:  make(chan struct{}),
		running: make(chan struct{}),
	}
}

// Run refreshes the cached time once every interval and blocks until Stop is
// called. It panics if called more than once.
func (t *TimeCache) Run(interval time.Duration) {
	t.m.Lock()
	select {
	case <-t.running:
		t.m.Unlock()
		panic("timecache: Run called multiple times")
	default:
	}
	close(t.running)
	t.m.Unlock()

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-t.closed:
			return
		case now := <-tick.C:
			atomic.StoreInt64(&t.unix, now.Unix())
		}
	}
}

// Stop stops refreshing the TimeCache. Calling Stop again is a no-op.
func (t *TimeCache) Stop() {
	t.m.Lock()
	defer t.m.Unlock()

	select {
	case <-t.closed:
		return
	default:
	}
	close(t.closed)
}

// NowUnix returns the cached time as seconds since the Unix Epoch.
func (t *TimeCache) NowUnix() int64 {
	return atomic.LoadInt64(&t.unix)
}

// Now returns the cached time.
func (t *TimeCache) Now() time.Time {
	return time.Unix(t.NowUnix(), 0)
}

// NowUnix calls NowUnix on the global TimeCache.
func NowUnix() int64 {
	return global.NowUnix()
}

// Now calls Now on the global TimeCache.
func Now() time.Time {
	return global.Now()
}
