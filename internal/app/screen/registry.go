package screen

import (
	"sync"
	"time"
)

// Registry keeps one value per browser session, e.g. the collections and detail panels
// of a screen. An empty key gets a fresh value that is not kept.
type Registry[V any] struct {
	New func() *V

	mu        sync.Mutex
	m         map[string]*kept[V]
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type kept[V any] struct {
	value *V
	used  time.Time
}

func NewRegistry[V any](newFn func() *V) *Registry[V] {
	return &Registry[V]{New: newFn, m: make(map[string]*kept[V])}
}

// SetIdleTTL makes the registry forget values nobody asked for within d. Sessions that
// end without a logout, through storage expiry or a lost cookie, are released this way.
// Zero keeps values until Drop.
func (r *Registry[V]) SetIdleTTL(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idle = d
}

func (r *Registry[V]) For(key string) *V {
	if key == "" {
		return r.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[string]*kept[V])
	}
	now := r.clock()
	r.sweep(now)
	e, ok := r.m[key]
	if !ok {
		e = &kept[V]{value: r.New()}
		r.m[key] = e
	}
	e.used = now
	return e.value
}

// sweep evicts idle values, at most once per quarter of the idle TTL.
func (r *Registry[V]) sweep(now time.Time) {
	if r.idle <= 0 || now.Sub(r.lastSweep) < r.idle/4 {
		return
	}
	r.lastSweep = now
	for k, e := range r.m {
		if now.Sub(e.used) > r.idle {
			delete(r.m, k)
		}
	}
}

func (r *Registry[V]) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Drop forgets everything kept for key, typically at logout.
func (r *Registry[V]) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
