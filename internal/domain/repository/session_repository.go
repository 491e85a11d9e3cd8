package repository

import (
	"context"
	"sync"
)

// SessionRepository stores flat string key/value pairs per session id, the way the
// browser kept them. Reads of absent keys return "" and no error.
type SessionRepository interface {
	Get(ctx context.Context, sid, key string) (string, error)
	GetAll(ctx context.Context, sid string) (map[string]string, error)
	Set(ctx context.Context, sid string, values map[string]string) error
	Delete(ctx context.Context, sid string, keys ...string) error
	Clear(ctx context.Context, sid string) error
}

type memorySessionRepository struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemorySessionRepository keeps sessions in process memory. Used by the memory
// driver and by tests.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{data: map[string]map[string]string{}}
}

func (r *memorySessionRepository) Get(ctx context.Context, sid, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[sid][key], nil
}

func (r *memorySessionRepository) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.data[sid]))
	for k, v := range r.data[sid] {
		out[k] = v
	}
	return out, nil
}

func (r *memorySessionRepository) Set(ctx context.Context, sid string, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.data[sid]
	if !ok {
		entry = map[string]string{}
		r.data[sid] = entry
	}
	for k, v := range values {
		entry[k] = v
	}
	return nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.data[sid], k)
	}
	return nil
}

func (r *memorySessionRepository) Clear(ctx context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, sid)
	return nil
}
