package screen

import (
	"context"
	"slices"
	"sync"
	"tecrank_admin/internal/common"
)

// Policy is how a screen reconciles its copy after a successful mutation.
type Policy int

const (
	// PolicySplice patches the loaded collection with what the server returned.
	PolicySplice Policy = iota
	// PolicyRefetch reloads the whole collection.
	PolicyRefetch
)

// Mutation is one create, update or delete.
type Mutation[T any] struct {
	Policy Policy
	// Do performs the call. For saves it returns the stored record, for deletes nil.
	Do func(ctx context.Context) (*T, error)
	// Removes is the id a successful delete drops from the collection under PolicySplice.
	Removes int
}

// Result is how a mutation ended. A failed mutation never touches the loaded items.
type Result struct {
	State       State
	Notice      string
	AuthExpired bool
	Err         error
}

func (r Result) OK() bool { return r.Err == nil }

// Collection is the in-memory copy of one backend collection held by a screen.
type Collection[T any] struct {
	id    func(T) int
	fetch func(ctx context.Context) ([]T, error)

	mu    sync.Mutex
	items []T
	state State
}

func NewCollection[T any](id func(T) int, fetch func(ctx context.Context) ([]T, error)) *Collection[T] {
	return &Collection[T]{id: id, fetch: fetch, state: StateLoading}
}

// Fetcher returns the collection's load as a Fetcher for Load.
func (c *Collection[T]) Fetcher() Fetcher {
	return func(ctx context.Context) error {
		items, err := c.fetch(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.state = StateError
			return err
		}
		c.items = items
		c.state = StateReady
		return nil
	}
}

// Refetch reloads the collection. On failure the loaded items are kept.
func (c *Collection[T]) Refetch(ctx context.Context) error {
	return c.Fetcher()(ctx)
}

// Items returns a copy of the loaded items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dismiss acknowledges a submit error notice.
func (c *Collection[T]) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitError {
		c.state = StateReady
	}
}

// Upsert replaces the item with the same id or appends it.
func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(item)
	if i := slices.IndexFunc(c.items, func(it T) bool { return c.id(it) == id }); i >= 0 {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
}

func (c *Collection[T]) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(it T) bool { return c.id(it) == id })
}

// Apply runs m and reconciles the collection according to its policy.
func (c *Collection[T]) Apply(ctx context.Context, m Mutation[T]) Result {
	c.mu.Lock()
	c.state = StateSubmitting
	c.mu.Unlock()

	saved, err := m.Do(ctx)
	if err != nil {
		return c.fail(err)
	}

	switch m.Policy {
	case PolicyRefetch:
		if err := c.Refetch(ctx); err != nil {
			return c.fail(err)
		}
	default:
		if m.Removes > 0 {
			c.Remove(m.Removes)
		}
		if saved != nil {
			c.Upsert(*saved)
		}
	}

	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()
	return Result{State: StateReady}
}

func (c *Collection[T]) fail(err error) Result {
	c.mu.Lock()
	c.state = StateSubmitError
	c.mu.Unlock()
	if common.IsAuth(err) {
		return Result{State: StateSubmitError, AuthExpired: true, Notice: common.MsgSessionExpired, Err: err}
	}
	return Result{State: StateSubmitError, Notice: common.UserMessage(err), Err: err}
}
