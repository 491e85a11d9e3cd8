// Package screen is the list/detail flow every dashboard page follows: load one or more
// collections in parallel, derive a view from them, and run single mutations against
// them without losing what is already loaded.
package screen

import (
	"context"
	"tecrank_admin/internal/common"

	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateError       State = "error"
	StateSubmitting  State = "submitting"
	StateSubmitError State = "submit-error"
)

// Fetcher loads one collection into wherever the screen keeps it.
type Fetcher func(ctx context.Context) error

// Outcome is how a load ended.
type Outcome struct {
	State State
	// AuthExpired is set when any fetch was rejected for authentication; the session
	// has already been cleared by the backend client and the caller must redirect.
	AuthExpired bool
	Message     string
	Err         error
}

func (o Outcome) Ready() bool { return o.State == StateReady }

// Load runs every fetcher concurrently and returns only after all of them settled.
// Fetchers are not cancelled when a sibling fails.
func Load(ctx context.Context, fetchers ...Fetcher) Outcome {
	errs := make([]error, len(fetchers))
	var g errgroup.Group
	for i, f := range fetchers {
		g.Go(func() error {
			errs[i] = f(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return outcomeOf(errs)
}

// Sequence runs fetchers one after another, stopping at the first failure. It is for
// dependent calls, e.g. a record and then its history.
func Sequence(ctx context.Context, fetchers ...Fetcher) Outcome {
	for _, f := range fetchers {
		if err := f(ctx); err != nil {
			return outcomeOf([]error{err})
		}
	}
	return Outcome{State: StateReady}
}

func outcomeOf(errs []error) Outcome {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if common.IsAuth(err) {
			return Outcome{State: StateError, AuthExpired: true, Message: common.MsgSessionExpired, Err: err}
		}
		if first == nil {
			first = err
		}
	}
	if first != nil {
		return Outcome{State: StateError, Message: common.UserMessage(first), Err: first}
	}
	return Outcome{State: StateReady}
}

// Into adapts a typed fetch to a Fetcher that stores its result in dst on success.
func Into[T any](dst *T, fetch func(ctx context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
