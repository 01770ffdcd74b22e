package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults for the poll-and-wait read protocol.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultWaitBudget   = 30 * time.Second
)

// WaitOptions configure Await.
type WaitOptions struct {
	// Interval between polls. Defaults to DefaultPollInterval.
	Interval time.Duration
	// Budget is one wait window. Defaults to DefaultWaitBudget.
	Budget time.Duration
	// FailFast escalates the first expired window to a hard error instead
	// of warning and extending once.
	FailFast bool
	// OnWarn, if set, is invoked when the first window expires and the wait
	// is extended. It is never invoked more than once per Await call.
	OnWarn func(key Key, waited time.Duration)
}

// WaitError is the hard failure raised when a cache entry never appears
// within the wait budget.
type WaitError struct {
	Key    Key
	Waited time.Duration
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("cache entry %s not found after %s of waiting; "+
		"transformer fitting may be too slow for the configured wait budget", e.Key, e.Waited)
}

// Await reads key from s, tolerating the producer/consumer race between the
// transform and estimation stages. If the entry is absent it polls at
// opts.Interval for up to opts.Budget. When the first window expires:
// fail-fast aborts with a *WaitError, otherwise OnWarn fires and the wait is
// extended by one more window. The second expiry is always a *WaitError.
//
// Stores implementing Watchable additionally wake the wait as soon as the
// entry may have been published; polling remains as the fallback.
func Await(ctx context.Context, s Store, key Key, opts WaitOptions) ([]byte, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultWaitBudget
	}

	data, err := s.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var wake <-chan struct{}
	if w, ok := s.(Watchable); ok {
		ch, stop, werr := w.Watch(key)
		if werr == nil {
			wake = ch
			defer stop()
		}
		// A failed watch is not fatal; fall back to pure polling.
	}

	// Re-check after the watch is in place so a publish racing the watcher
	// setup is not missed.
	data, err = s.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	start := time.Now()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	window := time.NewTimer(opts.Budget)
	defer window.Stop()

	extended := false
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wake:
		case <-ticker.C:
		case <-window.C:
			if opts.FailFast || extended {
				return nil, &WaitError{Key: key, Waited: time.Since(start)}
			}
			extended = true
			if opts.OnWarn != nil {
				opts.OnWarn(key, time.Since(start))
			}
			window.Reset(opts.Budget)
			continue
		}

		data, err := s.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
}
