package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strata-ml/strata/model"
)

func TestAwaitEntryAlreadyPresent(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("a"))

	if err := s.Put(ctx, key, []byte("ready")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var warned atomic.Bool
	got, err := Await(ctx, s, key, WaitOptions{
		Interval: time.Millisecond,
		Budget:   time.Second,
		OnWarn:   func(Key, time.Duration) { warned.Store(true) },
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if string(got) != "ready" {
		t.Errorf("Await = %q, want %q", got, "ready")
	}
	if warned.Load() {
		t.Error("OnWarn fired for a present entry")
	}
}

func TestAwaitEntryArrivesWithinFirstWindow(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("slow"))

	// Publish after a couple of poll intervals, well inside the budget.
	go func() {
		time.Sleep(25 * time.Millisecond)
		s.Put(ctx, key, []byte("late"))
	}()

	var warned atomic.Bool
	got, err := Await(ctx, s, key, WaitOptions{
		Interval: 10 * time.Millisecond,
		Budget:   2 * time.Second,
		OnWarn:   func(Key, time.Duration) { warned.Store(true) },
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if string(got) != "late" {
		t.Errorf("Await = %q, want %q", got, "late")
	}
	if warned.Load() {
		t.Error("OnWarn fired although the entry arrived within the first window")
	}
}

func TestAwaitFailFastAbortsAfterFirstWindow(t *testing.T) {
	s := newFSStore(t)
	key := TransformersKey(model.Name("never"))

	start := time.Now()
	_, err := Await(context.Background(), s, key, WaitOptions{
		Interval: 5 * time.Millisecond,
		Budget:   30 * time.Millisecond,
		FailFast: true,
	})

	var werr *WaitError
	if !errors.As(err, &werr) {
		t.Fatalf("Await err = %v, want *WaitError", err)
	}
	if werr.Key != key {
		t.Errorf("WaitError.Key = %v, want %v", werr.Key, key)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("fail-fast wait took %v, expected roughly one budget", elapsed)
	}
}

func TestAwaitWarnsThenExtendsOnce(t *testing.T) {
	s := newFSStore(t)
	key := TransformersKey(model.Name("never"))

	var warns atomic.Int32
	start := time.Now()
	_, err := Await(context.Background(), s, key, WaitOptions{
		Interval: 5 * time.Millisecond,
		Budget:   30 * time.Millisecond,
		OnWarn:   func(Key, time.Duration) { warns.Add(1) },
	})

	var werr *WaitError
	if !errors.As(err, &werr) {
		t.Fatalf("Await err = %v, want *WaitError", err)
	}
	if got := warns.Load(); got != 1 {
		t.Errorf("OnWarn fired %d times, want exactly 1", got)
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Errorf("wait returned after %v, expected at least two budgets", elapsed)
	}
}

func TestAwaitSecondWindowRecovers(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("slow"))

	// Publish during the extension window.
	go func() {
		time.Sleep(45 * time.Millisecond)
		s.Put(ctx, key, []byte("eventually"))
	}()

	var warns atomic.Int32
	got, err := Await(ctx, s, key, WaitOptions{
		Interval: 5 * time.Millisecond,
		Budget:   30 * time.Millisecond,
		OnWarn:   func(Key, time.Duration) { warns.Add(1) },
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if string(got) != "eventually" {
		t.Errorf("Await = %q, want %q", got, "eventually")
	}
	if warns.Load() != 1 {
		t.Errorf("OnWarn fired %d times, want 1", warns.Load())
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	s := newFSStore(t)
	key := TransformersKey(model.Name("never"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, s, key, WaitOptions{
		Interval: 5 * time.Millisecond,
		Budget:   10 * time.Second,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await err = %v, want context.DeadlineExceeded", err)
	}
}
