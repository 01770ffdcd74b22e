package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strata-ml/strata/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorePutGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	key := EstimatorKey(model.Name("a"), model.Name("e1"))

	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: err = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, key, []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Get = %q, want %q", got, "payload")
	}
}

func TestSQLiteStoreDuplicateKeyWins(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("a"))

	if err := s.Put(ctx, key, []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, key, []byte("second")); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get = %q, want %q", got, "second")
	}
}

func TestSQLiteStoreWithAwait(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("a"))

	if err := s.Put(ctx, key, []byte("ready")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Entry already present: Await returns immediately.
	got, err := Await(ctx, s, key, WaitOptions{Interval: time.Millisecond, Budget: time.Second})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if string(got) != "ready" {
		t.Errorf("Await = %q, want %q", got, "ready")
	}
}
