package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/strata-ml/strata/model"
)

func TestFSStorePutGet(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("a"))

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

func TestFSStoreFileLayout(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, EstimatorKey(model.Name("a"), model.Name("e1")), []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "a__e1__e")); err != nil {
		t.Errorf("expected entry file a__e1__e: %v", err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir has %d entries, want 1", len(entries))
	}
}

func TestFSStoreWatchWakesOnPublish(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	key := TransformersKey(model.Name("slow"))

	wake, stop, err := s.Watch(key)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Put(ctx, key, []byte("done"))
	}()

	select {
	case <-wake:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not wake after entry was published")
	}
}
