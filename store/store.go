// Package store implements the write-once artifact cache that hands fitted
// transformer lists from the preprocessing stage to the estimator stage, and
// fitted estimator bundles from the fit driver to reassembly and prediction.
//
// Entries are immutable once written and writes are atomic from the reader's
// point of view: a reader observes either ErrNotFound or the complete value,
// never a partial one. Await implements the two-stage poll-and-wait read
// protocol that tolerates the producer/consumer race between the two fitting
// stages.
package store

import (
	"context"
	"errors"

	"github.com/strata-ml/strata/model"
)

// Kind distinguishes the two cache entry shapes.
type Kind byte

const (
	// KindTransformers is a fitted, ordered transformer list keyed by case.
	KindTransformers Kind = 't'
	// KindEstimator is a fitted estimator bundle keyed by case and name.
	KindEstimator Kind = 'e'
)

// ErrNotFound is returned by Get when no entry exists for the key.
var ErrNotFound = errors.New("cache entry not found")

// Key addresses one cache entry. Name is the zero ID for transformer lists.
type Key struct {
	Case model.ID
	Name model.ID
	Kind Kind
}

// TransformersKey returns the key of a case's fitted transformer list.
func TransformersKey(caseID model.ID) Key {
	return Key{Case: caseID, Kind: KindTransformers}
}

// EstimatorKey returns the key of one fitted estimator bundle.
func EstimatorKey(caseID, name model.ID) Key {
	return Key{Case: caseID, Name: name, Kind: KindEstimator}
}

// Filename renders the key's stable entry name: "case__t" for transformer
// lists and "case__name__e" for estimator bundles.
func (k Key) Filename() string {
	if k.Kind == KindTransformers {
		return k.Case.String() + "__t"
	}
	return k.Case.String() + "__" + k.Name.String() + "__e"
}

func (k Key) String() string {
	return k.Filename()
}

// Store is write-once key/value persistence for serialized fit artifacts.
// Entries are never mutated after creation; concurrent writers to the same
// key must not occur (task identity is unique by construction), and if they
// do, one write silently wins.
type Store interface {
	Put(ctx context.Context, key Key, data []byte) error
	Get(ctx context.Context, key Key) ([]byte, error)
	Close() error
}

// Watchable is implemented by stores that can wake a waiting reader when an
// entry may have appeared. Await uses it when available and falls back to
// interval polling otherwise.
type Watchable interface {
	Watch(key Key) (wake <-chan struct{}, stop func(), err error)
}
