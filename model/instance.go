// Package model defines the domain types shared by the layer drivers: the
// estimator and transformer capability interfaces, structured fold-aware
// identifiers, half-open row ranges, and the tagged configuration
// collections (case-partitioned or flat).
package model

import (
	"encoding/gob"

	"github.com/strata-ml/strata/matrix"
)

// Transformer is a fittable preprocessing step. Implementations are cloned
// once per task and never shared across tasks, so Fit may mutate the
// receiver freely. Transform must treat its input as read-only and return a
// new matrix.
type Transformer interface {
	Fit(x *matrix.Dense, y []float64) error
	Transform(x *matrix.Dense) (*matrix.Dense, error)
	Clone() Transformer
}

// Estimator is a fittable model that predicts one value per input row.
// The same per-task cloning contract as Transformer applies.
type Estimator interface {
	Fit(x *matrix.Dense, y []float64) error
	Predict(x *matrix.Dense) ([]float64, error)
	Clone() Estimator
}

// Clonable constrains collection members to types that can produce
// independent copies of themselves.
type Clonable[T any] interface {
	Clone() T
}

// Named pairs an instance with its identifier.
type Named[T any] struct {
	Name ID
	Inst T
}

// Register records a concrete Transformer or Estimator implementation with
// the serialization layer. Every type that passes through the cache must be
// registered once, typically from an init function.
func Register(v any) {
	gob.Register(v)
}
