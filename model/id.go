package model

import (
	"strconv"

	"github.com/oklog/ulid/v2"
)

// ID names an estimator, transformer, or preprocessing case, together with
// the cross-validation fold it belongs to. The zero value is the absent
// case used by unpartitioned configurations.
//
// IDs are comparable and safe to use as map keys. A fold variant and its
// full-data parent differ only in the Fold/Folded fields, so the parent is
// recoverable without string parsing.
type ID struct {
	Base   string
	Fold   int
	Folded bool
}

// Name returns a plain (non-fold) identifier.
func Name(base string) ID {
	return ID{Base: base}
}

// WithFold returns the fold-variant identifier for fold i.
func (id ID) WithFold(i int) ID {
	return ID{Base: id.Base, Fold: i, Folded: true}
}

// Parent strips the fold component, recovering the full-data identifier.
func (id ID) Parent() ID {
	return ID{Base: id.Base}
}

// IsZero reports whether id is the absent case.
func (id ID) IsZero() bool {
	return id.Base == "" && !id.Folded
}

// String renders the legacy display form: "base", "base__fold", or the bare
// fold index when there is no base name. The absent case renders empty.
func (id ID) String() string {
	if !id.Folded {
		return id.Base
	}
	if id.Base == "" {
		return strconv.Itoa(id.Fold)
	}
	return id.Base + "__" + strconv.Itoa(id.Fold)
}

// NewRunID generates a ULID correlation key for one driver run.
func NewRunID() string {
	return ulid.Make().String()
}
