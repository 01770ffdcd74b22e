// Package colmap assigns every (case, estimator) pair its output column in
// the shared prediction matrix. Columns are handed out consecutively over
// full-data entries in case-sorted, then declared order; fold variants of an
// estimator resolve to the same column as their full-data parent, which is
// what makes concurrent fold writes disjoint by construction.
package colmap

import (
	"fmt"

	"github.com/strata-ml/strata/fold"
	"github.com/strata-ml/strata/model"
)

// Key addresses one prediction column: the owning case (possibly a fold
// variant) and the estimator name (fold variant when the case is one).
type Key struct {
	Case model.ID
	Name model.ID
}

// Map assigns output columns. Full-data keys form a bijection onto
// {0..n-1}; fold-variant keys alias their parent's column.
type Map map[Key]int

// Assign builds the column map for a layer. The base pass walks the
// estimator collection's own case structure; the propagation pass copies
// each parent column onto the fold-variant keys found in the expanded task
// list. Fold tasks referencing an estimator absent from the base pass are a
// configuration error.
func Assign(estimators model.Collection[model.Estimator], tasks []fold.Task[model.Estimator]) (Map, error) {
	m := make(Map)

	col := 0
	for _, c := range estimators.CaseIDs() {
		for _, member := range estimators.Members(c) {
			m[Key{Case: c, Name: member.Name}] = col
			col++
		}
	}

	for _, t := range tasks {
		if !t.Case.Folded {
			// Full-data task: its entries already own their columns.
			continue
		}
		parentCase := t.Case.Parent()
		for _, inst := range t.Insts {
			parent := Key{Case: parentCase, Name: inst.Name.Parent()}
			base, ok := m[parent]
			if !ok {
				return nil, fmt.Errorf("colmap: fold task %q references unknown estimator %q", t.Case, inst.Name)
			}
			m[Key{Case: t.Case, Name: inst.Name}] = base
		}
	}

	return m, nil
}

// Width returns the number of distinct columns, i.e. the required column
// count of the prediction matrix.
func (m Map) Width() int {
	w := 0
	for _, col := range m {
		if col+1 > w {
			w = col + 1
		}
	}
	return w
}
