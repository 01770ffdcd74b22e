// Package fold expands a layer's estimator and preprocessing collections
// into the flat task list driven by the parallel fitting stages. For every
// case there is exactly one full-data task (no train or test range) plus,
// when a splitter is configured, one task per cross-validation fold with
// every instance renamed to its fold variant.
//
// Emission order is deterministic: cases in sorted order, then folds in the
// splitter's emission order. Cache keys and column assignment both rely on
// this ordering being stable across runs.
package fold

import (
	"github.com/strata-ml/strata/model"
)

// Fold is one cross-validation split, as row index lists over the training
// data.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter generates cross-validation folds over n rows. Implementations
// must be deterministic: task identity and column propagation depend on a
// stable emission order.
type Splitter interface {
	Split(n int) []Fold
}

// Task is one unit of fitting work: a case, optional train/test row ranges,
// and the instances to fit. Instances are fresh clones owned exclusively by
// the task. Exactly one task per case has nil ranges (the full-data fit);
// fold tasks carry both ranges and fold-variant identifiers.
type Task[T model.Clonable[T]] struct {
	Case  model.ID
	Train *model.Range
	Test  *model.Range
	Insts []model.Named[T]
}

// Expand builds the task list for a collection. With a nil splitter only the
// full-data tasks are produced. n is the training row count handed to the
// splitter.
func Expand[T model.Clonable[T]](src model.Collection[T], sp Splitter, n int) []Task[T] {
	caseIDs := src.CaseIDs()

	tasks := make([]Task[T], 0, len(caseIDs))
	for _, c := range caseIDs {
		tasks = append(tasks, Task[T]{Case: c, Insts: cloneMembers(src.Members(c))})
	}

	if sp == nil {
		return tasks
	}

	folds := sp.Split(n)
	for _, c := range caseIDs {
		for i, f := range folds {
			tasks = append(tasks, Task[T]{
				Case:  c.WithFold(i),
				Train: span(f.Train),
				Test:  span(f.Test),
				Insts: cloneFoldMembers(src.Members(c), i),
			})
		}
	}
	return tasks
}

// span converts a fold's index list to the inclusive-to-exclusive row span
// it implies.
func span(idx []int) *model.Range {
	if len(idx) == 0 {
		return nil
	}
	return &model.Range{Start: idx[0], Stop: idx[len(idx)-1] + 1}
}

func cloneMembers[T model.Clonable[T]](members []model.Named[T]) []model.Named[T] {
	out := make([]model.Named[T], len(members))
	for i, m := range members {
		out[i] = model.Named[T]{Name: m.Name, Inst: m.Inst.Clone()}
	}
	return out
}

func cloneFoldMembers[T model.Clonable[T]](members []model.Named[T], fold int) []model.Named[T] {
	out := make([]model.Named[T], len(members))
	for i, m := range members {
		out[i] = model.Named[T]{Name: m.Name.WithFold(fold), Inst: m.Inst.Clone()}
	}
	return out
}
