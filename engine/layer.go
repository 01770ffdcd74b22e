package engine

import (
	"sync"

	"github.com/strata-ml/strata/fold"
	"github.com/strata-ml/strata/model"
	"github.com/strata-ml/strata/store"
)

// Layer is the configuration one Fit or Predict call consumes: the
// preprocessing pipelines and estimators (case-partitioned or flat), an
// optional fold splitter, the fail-fast flag, and an optional display name
// used to prefix diagnostics.
type Layer struct {
	Name          string
	Preprocessing model.Collection[model.Transformer]
	Estimators    model.Collection[model.Estimator]
	Folds         fold.Splitter
	FailFast      bool
}

// CasePipeline pairs a case with its fitted transformer chain.
type CasePipeline struct {
	Case     model.ID
	Pipeline store.Pipeline
}

// CaseBundle pairs a (possibly fold-variant) case with one fitted estimator
// bundle.
type CaseBundle struct {
	Case   model.ID
	Bundle store.Bundle
}

// Result holds the reassembled artifacts of one Fit call. Estimators
// includes both full-data and fold-variant bundles, in task order;
// Transformers holds the full-data pipeline per case. Estimators dropped
// under the warn-and-drop policy are absent.
type Result struct {
	RunID        string
	Transformers []CasePipeline
	Estimators   []CaseBundle
	Warnings     []Warning
}

// Warning kinds.
const (
	WarnFitFailed     = "fit_failed"
	WarnPredictFailed = "predict_failed"
	WarnCacheSlow     = "cache_slow"
)

// Warning is a recoverable failure absorbed during a Fit call.
type Warning struct {
	Kind string
	Case model.ID
	Name model.ID
	Err  error
}

// warningSink collects warnings from concurrently running tasks.
type warningSink struct {
	mu   sync.Mutex
	list []Warning
}

func (s *warningSink) add(w Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, w)
}

func (s *warningSink) take() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}
