package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strata-ml/strata/colmap"
	"github.com/strata-ml/strata/fold"
	"github.com/strata-ml/strata/matrix"
	"github.com/strata-ml/strata/model"
	"github.com/strata-ml/strata/parallel"
	"github.com/strata-ml/strata/store"
)

// Fit fits the layer: transform tasks persist fitted pipelines to the
// cache, estimator tasks load them through the poll-and-wait protocol, fit,
// and write held-out predictions into preds. preds must have x's row count
// and at least one column per full-data estimator; out-of-fold cells it
// receives are written disjointly, everything else is left untouched.
//
// The returned Result is reassembled from the cache in task order.
func (e *Engine) Fit(ctx context.Context, l *Layer, x *matrix.Dense, y []float64, preds *matrix.Dense) (*Result, error) {
	runID := model.NewRunID()
	log := e.logger.With("run_id", runID, "layer", l.Name)
	started := time.Now()

	rows, _ := x.Dims()

	prepSrc := l.Preprocessing
	if prepSrc.Len() == 0 {
		// No preprocessing declared: every case still needs its (empty)
		// pipeline entry in the cache, or estimator tasks would wait out
		// their budget for nothing.
		prepSrc = model.MirrorCases[model.Transformer](l.Estimators.CaseIDs(), l.Estimators.Partitioned())
	}

	estTasks := fold.Expand(l.Estimators, l.Folds, rows)
	prepTasks := fold.Expand(prepSrc, l.Folds, rows)

	cm, err := colmap.Assign(l.Estimators, estTasks)
	if err != nil {
		return nil, err
	}
	if _, cols := preds.Dims(); cols < cm.Width() {
		return nil, fmt.Errorf("engine: prediction matrix has %d columns, need %d", cols, cm.Width())
	}

	sink := &warningSink{}

	transCalls := make([]parallel.Call, 0, len(prepTasks))
	for _, t := range prepTasks {
		t := t
		transCalls = append(transCalls, func(ctx context.Context) error {
			return e.runTransformTask(ctx, l, t, x, y)
		})
	}

	var estCalls []parallel.Call
	for _, t := range estTasks {
		t := t
		for _, inst := range t.Insts {
			inst := inst
			col, ok := cm[colmap.Key{Case: t.Case, Name: inst.Name}]
			if !ok {
				return nil, fmt.Errorf("engine: no column assigned to estimator %q in case %q", inst.Name, t.Case)
			}
			estCalls = append(estCalls, func(ctx context.Context) error {
				return e.runEstimatorTask(ctx, l, t.Case, inst, t.Train, t.Test, col, x, y, preds, sink)
			})
		}
	}

	log.Debug("fitting layer",
		"mode", e.opts.Mode,
		"transform_tasks", len(transCalls),
		"estimator_tasks", len(estCalls),
		"columns", cm.Width(),
	)

	switch e.opts.Mode {
	case Combined:
		// Transform calls are submitted ahead of estimator calls so a
		// bounded runner always makes progress: an estimator task can only
		// start once every transform task has at least been dequeued.
		if err := e.runner.Run(ctx, append(transCalls, estCalls...)); err != nil {
			return nil, err
		}
	default:
		if err := e.runner.Run(ctx, transCalls); err != nil {
			return nil, err
		}
		if err := e.runner.Run(ctx, estCalls); err != nil {
			return nil, err
		}
	}

	trans, err := e.assembleTransformers(ctx, prepTasks)
	if err != nil {
		return nil, err
	}
	ests, err := e.assembleEstimators(ctx, estTasks)
	if err != nil {
		return nil, err
	}

	warnings := sink.take()
	log.Info("layer fit complete",
		"estimators", len(ests),
		"pipelines", len(trans),
		"warnings", len(warnings),
		"elapsed", time.Since(started),
	)

	return &Result{
		RunID:        runID,
		Transformers: trans,
		Estimators:   ests,
		Warnings:     warnings,
	}, nil
}

// runTransformTask fits one preprocessing task's transformer chain on its
// train slice and persists the ordered fitted list under the task's case.
func (e *Engine) runTransformTask(ctx context.Context, l *Layer, t fold.Task[model.Transformer], x *matrix.Dense, y []float64) error {
	timer := prometheus.NewTimer(stageDuration.WithLabelValues(stageTransform))
	defer timer.ObserveDuration()

	xs, ys := sliceTrain(x, y, t.Train)

	fitted := make(store.Pipeline, 0, len(t.Insts))
	cur := xs
	for _, tr := range t.Insts {
		if err := fitTransform(tr.Inst, cur, ys, tr.Name, t.Case, l.Name); err != nil {
			tasksTotal.WithLabelValues(stageTransform, statusFailed).Inc()
			return err
		}
		// With a single-step chain the fitted transformer is never applied
		// here; estimator tasks run the chain themselves.
		if len(t.Insts) > 1 {
			next, err := applyTransform(tr.Inst, cur, tr.Name, t.Case, l.Name)
			if err != nil {
				tasksTotal.WithLabelValues(stageTransform, statusFailed).Inc()
				return err
			}
			cur = next
		}
		fitted = append(fitted, tr)
	}

	if err := store.SaveTransformers(ctx, e.store, t.Case, fitted); err != nil {
		tasksTotal.WithLabelValues(stageTransform, statusFailed).Inc()
		return err
	}
	tasksTotal.WithLabelValues(stageTransform, statusCompleted).Inc()
	return nil
}

// runEstimatorTask loads the case's pipeline through the poll-and-wait
// protocol, fits one estimator on the transformed train slice, writes the
// held-out prediction into its (test range, column) slice of preds, and
// persists the fitted bundle.
func (e *Engine) runEstimatorTask(
	ctx context.Context,
	l *Layer,
	caseID model.ID,
	inst model.Named[model.Estimator],
	train, test *model.Range,
	col int,
	x *matrix.Dense,
	y []float64,
	preds *matrix.Dense,
	sink *warningSink,
) error {
	timer := prometheus.NewTimer(stageDuration.WithLabelValues(stageEstimate))
	defer timer.ObserveDuration()

	xs, ys := sliceTrain(x, y, train)

	pipeline, err := e.awaitPipeline(ctx, l, caseID, sink)
	if err != nil {
		tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
		return err
	}

	cur := xs
	for _, tr := range pipeline {
		cur, err = applyTransform(tr.Inst, cur, tr.Name, caseID, l.Name)
		if err != nil {
			tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
			return err
		}
	}

	if err := fitEst(inst.Inst, cur, ys, inst.Name, caseID, l.Name); err != nil {
		if l.FailFast {
			tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
			return err
		}
		e.logger.Warn("estimator dropped from ensemble", "case", caseID.String(), "estimator", inst.Name.String(), "error", err)
		sink.add(Warning{Kind: WarnFitFailed, Case: caseID, Name: inst.Name, Err: err})
		tasksTotal.WithLabelValues(stageEstimate, statusDropped).Inc()
		estimatorsDropped.Inc()
		return nil
	}

	if test != nil {
		// Held-out rows go through the same chain before prediction.
		xt := x.RowWindow(test.Start, test.Stop)
		for _, tr := range pipeline {
			xt, err = applyTransform(tr.Inst, xt, tr.Name, caseID, l.Name)
			if err != nil {
				tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
				return err
			}
		}

		vals, err := predictEst(inst.Inst, xt, inst.Name, caseID, l.Name)
		if err != nil {
			if l.FailFast {
				tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
				return err
			}
			// Recoverable: the column keeps its zero default.
			e.logger.Warn("estimator prediction zero-filled", "case", caseID.String(), "estimator", inst.Name.String(), "error", err)
			sink.add(Warning{Kind: WarnPredictFailed, Case: caseID, Name: inst.Name, Err: err})
		} else {
			preds.SetColRange(col, test.Start, vals)
		}
	}

	bundle := store.Bundle{Name: inst.Name, Estimator: inst.Inst, Test: test, Col: col}
	if err := store.SaveBundle(ctx, e.store, caseID, bundle); err != nil {
		tasksTotal.WithLabelValues(stageEstimate, statusFailed).Inc()
		return err
	}
	tasksTotal.WithLabelValues(stageEstimate, statusCompleted).Inc()
	return nil
}

// awaitPipeline reads a case's fitted transformer list, tolerating the race
// against the still-running transform stage.
func (e *Engine) awaitPipeline(ctx context.Context, l *Layer, caseID model.ID, sink *warningSink) (store.Pipeline, error) {
	waitStart := time.Now()
	data, err := store.Await(ctx, e.store, store.TransformersKey(caseID), store.WaitOptions{
		Interval: e.opts.PollInterval,
		Budget:   e.opts.WaitBudget,
		FailFast: l.FailFast,
		OnWarn: func(key store.Key, waited time.Duration) {
			e.logger.Warn("transformer cache entry slow to appear, extending wait",
				"key", key.String(), "waited", waited, "budget", e.opts.WaitBudget)
			sink.add(Warning{
				Kind: WarnCacheSlow,
				Case: caseID,
				Err:  fmt.Errorf("cache entry %s not found after %s, waiting one more budget", key, waited),
			})
		},
	})
	cacheWaitDuration.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return nil, err
	}
	return store.DecodeTransformers(data)
}

// assembleTransformers reads back the full-data pipeline per case, in task
// order.
func (e *Engine) assembleTransformers(ctx context.Context, tasks []fold.Task[model.Transformer]) ([]CasePipeline, error) {
	var out []CasePipeline
	for _, t := range tasks {
		if t.Case.Folded {
			continue
		}
		p, err := store.LoadTransformers(ctx, e.store, t.Case)
		if err != nil {
			return nil, fmt.Errorf("assemble pipeline for case %q: %w", t.Case, err)
		}
		out = append(out, CasePipeline{Case: t.Case, Pipeline: p})
	}
	return out, nil
}

// assembleEstimators reads back every estimator bundle, full-data and fold
// variants, in task order. Bundles absent from the cache were dropped under
// the warn-and-drop policy and are skipped.
func (e *Engine) assembleEstimators(ctx context.Context, tasks []fold.Task[model.Estimator]) ([]CaseBundle, error) {
	var out []CaseBundle
	for _, t := range tasks {
		for _, inst := range t.Insts {
			b, err := store.LoadBundle(ctx, e.store, t.Case, inst.Name)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("assemble estimator %q for case %q: %w", inst.Name, t.Case, err)
			}
			out = append(out, CaseBundle{Case: t.Case, Bundle: b})
		}
	}
	return out, nil
}

// sliceTrain returns the train-range views of x and y, or the full data
// when the range is nil.
func sliceTrain(x *matrix.Dense, y []float64, train *model.Range) (*matrix.Dense, []float64) {
	if train == nil {
		return x, y
	}
	return x.RowWindow(train.Start, train.Stop), y[train.Start:train.Stop]
}
