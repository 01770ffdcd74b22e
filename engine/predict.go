package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strata-ml/strata/matrix"
	"github.com/strata-ml/strata/model"
	"github.com/strata-ml/strata/parallel"
	"github.com/strata-ml/strata/store"
)

// Predict replays the cached full-data artifacts against fresh input,
// writing one column per estimator into preds. Fold-variant artifacts are
// never used for fresh-data prediction. Estimators dropped during Fit have
// no cache entry and are skipped; their columns keep their zero default,
// as do columns whose estimator fails under a non-fail-fast layer.
func (e *Engine) Predict(ctx context.Context, l *Layer, x *matrix.Dense, preds *matrix.Dense) error {
	runID := model.NewRunID()
	log := e.logger.With("run_id", runID, "layer", l.Name)
	started := time.Now()

	var calls []parallel.Call
	for _, caseID := range l.Estimators.CaseIDs() {
		caseID := caseID
		pipeline, err := store.LoadTransformers(ctx, e.store, caseID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("predict: no fitted pipeline cached for case %q; was the layer fitted?", caseID)
			}
			return err
		}

		for _, member := range l.Estimators.Members(caseID) {
			bundle, err := store.LoadBundle(ctx, e.store, caseID, member.Name)
			if errors.Is(err, store.ErrNotFound) {
				// Dropped during fit.
				log.Debug("estimator absent from cache, skipping", "case", caseID.String(), "estimator", member.Name.String())
				continue
			}
			if err != nil {
				return err
			}

			calls = append(calls, func(ctx context.Context) error {
				return e.runPredictTask(l, caseID, pipeline, bundle, x, preds)
			})
		}
	}

	log.Debug("predicting through layer", "tasks", len(calls))
	if err := e.runner.Run(ctx, calls); err != nil {
		return err
	}
	log.Info("layer predict complete", "tasks", len(calls), "elapsed", time.Since(started))
	return nil
}

// runPredictTask transforms the full input through one case's pipeline,
// predicts with one fitted estimator, and writes the estimator's column.
func (e *Engine) runPredictTask(l *Layer, caseID model.ID, pipeline store.Pipeline, bundle store.Bundle, x, preds *matrix.Dense) error {
	timer := prometheus.NewTimer(stageDuration.WithLabelValues(stagePredict))
	defer timer.ObserveDuration()

	cur := x
	var err error
	for _, tr := range pipeline {
		cur, err = applyTransform(tr.Inst, cur, tr.Name, caseID, l.Name)
		if err != nil {
			tasksTotal.WithLabelValues(stagePredict, statusFailed).Inc()
			return err
		}
	}

	vals, err := predictEst(bundle.Estimator, cur, bundle.Name, caseID, l.Name)
	if err != nil {
		if l.FailFast {
			tasksTotal.WithLabelValues(stagePredict, statusFailed).Inc()
			return err
		}
		// Recoverable: the column keeps its zero default.
		e.logger.Warn("estimator prediction zero-filled", "case", caseID.String(), "estimator", bundle.Name.String(), "error", err)
		tasksTotal.WithLabelValues(stagePredict, statusCompleted).Inc()
		return nil
	}

	preds.SetCol(bundle.Col, vals)
	tasksTotal.WithLabelValues(stagePredict, statusCompleted).Inc()
	return nil
}
