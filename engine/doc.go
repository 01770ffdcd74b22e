// Package engine drives the parallel fitting and prediction of one stacked
// ensemble layer. Fit expands the layer's collections into fold tasks,
// assigns output columns, runs the transform and estimation stages through a
// parallel runner with a disk-backed cache handoff between them, and
// reassembles the fitted artifacts and out-of-fold prediction matrix.
// Predict replays the cached full-data artifacts against fresh input.
//
// Failure handling is layered: transformer failures always abort the call,
// estimator fit/predict failures abort only under the layer's fail-fast
// flag and are otherwise recorded as warnings with the estimator dropped or
// its prediction column left at zero.
package engine
