package engine

import (
	"fmt"

	"github.com/strata-ml/strata/matrix"
	"github.com/strata-ml/strata/model"
)

// Fault operations, used in FitError messages and task metrics.
const (
	opFitTransformer = "fit transformer"
	opTransform      = "transform with"
	opFitEstimator   = "fit estimator"
	opPredict        = "predict with estimator"
)

// FitError is the hard failure raised when a transform, fit, or predict
// call fails and the failure policy escalates it.
type FitError struct {
	// Prefix carries the "[layer | case] " disambiguation context.
	Prefix string
	Op     string
	Name   model.ID
	Err    error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("%scould not %s %q: %v", e.Prefix, e.Op, e.Name, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}

// prefix composes the contextual message prefix from the optional layer and
// case names, disambiguating concurrent failures across tasks.
func prefix(layerName string, caseID model.ID) string {
	cs := caseID.String()
	switch {
	case layerName == "" && cs == "":
		return ""
	case layerName != "" && cs != "":
		return fmt.Sprintf("[%s | %s] ", layerName, cs)
	case cs == "":
		return fmt.Sprintf("[%s] ", layerName)
	default:
		return fmt.Sprintf("[%s] ", cs)
	}
}

// fitTransform fits one transformer. Transformer failures are always fatal:
// a broken pipeline corrupts every downstream consumer of the case.
func fitTransform(tr model.Transformer, x *matrix.Dense, y []float64, name, caseID model.ID, layerName string) error {
	if err := tr.Fit(x, y); err != nil {
		return &FitError{Prefix: prefix(layerName, caseID), Op: opFitTransformer, Name: name, Err: err}
	}
	return nil
}

// applyTransform runs one transformer over x. Always fatal on failure, for
// the same reason as fitTransform.
func applyTransform(tr model.Transformer, x *matrix.Dense, name, caseID model.ID, layerName string) (*matrix.Dense, error) {
	out, err := tr.Transform(x)
	if err != nil {
		return nil, &FitError{Prefix: prefix(layerName, caseID), Op: opTransform, Name: name, Err: err}
	}
	return out, nil
}

// fitEst fits one estimator. The caller applies the fail-fast policy: the
// returned *FitError either escalates or becomes a warn-and-drop record.
func fitEst(est model.Estimator, x *matrix.Dense, y []float64, name, caseID model.ID, layerName string) error {
	if err := est.Fit(x, y); err != nil {
		return &FitError{Prefix: prefix(layerName, caseID), Op: opFitEstimator, Name: name, Err: err}
	}
	return nil
}

// predictEst predicts with one fitted estimator. The caller applies the
// fail-fast policy: on a recoverable failure the prediction column stays at
// its zero default.
func predictEst(est model.Estimator, x *matrix.Dense, name, caseID model.ID, layerName string) ([]float64, error) {
	out, err := est.Predict(x)
	if err != nil {
		return nil, &FitError{Prefix: prefix(layerName, caseID), Op: opPredict, Name: name, Err: err}
	}
	return out, nil
}
