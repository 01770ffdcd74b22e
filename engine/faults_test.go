package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/strata-ml/strata/model"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		layer string
		c     model.ID
		want  string
	}{
		{"", model.ID{}, ""},
		{"layer-1", model.ID{}, "[layer-1] "},
		{"", model.Name("a"), "[a] "},
		{"layer-1", model.Name("a"), "[layer-1 | a] "},
		{"layer-1", model.Name("a").WithFold(2), "[layer-1 | a__2] "},
		{"layer-1", model.ID{}.WithFold(0), "[layer-1 | 0] "},
	}
	for _, tt := range tests {
		if got := prefix(tt.layer, tt.c); got != tt.want {
			t.Errorf("prefix(%q, %v) = %q, want %q", tt.layer, tt.c, got, tt.want)
		}
	}
}

func TestFitErrorRendering(t *testing.T) {
	cause := errors.New("singular matrix")
	err := &FitError{
		Prefix: prefix("layer-1", model.Name("a")),
		Op:     opFitEstimator,
		Name:   model.Name("ols").WithFold(1),
		Err:    cause,
	}

	msg := err.Error()
	for _, want := range []string{"[layer-1 | a] ", "fit estimator", `"ols__1"`, "singular matrix"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}

	if !errors.Is(err, cause) {
		t.Error("FitError does not unwrap to its cause")
	}
}
