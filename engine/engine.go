package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/strata-ml/strata/parallel"
	"github.com/strata-ml/strata/store"
)

// Mode selects how Fit submits its two stages to the runner.
type Mode int

const (
	// Staged completes the transform stage before submitting the estimator
	// stage. Estimator tasks still go through the cache wait, but never
	// actually block.
	Staged Mode = iota
	// Combined submits both stages in one batch; estimator tasks rely on
	// the cache poll-and-wait protocol to synchronize with their case's
	// transformer fit.
	Combined
)

// Options tune an Engine. The zero value uses the store package's wait
// defaults and Staged submission.
type Options struct {
	PollInterval time.Duration
	WaitBudget   time.Duration
	Mode         Mode
}

// Engine drives layer fitting and prediction through a parallel runner and
// an artifact cache.
type Engine struct {
	store  store.Store
	runner parallel.Runner
	logger *slog.Logger
	opts   Options
}

// New creates an engine. A nil logger discards all output.
func New(s store.Store, r parallel.Runner, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = store.DefaultPollInterval
	}
	if opts.WaitBudget <= 0 {
		opts.WaitBudget = store.DefaultWaitBudget
	}
	return &Engine{
		store:  s,
		runner: r,
		logger: logger,
		opts:   opts,
	}
}
