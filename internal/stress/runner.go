package stress

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/resource"
)

// Result summarizes one scenario.
type Result struct {
	Scenario   string
	Runs       int
	Locked     int64
	LockFailed int64
	Destroyed  int64
	Violations int64
	Duration   time.Duration
	Err        error
}

// OK reports whether the scenario completed without violations.
func (r Result) OK() bool {
	return r.Err == nil && r.Violations == 0
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("scenario", r.Scenario)
	enc.AddInt("runs", r.Runs)
	enc.AddInt64("locked", r.Locked)
	enc.AddInt64("lock_failed", r.LockFailed)
	enc.AddInt64("destroyed", r.Destroyed)
	enc.AddInt64("violations", r.Violations)
	enc.AddDuration("duration", r.Duration)
	return nil
}

// Runner executes scenarios with a fixed configuration.
type Runner struct {
	log            *zap.Logger
	tableObservers []resource.Observer
	cfg            Config
}

// NewRunner validates cfg and returns a runner logging to log.
// A nil log discards output.
func NewRunner(cfg Config, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// ObserveTables subscribes o to the handle tables scenarios create.
func (r *Runner) ObserveTables(o resource.Observer) {
	r.tableObservers = append(r.tableObservers, o)
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run executes the named scenarios in order, or all of them if none are
// named. It keeps going after a scenario reports violations and returns
// every result along with the combined error.
func (r *Runner) Run(ctx context.Context, names ...string) ([]Result, error) {
	if len(names) == 0 {
		names = Scenarios()
	}
	for _, name := range names {
		if _, ok := scenarios[name]; !ok {
			return nil, errors.NotFound(errors.PhaseStress, "scenario", name)
		}
	}

	var (
		results []Result
		errs    error
	)
	for _, name := range names {
		res := r.runOne(ctx, name)
		results = append(results, res)
		errs = multierr.Append(errs, res.Err)
		if ctx.Err() != nil {
			break
		}
	}
	return results, errs
}

func (r *Runner) runOne(ctx context.Context, name string) Result {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	log := r.log.With(zap.String("scenario", name))
	log.Debug("scenario started",
		zap.Int("runs", r.cfg.Runs),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("attempts", r.cfg.Attempts))

	res := Result{Scenario: name}
	start := time.Now()
	err := scenarios[name](ctx, r, &res)
	res.Duration = time.Since(start)

	switch {
	case err != nil:
		res.Err = errors.Wrap(errors.PhaseStress, errors.KindAborted, err, name+" aborted")
		log.Error("scenario aborted", zap.Object("result", res), zap.Error(err))
	case res.Violations > 0:
		verr := errors.Violation(errors.PhaseStress, "%s: %d lifetime violations", name, res.Violations)
		verr.Value = res.Violations
		res.Err = verr
		log.Error("scenario found violations", zap.Object("result", res))
	default:
		log.Info("scenario passed", zap.Object("result", res))
	}
	return res
}
