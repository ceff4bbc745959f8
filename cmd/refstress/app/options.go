package app

import (
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/internal/stress"
)

type options struct {
	configPath  string
	metricsAddr string
	logLevel    string
	development bool
	plain       bool

	// flagConfig receives flag values; it is merged over the file config
	// for the flags the user actually set.
	flagConfig stress.Config
	fs         *flag.FlagSet

	config stress.Config
	log    *zap.Logger
}

func newOptions() *options {
	return &options{flagConfig: stress.DefaultConfig()}
}

func (o *options) AddFlags(fs *flag.FlagSet) {
	o.fs = fs
	fs.StringVar(&o.configPath, "config", "", "Specify the path to a YAML configuration file")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&o.development, "dev", false, "Use the human-readable development logger")
	fs.BoolVar(&o.plain, "plain", false, "Print the report without styling even on a terminal")

	fs.IntVar(&o.flagConfig.Runs, "runs", o.flagConfig.Runs, "Rounds per scenario")
	fs.IntVar(&o.flagConfig.Workers, "workers", o.flagConfig.Workers, "Goroutines racing per round")
	fs.IntVar(&o.flagConfig.Attempts, "attempts", o.flagConfig.Attempts, "Operations per goroutine per round")
	fs.DurationVar(&o.flagConfig.Timeout, "timeout", o.flagConfig.Timeout, "Time limit per scenario, 0 for none")
}

var configFlags = []struct {
	name  string
	apply func(dst *stress.Config, src stress.Config)
}{
	{"runs", func(dst *stress.Config, src stress.Config) { dst.Runs = src.Runs }},
	{"workers", func(dst *stress.Config, src stress.Config) { dst.Workers = src.Workers }},
	{"attempts", func(dst *stress.Config, src stress.Config) { dst.Attempts = src.Attempts }},
	{"timeout", func(dst *stress.Config, src stress.Config) { dst.Timeout = src.Timeout }},
}

// Complete loads the configuration file, applies explicitly set flags on top
// and builds the logger.
func (o *options) Complete() error {
	cfg := stress.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = stress.LoadConfig(o.configPath); err != nil {
			return err
		}
	}
	for _, f := range configFlags {
		if o.fs != nil && o.fs.Changed(f.name) {
			f.apply(&cfg, o.flagConfig)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.config = cfg

	log, err := o.buildLogger()
	if err != nil {
		return err
	}
	o.log = log
	return nil
}

func (o *options) buildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(o.logLevel)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}

	cfg := zap.NewProductionConfig()
	if o.development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}
