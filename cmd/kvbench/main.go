package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/flipkart-incubator/kvbench/internal/clock"
	"github.com/flipkart-incubator/kvbench/internal/opts"
	"github.com/flipkart-incubator/kvbench/internal/rng"
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/tools/bench"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one benchmark invocation and returns the process
// exit status. Progress lines go to out; diagnostics only go to
// the configured log file.
func run(args []string, out io.Writer) int {
	cfg, posArgs, err := opts.NewLoader("kvbench").Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kvbench: %v\n", err)
		return 1
	}

	lgr := setupLogger(cfg)
	defer lgr.Sync()
	cfg.Print(lgr)

	statsCli := setupStats(cfg, lgr)
	defer statsCli.Close()

	var promRegistry prometheus.Registerer = stats.NewPromethousNoopRegistry()
	var gatherer prometheus.Gatherer
	if cfg.MetricsOut != "" {
		reg := prometheus.NewRegistry()
		promRegistry, gatherer = reg, reg
	}

	seed := clock.Seed()
	gen := rng.NewSeeded(seed)
	lgr.Debug("Seeded key generator", zap.Uint32("seed", seed))

	kvs, err := openStore(cfg, lgr, statsCli, promRegistry)
	if err != nil {
		err = bench.OpenError(err)
		lgr.Error("Unable to open store", zap.String("engine", cfg.DbEngine), zap.String("folder", cfg.DbFolder), zap.Error(err))
		return bench.ExitCode(err)
	}

	err = bench.Dispatch(kvs, gen, posArgs,
		bench.WithNumEntries(cfg.NumEntries),
		bench.WithOutput(out),
		bench.WithLogger(lgr),
		bench.WithStats(statsCli),
	)
	if err != nil {
		lgr.Error("Benchmark failed", zap.Error(err))
	}

	// collectors are unregistered when the store closes
	if gatherer != nil {
		if merr := writeMetrics(gatherer, cfg.MetricsOut); merr != nil {
			lgr.Warn("Unable to write metrics", zap.String("file", cfg.MetricsOut), zap.Error(merr))
		}
	}
	if cerr := kvs.Close(); cerr != nil {
		lgr.Warn("Unable to close store", zap.Error(cerr))
	}
	return bench.ExitCode(err)
}

func setupLogger(cfg *opts.Config) *zap.Logger {
	if cfg.LogFile == "" {
		return zap.NewNop()
	}
	lgrConfig := zap.Config{
		Development:   false,
		Encoding:      "console",
		DisableCaller: true,

		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{cfg.LogFile},
		ErrorOutputPaths: []string{cfg.LogFile},
	}

	if cfg.Verbose {
		lgrConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		lgrConfig.EncoderConfig.StacktraceKey = "stacktrace"
	} else {
		lgrConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	lg, err := lgrConfig.Build()
	if err != nil {
		log.Printf("[WARN] Unable to configure logger. Error: %v\n", err)
		return zap.NewNop()
	}
	return lg
}

func setupStats(cfg *opts.Config, lgr *zap.Logger) stats.Client {
	if cfg.StatsdAddr != "" {
		return stats.NewStatsDClient(cfg.StatsdAddr, "kvbench.", lgr, stats.NewTag("engine", cfg.DbEngine))
	}
	return stats.NewNoOpClient()
}

func writeMetrics(gatherer prometheus.Gatherer, file string) error {
	metrics, err := stats.GetMetrics(gatherer)
	if err != nil {
		return err
	}
	buf, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(file, buf, 0644)
}
