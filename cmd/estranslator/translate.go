// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ICIJ/es-translator/internal/cluster"
	"github.com/ICIJ/es-translator/internal/config"
	"github.com/ICIJ/es-translator/internal/engine"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/factory"
	"github.com/ICIJ/es-translator/internal/metrics"
	"github.com/ICIJ/es-translator/internal/queue"
	"github.com/ICIJ/es-translator/internal/ui"
)

// runTranslate executes the 'translate' command, running the engine
// (spec §4.F) to completion over one cluster/index.
func runTranslate(args []string, globals GlobalFlags) {
	defaults, err := config.Defaults()
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}
	if configPath := peekConfigFlag(args); configPath != "" {
		defaults, err = config.ApplyFile(defaults, configPath)
		if err != nil {
			esterrors.FatalError(err, globals.JSON)
		}
	}

	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	fs.String("config", "", "Path to a YAML project file overriding the environment defaults")
	url := fs.String("url", defaults.URL, "Cluster endpoint URL")
	index := fs.String("index", defaults.Index, "Index to read and update")
	sourceLang := fs.String("source-language", defaults.SourceLanguage, "Source language (ISO 639-1/639-3)")
	targetLang := fs.String("target-language", defaults.TargetLanguage, "Target language (ISO 639-1/639-3)")
	intermediary := fs.String("intermediary-language", defaults.IntermediaryLanguage, "Optional intermediary language for pivot translation")
	sourceField := fs.String("source-field", defaults.SourceField, "Document field to read")
	targetField := fs.String("target-field", defaults.TargetField, "Document field to write translations to")
	queryString := fs.String("query-string", defaults.QueryString, "Optional query filter; empty means all documents")
	dataDir := fs.String("data-dir", defaults.DataDir, "Writable directory for language packs")
	scanScroll := fs.String("scan-scroll", defaults.ScanScroll, "Scroll keep-alive duration")
	dryRun := fs.Bool("dry-run", defaults.DryRun, "Skip the final cluster update")
	force := fs.Bool("force", defaults.Force, "Re-translate even if a matching triple exists")
	poolSize := fs.Int("pool-size", defaults.PoolSize, "Worker count and queue capacity")
	poolTimeout := fs.Duration("pool-timeout", defaults.PoolTimeout, "Per-enqueue timeout")
	throttle := fs.Duration("throttle", 0, "Per-item post-work sleep")
	interp := fs.String("interpreter", defaults.Interpreter, "Interpreter backend: apertium|argos")
	device := fs.String("device", defaults.Device, "Argos compute device: cpu|cuda|auto")
	maxContentLength := fs.String("max-content-length", config.DefaultMaxContentLength, `Truncation limit: integer, or N/NK/NM/NG ("-1" = unlimited)`)
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics at this address (e.g. :9090); disabled when empty")
	plan := fs.Bool("plan", defaults.Plan, "Emit one task per document to a durable queue instead of translating in-process")
	brokerURL := fs.String("broker-url", defaults.BrokerURL, "Redis broker URL used in --plan mode")
	queueName := fs.String("queue", queue.DefaultQueueName, "Queue name used in --plan mode")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: estranslator translate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	maxLen := defaults.MaxContentLength
	if fs.Changed("max-content-length") {
		maxLen, err = config.ParseMaxContentLength(*maxContentLength)
		if err != nil {
			esterrors.FatalError(err, globals.JSON)
		}
	}

	cfg := config.Config{
		URL: *url, Index: *index,
		SourceLanguage: *sourceLang, TargetLanguage: *targetLang, IntermediaryLanguage: *intermediary,
		SourceField: *sourceField, TargetField: *targetField, QueryString: *queryString,
		DataDir: *dataDir, ScanScroll: *scanScroll, DryRun: *dryRun, Force: *force,
		PoolSize: *poolSize, PoolTimeout: *poolTimeout, Throttle: *throttle,
		Interpreter: *interp, MaxContentLength: maxLen, Device: *device,
		Plan: *plan, BrokerURL: *brokerURL,
	}
	if err := cfg.Validate(); err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	logger := newLogger(globals)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Plan {
		runPlanProducer(ctx, cfg, *queueName, globals, logger)
		return
	}

	ui.Header("Starting translation run")
	interpreter, err := factory.New(ctx, factory.Params{
		InterpreterName: cfg.Interpreter,
		Source:          cfg.SourceLanguage,
		Target:          cfg.TargetLanguage,
		Intermediary:    cfg.IntermediaryLanguage,
		DataDir:         cfg.DataDir,
		Device:          cfg.Device,
		Logger:          logger,
	})
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	client, err := cluster.NewClient(cfg.URL)
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	stream, err := cluster.NewStream(ctx, client, cluster.ScrollRequest{
		Index:       cfg.Index,
		QueryString: cfg.QueryString,
		Source:      []string{cfg.SourceField, cfg.TargetField},
		BatchSize:   cfg.PoolSize,
		KeepAlive:   cfg.ScanScroll,
	})
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}
	defer stream.Close(context.Background())

	eng := engine.New(engine.Config{
		SourceField:      cfg.SourceField,
		TargetField:      cfg.TargetField,
		MaxContentLength: cfg.MaxContentLength,
		Force:            cfg.Force,
		DryRun:           cfg.DryRun,
		PoolSize:         cfg.PoolSize,
		PoolTimeout:      cfg.PoolTimeout,
		ThrottleMs:       int(cfg.Throttle / time.Millisecond),
		ClusterURL:       cfg.URL,
	}, interpreter, func() (cluster.Client, error) { return cluster.NewClient(cfg.URL) }, logger)

	if *metricsAddr != "" {
		m := metrics.New()
		eng.WithMetrics(m)
		go func() {
			if err := m.Serve(ctx, *metricsAddr); err != nil {
				logger.Error("translate.metrics.serve.failed", "err", err)
			}
		}()
		ui.Dim.Printf("Serving metrics at %s/metrics\n", *metricsAddr)
	}

	progressCfg := NewProgressConfig(globals)
	spinner := NewSpinner(progressCfg, "Translating documents")
	stopSpinner := make(chan struct{})
	if spinner != nil {
		go func() {
			ticker := time.NewTicker(150 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					_ = spinner.Add(1)
				case <-stopSpinner:
					return
				}
			}
		}()
	}

	runErr := eng.Run(ctx, stream)
	close(stopSpinner)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if runErr != nil {
		esterrors.FatalError(runErr, globals.JSON)
	}

	ui.Success(fmt.Sprintf("Translation run finished: %s", eng.State()))
}

// runPlanProducer implements §4.G's "plan" mode: rather than translating
// in-process, it streams {_routing, _id} over the index and emits one task
// per hit onto the durable queue for a remote `tasks` worker to pick up.
// No interpreter is constructed locally — the interpreter config is carried
// on the task for the remote worker to rehydrate.
func runPlanProducer(ctx context.Context, cfg config.Config, queueName string, globals GlobalFlags, logger *slog.Logger) {
	ui.Header("Starting translation plan (emitting tasks)")

	client, err := cluster.NewClient(cfg.URL)
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	stream, err := cluster.NewStream(ctx, client, cluster.ScrollRequest{
		Index:       cfg.Index,
		QueryString: cfg.QueryString,
		Source:      []string{},
		BatchSize:   cfg.PoolSize,
		KeepAlive:   cfg.ScanScroll,
	})
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}
	defer stream.Close(context.Background())

	q := queue.New(cfg.BrokerURL, queueName)
	defer q.Close()

	interp := queue.InterpreterConfig{
		Name:         cfg.Interpreter,
		Source:       cfg.SourceLanguage,
		Target:       cfg.TargetLanguage,
		Intermediary: cfg.IntermediaryLanguage,
		PackDir:      cfg.DataDir,
		Device:       cfg.Device,
	}

	spinner := NewSpinner(NewProgressConfig(globals), "Emitting tasks")
	count := 0
	for {
		hit, ok, err := stream.Next(ctx)
		if err != nil {
			esterrors.FatalError(err, globals.JSON)
		}
		if !ok {
			break
		}

		ref := queue.DocumentRef{Index: hit.Index, ID: hit.ID, Routing: hit.Routing}
		if err := q.Enqueue(ctx, interp, ref); err != nil {
			logger.Error("translate.plan.enqueue.failed", "id", hit.ID, "err", err)
			esterrors.FatalError(err, globals.JSON)
		}
		count++
		if spinner != nil {
			_ = spinner.Add(1)
		}
	}
	if spinner != nil {
		_ = spinner.Finish()
	}

	ui.Success(fmt.Sprintf("Emitted %d task(s) onto %q", count, queueName))
}

// peekConfigFlag extracts --config's value (if present) before the main
// flag set is built, so a project file's settings can seed the other
// flags' defaults and still lose to anything the user passes explicitly.
func peekConfigFlag(args []string) string {
	fs := flag.NewFlagSet("translate-config-peek", flag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose == 1:
		level = slog.LevelInfo
	}
	if globals.Quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
