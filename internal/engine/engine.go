// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package engine runs the bounded worker-pool that drives documents from a
// cluster.Stream through an interpreter and back to the cluster as saved
// translations.
//
// A run passes through Initialising, Streaming, Draining (or
// FatalDraining once a save-side failure trips the shared fatal cell),
// and finally Done or Error. Workers are independent: the only
// coordination point besides the bounded queue is the fatal cell, written
// at most once by whichever worker first hits a cluster-side failure.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ICIJ/es-translator/internal/cluster"
	"github.com/ICIJ/es-translator/internal/document"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/interpreter"
	"github.com/ICIJ/es-translator/internal/metrics"
)

// State is the engine's run-level state machine position.
type State int

const (
	Initialising State = iota
	Streaming
	Draining
	FatalDraining
	Done
	Error
)

func (s State) String() string {
	switch s {
	case Initialising:
		return "initialising"
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case FatalDraining:
		return "fatal_draining"
	case Done:
		return "done"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Config is the frozen configuration a single engine run is parameterized
// by.
type Config struct {
	SourceField      string
	TargetField      string
	MaxContentLength int64
	Force            bool
	DryRun           bool
	PoolSize         int
	PoolTimeout      time.Duration
	ThrottleMs       int
	ClusterURL       string
}

// ClientFactory builds a fresh cluster.Client for each document a worker
// saves, so a slow connection never stalls its peers.
type ClientFactory func() (cluster.Client, error)

// Engine drives one translation run over a stream of hits using interp.
type Engine struct {
	config        Config
	interp        interpreter.Interpreter
	newClient     ClientFactory
	logger        *slog.Logger
	metrics       metrics.Recorder
	state         atomic.Int32
	fatalCell     atomic.Pointer[error]
	fatalCellOnce sync.Once
}

// New builds an Engine ready to Run a stream.
func New(config Config, interp interpreter.Interpreter, newClient ClientFactory, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PoolSize <= 0 {
		config.PoolSize = 1
	}
	e := &Engine{config: config, interp: interp, newClient: newClient, logger: logger, metrics: metrics.Noop}
	e.setState(Initialising)
	return e
}

// WithMetrics attaches a Recorder that receives per-document and
// per-enqueue events, returning e for chaining. Engines built via New
// report to a no-op Recorder until this is called.
func (e *Engine) WithMetrics(m metrics.Recorder) *Engine {
	if m != nil {
		e.metrics = m
	}
	return e
}

// State returns the engine's current run-level state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// setFatal records err as the shared fatal cell if and only if it hasn't
// already been set; the first writer wins, matching a single-writer
// guarantee workers and the producer can both rely on.
func (e *Engine) setFatal(err error) {
	e.fatalCellOnce.Do(func() {
		e.fatalCell.Store(&err)
		e.setState(FatalDraining)
	})
}

func (e *Engine) fatal() error {
	p := e.fatalCell.Load()
	if p == nil {
		return nil
	}
	return *p
}

// work is one unit the producer enqueues and a worker processes.
type work struct {
	hit cluster.Hit
}

// Streamer is the hit source a run pulls from. *cluster.Stream implements
// it; tests substitute a fake to exercise the pool without a real cluster.
type Streamer interface {
	Next(ctx context.Context) (cluster.Hit, bool, error)
}

// Run streams every hit from stream through the worker pool, translating
// and (unless DryRun) saving each one. It returns once every enqueued hit
// has been processed (queue join) and the stream is exhausted. Once the
// shared fatal cell trips, the producer stops streaming, the workers drain
// what is already queued, and Run returns a FatalTranslationError.
func (e *Engine) Run(ctx context.Context, stream Streamer) error {
	return e.run(ctx, stream.Next)
}

func (e *Engine) run(ctx context.Context, next func(context.Context) (cluster.Hit, bool, error)) error {
	e.setState(Streaming)

	queue := make(chan work, e.config.PoolSize)
	var wg sync.WaitGroup
	for i := 0; i < e.config.PoolSize; i++ {
		wg.Add(1)
		go e.worker(ctx, queue, &wg)
	}

	var enqueueErr error
produce:
	for {
		if e.fatal() != nil {
			break produce
		}
		hit, ok, err := next(ctx)
		if err != nil {
			enqueueErr = err
			break produce
		}
		if !ok {
			break produce
		}

		// QueueFull: warn and retry the same hit, per the spec's error
		// taxonomy — it was never consumed off the stream, so there's
		// nothing to lose by trying again. Stop retrying if the fatal
		// cell trips while we wait.
		for {
			err := e.enqueue(ctx, queue, work{hit: hit})
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				enqueueErr = ctx.Err()
				break produce
			}
			e.logger.Warn("engine.queue.full", "timeout", e.config.PoolTimeout)
			if e.fatal() != nil {
				break produce
			}
		}
	}

	if e.State() == FatalDraining {
		e.logger.Info("engine.state.fatal_draining")
	} else {
		e.setState(Draining)
	}

	close(queue)
	wg.Wait()

	if fatalErr := e.fatal(); fatalErr != nil {
		e.setState(Error)
		return esterrors.NewFatalTranslation(fatalErr)
	}
	if enqueueErr != nil {
		e.setState(Error)
		return enqueueErr
	}
	e.setState(Done)
	return nil
}

// enqueue attempts to push item onto queue, returning a QueueFullError if
// PoolTimeout elapses first.
func (e *Engine) enqueue(ctx context.Context, queue chan<- work, item work) error {
	if e.config.PoolTimeout <= 0 {
		select {
		case queue <- item:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	timer := time.NewTimer(e.config.PoolTimeout)
	defer timer.Stop()
	select {
	case queue <- item:
		return nil
	case <-timer.C:
		e.metrics.QueueFull()
		return esterrors.NewQueueFull(e.config.PoolTimeout.Seconds())
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) worker(ctx context.Context, queue <-chan work, wg *sync.WaitGroup) {
	defer wg.Done()
	for item := range queue {
		if e.fatal() != nil {
			// FatalDraining: drain remaining queued items without doing
			// any more work so the producer's queue join completes.
			continue
		}
		e.processOne(ctx, item.hit)
		if e.config.ThrottleMs > 0 {
			time.Sleep(time.Duration(e.config.ThrottleMs) * time.Millisecond)
		}
	}
}

func (e *Engine) processOne(ctx context.Context, hit cluster.Hit) {
	e.logger.Info("engine.document.translate.start", "id", hit.ID, "index", hit.Index)
	e.metrics.TranslationStarted()

	sourceValue, _ := hit.Source[e.config.SourceField].(string)
	existing := document.ExtractTranslations(hit.Source[e.config.TargetField])
	doc := document.New(hit.ID, hit.Index, hit.Routing, sourceValue, e.config.TargetField, existing)

	if err := doc.AddTranslation(ctx, e.interp, e.config.MaxContentLength, e.config.Force); err != nil {
		e.logger.Warn("engine.document.translate.failed", "id", hit.ID, "err", err)
		e.metrics.TranslationFailed()
		return
	}

	if e.config.DryRun {
		e.logger.Info("engine.document.translate.complete", "id", hit.ID, "dry_run", true)
		e.metrics.TranslationSucceeded()
		return
	}

	client, err := e.newClient()
	if err != nil {
		e.setFatal(fmt.Errorf("create cluster client: %w", err))
		e.metrics.SaveFailed()
		return
	}
	if err := doc.Save(ctx, client); err != nil {
		e.setFatal(esterrors.NewSaveFailure(hit.ID, err))
		e.metrics.SaveFailed()
		return
	}
	e.logger.Info("engine.document.save.complete", "id", hit.ID)
	e.metrics.TranslationSucceeded()
}

