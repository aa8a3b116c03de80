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

	flag "github.com/spf13/pflag"

	"github.com/ICIJ/es-translator/internal/cluster"
	"github.com/ICIJ/es-translator/internal/config"
	"github.com/ICIJ/es-translator/internal/document"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/factory"
	"github.com/ICIJ/es-translator/internal/queue"
	"github.com/ICIJ/es-translator/internal/ui"
)

// runTasks executes the 'tasks' command: a durable-queue worker that
// consumes deferred translation tasks (§4.G) one at a time, rehydrating
// the interpreter each task names and applying it to the referenced
// document.
func runTasks(args []string, globals GlobalFlags) {
	defaults, err := config.Defaults()
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	fs := flag.NewFlagSet("tasks", flag.ExitOnError)
	brokerURL := fs.String("broker-url", defaults.BrokerURL, "Redis broker URL")
	queueName := fs.String("queue", queue.DefaultQueueName, "Queue name")
	url := fs.String("url", defaults.URL, "Cluster endpoint URL")
	sourceField := fs.String("source-field", defaults.SourceField, "Document field to read")
	targetField := fs.String("target-field", defaults.TargetField, "Document field to write translations to")
	maxContentLength := fs.String("max-content-length", config.DefaultMaxContentLength, "Truncation limit")
	force := fs.Bool("force", false, "Re-translate even if a matching triple exists")
	device := fs.String("device", defaults.Device, "Argos compute device fallback when a task doesn't carry one")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: estranslator tasks [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	maxLen, err := config.ParseMaxContentLength(*maxContentLength)
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	logger := newLogger(globals)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	q := queue.New(*brokerURL, *queueName)
	defer q.Close()

	client, err := cluster.NewClient(*url)
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	ui.Header(fmt.Sprintf("Consuming tasks from %s", *queueName))
	spinner := NewSpinner(NewProgressConfig(globals), "Processing tasks")

	for {
		select {
		case <-ctx.Done():
			if spinner != nil {
				_ = spinner.Finish()
			}
			ui.Success("Task worker stopped")
			return
		default:
		}

		task, err := q.Dequeue(ctx)
		if err != nil {
			logger.Error("tasks.dequeue.failed", "err", err)
			continue
		}
		if task == nil {
			continue
		}

		if err := processTask(ctx, task, client, *sourceField, *targetField, *device, maxLen, *force, logger); err != nil {
			logger.Warn("tasks.process.failed", "id", task.Document.ID, "err", err)
		}
		if spinner != nil {
			_ = spinner.Add(1)
		}
	}
}

func processTask(ctx context.Context, task *queue.Task, client cluster.Client, sourceField, targetField, defaultDevice string, maxContentLength int64, force bool, logger *slog.Logger) error {
	device := task.Interpreter.Device
	if device == "" {
		device = defaultDevice
	}
	interp, err := factory.New(ctx, factory.Params{
		InterpreterName: task.Interpreter.Name,
		Source:          task.Interpreter.Source,
		Target:          task.Interpreter.Target,
		Intermediary:    task.Interpreter.Intermediary,
		DataDir:         task.Interpreter.PackDir,
		Device:          device,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("build interpreter: %w", err)
	}

	ref := task.Document
	source, err := client.Get(ctx, ref.Index, ref.ID, ref.Routing)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}

	sourceValue, _ := source[sourceField].(string)
	existing := document.ExtractTranslations(source[targetField])
	doc := document.New(ref.ID, ref.Index, ref.Routing, sourceValue, targetField, existing)
	if err := doc.AddTranslation(ctx, interp, maxContentLength, force); err != nil {
		return fmt.Errorf("translate document: %w", err)
	}
	return doc.Save(ctx, client)
}
