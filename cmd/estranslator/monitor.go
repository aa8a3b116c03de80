// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ICIJ/es-translator/internal/config"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/monitor"
	"github.com/ICIJ/es-translator/internal/queue"
	"github.com/ICIJ/es-translator/internal/ui"
)

// queueSource adapts a queue.Queue to monitor.Source. Worker-level
// telemetry has no durable registry in this implementation (the original
// read it from Celery's inspect() RPC, which has no Go equivalent here),
// so WorkerSnapshots reports an empty set; queue depth still drives the
// pending-task half of the dashboard.
type queueSource struct {
	q *queue.Queue
}

func (s *queueSource) PendingCount(ctx context.Context) (int, error) {
	return s.q.Len(ctx)
}

func (s *queueSource) WorkerSnapshots(ctx context.Context) (map[string]monitor.WorkerSnapshot, error) {
	return map[string]monitor.WorkerSnapshot{}, nil
}

// runMonitor executes the 'monitor' command: a live terminal view over
// the fleet monitor's data model (§4.I), polling at --refresh-interval.
func runMonitor(args []string, globals GlobalFlags) {
	defaults, err := config.Defaults()
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}

	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	brokerURL := fs.String("broker-url", defaults.BrokerURL, "Redis broker URL")
	queueName := fs.String("queue", queue.DefaultQueueName, "Queue name")
	refreshInterval := fs.Duration("refresh-interval", 2*time.Second, "How often to refresh stats")
	historyDuration := fs.Duration("history-duration", 2*time.Minute, "Throughput history window")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: estranslator monitor [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	q := queue.New(*brokerURL, *queueName)
	defer q.Close()

	m := monitor.New(&queueSource{q: q}, *refreshInterval, *historyDuration)

	ui.Header("es-translator monitor")
	ui.Dim.Printf("Broker: %s  Queue: %s\n", *brokerURL, *queueName)

	ticker := time.NewTicker(*refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx); err != nil {
				ui.Warning(fmt.Sprintf("refresh failed: %v", err))
				continue
			}
			printMonitorLine(m.Stats())
		}
	}
}

func printMonitorLine(stats monitor.Stats) {
	eta := "calculating"
	if d, ok := stats.ETA(); ok {
		eta = d.Truncate(time.Second).String()
	}
	fmt.Printf(
		"pending=%d active=%d completed=%d/%d peak=%.2f/s avg=%.2f/s eta=%s\n",
		stats.PendingTasks, stats.ActiveTasks, stats.CompletedTasks, stats.TotalTasks,
		stats.PeakThroughput, stats.AverageThroughput(), eta,
	)
}
