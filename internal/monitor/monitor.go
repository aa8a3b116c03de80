// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package monitor implements the data model behind the optional fleet
// monitor (spec §4.I): a polled snapshot of queue depth and per-worker
// throughput, with a bounded throughput history and a session peak.
//
// It deliberately stops at the data model. Rendering a live terminal
// dashboard from a Stats snapshot is cmd/estranslator's job, the same way
// the original's rich/plotext dashboard was a thin view over its own
// MonitorStats dataclass.
package monitor

import (
	"context"
	"time"
)

// WorkerSnapshot is one worker's instantaneous state, as reported by a
// Source. Processed is cumulative since the worker started, mirroring the
// Celery `stats()["total"]` counter the original polled.
type WorkerSnapshot struct {
	Active    int
	Reserved  int
	Processed int
}

// Source is whatever backs the monitor's polling: a durable queue plus
// whatever reports worker liveness. The durable queue (internal/queue)
// satisfies the pending half directly; worker snapshots come from
// wherever workers publish their own counters (left external, as the
// spec has no durable worker-registry component).
type Source interface {
	PendingCount(ctx context.Context) (int, error)
	WorkerSnapshots(ctx context.Context) (map[string]WorkerSnapshot, error)
}

// WorkerStats is one worker's state plus its derived throughput.
type WorkerStats struct {
	Active     int
	Reserved   int
	Processed  int
	Throughput float64
}

// Stats is the monitor's full snapshot, shaped after the original's
// MonitorStats dataclass field for field.
type Stats struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	ActiveTasks    int
	FailedTasks    int

	Workers map[string]WorkerStats

	ThroughputHistory []float64
	PeakThroughput    float64

	StartTime time.Time

	// InitialPending is nil until the first sample, mirroring the
	// original's Optional[int] baseline marker.
	InitialPending *int

	lastProcessed      map[string]int
	lastCompletedCount int
	lastCheckTime      time.Time
}

// Monitor polls a Source at RefreshInterval and maintains a Stats
// snapshot, including a throughput history bounded to HistoryLen samples.
type Monitor struct {
	source          Source
	refreshInterval time.Duration
	historyLen      int
	stats           Stats
}

// New builds a Monitor. historyDuration/refreshInterval (rounded down,
// minimum 1) sets how many throughput samples are retained, mirroring the
// original's maxlen=60 deque sized for a 2s interval over two minutes.
func New(source Source, refreshInterval, historyDuration time.Duration) *Monitor {
	historyLen := 1
	if refreshInterval > 0 && historyDuration > refreshInterval {
		historyLen = int(historyDuration / refreshInterval)
	}
	now := time.Now()
	return &Monitor{
		source:          source,
		refreshInterval: refreshInterval,
		historyLen:      historyLen,
		stats: Stats{
			Workers:       map[string]WorkerStats{},
			lastProcessed: map[string]int{},
			StartTime:     now,
			lastCheckTime: now,
		},
	}
}

// Stats returns a snapshot of the monitor's current state.
func (m *Monitor) Stats() Stats {
	return m.stats
}

// Refresh polls the source once, folding the result into Stats. The first
// call establishes the baseline (initial_pending, last_completed_count) so
// that the very first throughput measurement is zero rather than a spike
// from historical totals, exactly as the original's get_celery_stats does.
func (m *Monitor) Refresh(ctx context.Context) error {
	pending, err := m.source.PendingCount(ctx)
	if err != nil {
		return err
	}
	snapshots, err := m.source.WorkerSnapshots(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	elapsed := now.Sub(m.stats.lastCheckTime)

	workers := make(map[string]WorkerStats, len(snapshots))
	totalProcessed := 0
	activeTasks := 0
	for name, snap := range snapshots {
		totalProcessed += snap.Processed
		activeTasks += snap.Active

		var throughput float64
		if elapsed > 0 && m.stats.InitialPending != nil {
			last := m.stats.lastProcessed[name]
			throughput = float64(snap.Processed-last) / elapsed.Seconds()
		}
		m.stats.lastProcessed[name] = snap.Processed

		workers[name] = WorkerStats{
			Active:     snap.Active,
			Reserved:   snap.Reserved,
			Processed:  snap.Processed,
			Throughput: throughput,
		}
	}

	m.stats.Workers = workers
	m.stats.PendingTasks = pending
	m.stats.ActiveTasks = activeTasks
	m.stats.CompletedTasks = totalProcessed

	currentTotal := pending + activeTasks + totalProcessed
	if m.stats.InitialPending == nil {
		initial := currentTotal
		m.stats.InitialPending = &initial
		m.stats.TotalTasks = currentTotal
		m.stats.lastCompletedCount = totalProcessed
	} else if currentTotal > *m.stats.InitialPending {
		m.stats.TotalTasks = currentTotal
	} else {
		m.stats.TotalTasks = *m.stats.InitialPending
	}

	m.updateThroughput(now, elapsed)
	return nil
}

func (m *Monitor) updateThroughput(now time.Time, elapsed time.Duration) {
	if elapsed < m.refreshInterval {
		return
	}
	completed := m.stats.CompletedTasks - m.stats.lastCompletedCount
	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(completed) / elapsed.Seconds()
	}

	m.stats.ThroughputHistory = append(m.stats.ThroughputHistory, throughput)
	if len(m.stats.ThroughputHistory) > m.historyLen {
		m.stats.ThroughputHistory = m.stats.ThroughputHistory[len(m.stats.ThroughputHistory)-m.historyLen:]
	}
	if throughput > m.stats.PeakThroughput {
		m.stats.PeakThroughput = throughput
	}
	m.stats.lastCompletedCount = m.stats.CompletedTasks
	m.stats.lastCheckTime = now
}

// Remaining is how many tasks are left to process, the basis for the
// original's ETA calculation.
func (s Stats) Remaining() int {
	return s.PendingTasks + s.ActiveTasks
}

// AverageThroughput is the mean of the retained throughput samples, or
// zero when nothing has been sampled yet.
func (s Stats) AverageThroughput() float64 {
	if len(s.ThroughputHistory) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range s.ThroughputHistory {
		total += v
	}
	return total / float64(len(s.ThroughputHistory))
}

// ETA estimates time remaining from the average throughput, returning
// false when throughput is still unmeasured.
func (s Stats) ETA() (time.Duration, bool) {
	avg := s.AverageThroughput()
	if avg <= 0 {
		return 0, false
	}
	seconds := float64(s.Remaining()) / avg
	return time.Duration(seconds * float64(time.Second)), true
}
