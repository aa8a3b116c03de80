// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pending   int
	snapshots map[string]WorkerSnapshot
}

func (f *fakeSource) PendingCount(ctx context.Context) (int, error) { return f.pending, nil }
func (f *fakeSource) WorkerSnapshots(ctx context.Context) (map[string]WorkerSnapshot, error) {
	return f.snapshots, nil
}

func TestNewDefaultStats(t *testing.T) {
	src := &fakeSource{}
	m := New(src, 2*time.Second, 120*time.Second)
	stats := m.Stats()

	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, 0, stats.CompletedTasks)
	assert.Nil(t, stats.InitialPending)
	assert.Empty(t, stats.ThroughputHistory)
	assert.Equal(t, 0.0, stats.PeakThroughput)
}

func TestRefreshFirstSampleEstablishesBaseline(t *testing.T) {
	src := &fakeSource{
		pending: 10,
		snapshots: map[string]WorkerSnapshot{
			"worker1": {Active: 1, Reserved: 0, Processed: 50},
		},
	}
	m := New(src, 2*time.Second, 120*time.Second)

	require.NoError(t, m.Refresh(context.Background()))
	stats := m.Stats()

	require.NotNil(t, stats.InitialPending)
	assert.Equal(t, 61, *stats.InitialPending)
	assert.Equal(t, 61, stats.TotalTasks)
	assert.Equal(t, 50, stats.CompletedTasks)
	assert.Equal(t, 10, stats.PendingTasks)
	assert.Equal(t, 1, stats.ActiveTasks)

	worker := stats.Workers["worker1"]
	assert.Equal(t, 0.0, worker.Throughput, "baseline sample must not spike from historical counters")
}

func TestThroughputHistoryBoundedLength(t *testing.T) {
	src := &fakeSource{snapshots: map[string]WorkerSnapshot{}}
	m := New(src, 10*time.Millisecond, 50*time.Millisecond)
	require.Equal(t, 5, m.historyLen)

	for i := 0; i < 20; i++ {
		src.pending = i
		require.NoError(t, m.Refresh(context.Background()))
		time.Sleep(12 * time.Millisecond)
	}

	assert.LessOrEqual(t, len(m.Stats().ThroughputHistory), 5)
}

func TestPeakThroughputTracksSessionMax(t *testing.T) {
	src := &fakeSource{snapshots: map[string]WorkerSnapshot{"w": {Processed: 0}}}
	m := New(src, 10*time.Millisecond, 200*time.Millisecond)

	require.NoError(t, m.Refresh(context.Background()))
	time.Sleep(15 * time.Millisecond)
	src.snapshots["w"] = WorkerSnapshot{Processed: 100}
	require.NoError(t, m.Refresh(context.Background()))
	peakAfterBurst := m.Stats().PeakThroughput

	time.Sleep(15 * time.Millisecond)
	src.snapshots["w"] = WorkerSnapshot{Processed: 100}
	require.NoError(t, m.Refresh(context.Background()))

	assert.Greater(t, peakAfterBurst, 0.0)
	assert.Equal(t, peakAfterBurst, m.Stats().PeakThroughput, "peak must not decay once set")
}

func TestAverageThroughputAndETA(t *testing.T) {
	stats := Stats{ThroughputHistory: []float64{2, 4, 6}, PendingTasks: 10, ActiveTasks: 0}
	assert.Equal(t, 4.0, stats.AverageThroughput())

	eta, ok := stats.ETA()
	require.True(t, ok)
	assert.Equal(t, 2500*time.Millisecond, eta)
}

func TestETAUnknownWithoutThroughput(t *testing.T) {
	stats := Stats{}
	_, ok := stats.ETA()
	assert.False(t, ok)
}
