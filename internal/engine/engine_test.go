// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ICIJ/es-translator/internal/cluster"
)

type fakeInterpreter struct {
	failOn string
}

func (f *fakeInterpreter) Name() string                { return "APERTIUM" }
func (f *fakeInterpreter) SourceName() (string, error)  { return "english", nil }
func (f *fakeInterpreter) TargetName() (string, error)  { return "spanish", nil }
func (f *fakeInterpreter) HasPair() bool                { return true }
func (f *fakeInterpreter) IsPairAvailable() bool         { return true }
func (f *fakeInterpreter) Translate(ctx context.Context, text string) (string, error) {
	if text == f.failOn {
		return "", errors.New("translate failed")
	}
	return "translated:" + text, nil
}

type fakeStream struct {
	hits []cluster.Hit
	idx  int
}

func (s *fakeStream) next(ctx context.Context) (cluster.Hit, bool, error) {
	if s.idx >= len(s.hits) {
		return cluster.Hit{}, false, nil
	}
	hit := s.hits[s.idx]
	s.idx++
	return hit, true, nil
}

type fakeSaveClient struct {
	failAlways bool
	saved      atomic.Int32
}

func (c *fakeSaveClient) Update(ctx context.Context, index, id, routing string, doc map[string]any) error {
	if c.failAlways {
		return errors.New("cluster down")
	}
	c.saved.Add(1)
	return nil
}
func (c *fakeSaveClient) Get(ctx context.Context, index, id, routing string) (map[string]any, error) {
	return nil, nil
}
func (c *fakeSaveClient) Scroll(ctx context.Context, req cluster.ScrollRequest) (*cluster.ScrollResult, error) {
	return nil, nil
}
func (c *fakeSaveClient) ScrollNext(ctx context.Context, scrollID, keepAlive string) (*cluster.ScrollResult, error) {
	return nil, nil
}
func (c *fakeSaveClient) ClearScroll(ctx context.Context, scrollID string) error { return nil }

func hits(ids ...string) []cluster.Hit {
	out := make([]cluster.Hit, len(ids))
	for i, id := range ids {
		out[i] = cluster.Hit{ID: id, Index: "docs", Source: map[string]any{"content": "hello-" + id}}
	}
	return out
}

func runEngine(t *testing.T, cfg Config, interp *fakeInterpreter, client *fakeSaveClient, hitList []cluster.Hit) error {
	t.Helper()
	stream := &fakeStream{hits: hitList}
	e := New(cfg, interp, func() (cluster.Client, error) { return client, nil }, nil)
	return e.run(context.Background(), stream.next)
}

func TestEngineTranslatesAndSavesAllHits(t *testing.T) {
	client := &fakeSaveClient{}
	interp := &fakeInterpreter{}
	cfg := Config{SourceField: "content", TargetField: "translations", PoolSize: 2, PoolTimeout: time.Second}

	err := runEngine(t, cfg, interp, client, hits("1", "2", "3"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if client.saved.Load() != 3 {
		t.Errorf("expected 3 saves, got %d", client.saved.Load())
	}
}

func TestEngineDryRunSkipsSave(t *testing.T) {
	client := &fakeSaveClient{}
	interp := &fakeInterpreter{}
	cfg := Config{SourceField: "content", TargetField: "translations", PoolSize: 1, PoolTimeout: time.Second, DryRun: true}

	if err := runEngine(t, cfg, interp, client, hits("1", "2")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if client.saved.Load() != 0 {
		t.Errorf("expected no saves in dry run, got %d", client.saved.Load())
	}
}

func TestEngineTranslationFailureIsWarnedNotFatal(t *testing.T) {
	client := &fakeSaveClient{}
	interp := &fakeInterpreter{failOn: "hello-2"}
	cfg := Config{SourceField: "content", TargetField: "translations", PoolSize: 1, PoolTimeout: time.Second}

	if err := runEngine(t, cfg, interp, client, hits("1", "2", "3")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if client.saved.Load() != 2 {
		t.Errorf("expected 2 successful saves despite one translation failure, got %d", client.saved.Load())
	}
}

func TestEngineSaveFailureTripsFatalCell(t *testing.T) {
	client := &fakeSaveClient{failAlways: true}
	interp := &fakeInterpreter{}
	cfg := Config{SourceField: "content", TargetField: "translations", PoolSize: 1, PoolTimeout: time.Second}

	err := runEngine(t, cfg, interp, client, hits("1", "2", "3"))
	if err == nil {
		t.Fatal("expected fatal translation error when saves fail")
	}
}
