// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package cluster

import (
	"context"
	"testing"
)

type fakeClient struct {
	batches       [][]Hit
	cursor        int
	clearedScroll string
}

func (f *fakeClient) Update(ctx context.Context, index, id, routing string, doc map[string]any) error {
	return nil
}
func (f *fakeClient) Get(ctx context.Context, index, id, routing string) (map[string]any, error) {
	return nil, nil
}

func (f *fakeClient) Scroll(ctx context.Context, req ScrollRequest) (*ScrollResult, error) {
	return f.nextBatch()
}

func (f *fakeClient) ScrollNext(ctx context.Context, scrollID string, keepAlive string) (*ScrollResult, error) {
	return f.nextBatch()
}

func (f *fakeClient) nextBatch() (*ScrollResult, error) {
	if f.cursor >= len(f.batches) {
		return &ScrollResult{ScrollID: "scroll-done", Hits: nil}, nil
	}
	hits := f.batches[f.cursor]
	f.cursor++
	return &ScrollResult{ScrollID: "scroll-id", Hits: hits}, nil
}

func (f *fakeClient) ClearScroll(ctx context.Context, scrollID string) error {
	f.clearedScroll = scrollID
	return nil
}

func TestStreamIteratesAllHitsAcrossBatches(t *testing.T) {
	client := &fakeClient{batches: [][]Hit{
		{{ID: "1"}, {ID: "2"}},
		{{ID: "3"}},
	}}

	stream, err := NewStream(context.Background(), client, ScrollRequest{Index: "docs", BatchSize: 2, KeepAlive: "1m"})
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	var ids []string
	for {
		hit, ok, err := stream.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		ids = append(ids, hit.ID)
	}

	want := []string{"1", "2", "3"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	if err := stream.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if client.clearedScroll == "" {
		t.Error("expected Close() to clear the scroll context")
	}
}

func TestStreamEmpty(t *testing.T) {
	client := &fakeClient{}
	stream, err := NewStream(context.Background(), client, ScrollRequest{Index: "docs"})
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	_, ok, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ok {
		t.Error("expected no hits from an empty index")
	}
}
