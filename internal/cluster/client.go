// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package cluster wraps the Elasticsearch client behind a narrow interface
// scoped to exactly what the translation pipeline needs: streaming hits
// out of one index via scroll, updating a single document's target field,
// and fetching one document by reference for the deferred-task bridge.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Client is the slice of Elasticsearch behavior the engine depends on.
// Concrete instances are never shared across workers: each worker creates
// its own Client so a slow or blocked connection can't stall its peers.
type Client interface {
	Update(ctx context.Context, index, id, routing string, doc map[string]any) error
	Get(ctx context.Context, index, id, routing string) (map[string]any, error)
	Scroll(ctx context.Context, req ScrollRequest) (*ScrollResult, error)
	ScrollNext(ctx context.Context, scrollID string, keepAlive string) (*ScrollResult, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// ScrollRequest opens a new scroll cursor against one index. Source lists
// the _source fields to return: nil returns the whole _source, a non-nil
// empty slice returns no _source at all.
type ScrollRequest struct {
	Index       string
	QueryString string
	Source      []string
	BatchSize   int
	KeepAlive   string
}

// Hit is one document returned by a scroll batch.
type Hit struct {
	Index   string
	ID      string
	Routing string
	Source  map[string]any
}

// ScrollResult is one page of a scroll cursor.
type ScrollResult struct {
	ScrollID string
	Hits     []Hit
}

// esClient is the Client backed by a real Elasticsearch cluster.
type esClient struct {
	es *elasticsearch.Client
}

// NewClient builds a Client against the given Elasticsearch URL.
func NewClient(url string) (Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &esClient{es: es}, nil
}

// Update issues a partial update carrying only doc, so fields the
// translation pipeline doesn't own are left untouched.
func (c *esClient) Update(ctx context.Context, index, id, routing string, doc map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": doc})
	if err != nil {
		return fmt.Errorf("marshal update body: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}
	if routing != "" {
		req.Routing = routing
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("update %s/%s: %s", index, id, res.String())
	}
	return nil
}

// Get fetches a single document's source by reference.
func (c *esClient) Get(ctx context.Context, index, id, routing string) (map[string]any, error) {
	req := esapi.GetRequest{Index: index, DocumentID: id}
	if routing != "" {
		req.Routing = routing
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("get %s/%s: %s", index, id, res.String())
	}

	var decoded struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode get response for %s/%s: %w", index, id, err)
	}
	return decoded.Source, nil
}

// Scroll opens a new scroll cursor for req, honoring a query-string filter
// when set and projecting only the configured source fields.
func (c *esClient) Scroll(ctx context.Context, req ScrollRequest) (*ScrollResult, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if req.QueryString != "" {
		query = map[string]any{"query_string": map[string]any{"query": req.QueryString}}
	}
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal scroll query: %w", err)
	}

	searchReq := esapi.SearchRequest{
		Index:          []string{req.Index},
		Body:           bytes.NewReader(body),
		Scroll:         parseDuration(req.KeepAlive),
		Size:           intPtr(req.BatchSize),
		SourceIncludes: req.Source,
	}
	if req.Source != nil && len(req.Source) == 0 {
		searchReq.Source = []string{"false"}
	}
	res, err := searchReq.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("open scroll on %s: %w", req.Index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("open scroll on %s: %s", req.Index, res.String())
	}
	return decodeScrollResponse(res.Body)
}

// ScrollNext advances an already-open scroll cursor.
func (c *esClient) ScrollNext(ctx context.Context, scrollID string, keepAlive string) (*ScrollResult, error) {
	req := esapi.ScrollRequest{ScrollID: scrollID, Scroll: parseDuration(keepAlive)}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("advance scroll: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("advance scroll: %s", res.String())
	}
	return decodeScrollResponse(res.Body)
}

// ClearScroll releases server-side scroll context once the engine is done
// with it, regardless of whether it was fully exhausted.
func (c *esClient) ClearScroll(ctx context.Context, scrollID string) error {
	if scrollID == "" {
		return nil
	}
	req := esapi.ClearScrollRequest{ScrollID: []string{scrollID}}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("clear scroll: %w", err)
	}
	defer res.Body.Close()
	return nil
}

func decodeScrollResponse(body io.Reader) (*ScrollResult, error) {
	var decoded struct {
		ScrollID string `json:"_scroll_id"`
		Hits     struct {
			Hits []struct {
				Index   string         `json:"_index"`
				ID      string         `json:"_id"`
				Routing string         `json:"_routing"`
				Source  map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode scroll response: %w", err)
	}

	result := &ScrollResult{ScrollID: decoded.ScrollID}
	for _, h := range decoded.Hits.Hits {
		result.Hits = append(result.Hits, Hit{Index: h.Index, ID: h.ID, Routing: h.Routing, Source: h.Source})
	}
	return result, nil
}

func intPtr(n int) *int { return &n }
