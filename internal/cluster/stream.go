// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package cluster

import "context"

// Stream iterates every hit matching a ScrollRequest one batch at a time,
// never holding more than the current batch in memory. Callers MUST call
// Close once done, whether or not the stream was exhausted, to release
// the server-side scroll context.
type Stream struct {
	client    Client
	keepAlive string
	scrollID  string
	buffer    []Hit
	done      bool
}

// NewStream opens a scroll cursor and returns a Stream over its hits.
func NewStream(ctx context.Context, client Client, req ScrollRequest) (*Stream, error) {
	result, err := client.Scroll(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream{
		client:    client,
		keepAlive: req.KeepAlive,
		scrollID:  result.ScrollID,
		buffer:    result.Hits,
	}, nil
}

// Next returns the next hit in scroll order, and false once the stream is
// exhausted. It fetches the next batch transparently when the current one
// runs out.
func (s *Stream) Next(ctx context.Context) (Hit, bool, error) {
	for len(s.buffer) == 0 {
		if s.done {
			return Hit{}, false, nil
		}
		result, err := s.client.ScrollNext(ctx, s.scrollID, s.keepAlive)
		if err != nil {
			return Hit{}, false, err
		}
		s.scrollID = result.ScrollID
		s.buffer = result.Hits
		if len(result.Hits) == 0 {
			s.done = true
		}
	}
	hit := s.buffer[0]
	s.buffer = s.buffer[1:]
	return hit, true, nil
}

// Close releases the server-side scroll context.
func (s *Stream) Close(ctx context.Context) error {
	return s.client.ClearScroll(ctx, s.scrollID)
}
