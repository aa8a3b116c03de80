// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package cluster

import "time"

// parseDuration interprets an Elasticsearch-style duration string (e.g.
// "1m", "30s") as a time.Duration. Both systems use the same suffix
// vocabulary for the units the pipeline needs, so this is a thin
// delegation to time.ParseDuration with a safe zero-value fallback.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
