// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerExposesRecordedCounters(t *testing.T) {
	m := New()
	m.TranslationStarted()
	m.TranslationSucceeded()
	m.TranslationFailed()
	m.SaveFailed()
	m.QueueFull()

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), "estranslator_documents_started_total 1")
	require.Contains(t, string(body), "estranslator_documents_saved_total 1")
	require.Contains(t, string(body), "estranslator_translation_failures_total 1")
	require.Contains(t, string(body), "estranslator_save_failures_total 1")
	require.Contains(t, string(body), "estranslator_queue_full_total 1")
}

func TestNoopRecorderDiscardsEverything(t *testing.T) {
	Noop.TranslationStarted()
	Noop.TranslationSucceeded()
	Noop.TranslationFailed()
	Noop.SaveFailed()
	Noop.QueueFull()
}
