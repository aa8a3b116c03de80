// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package document

import (
	"context"
	"errors"
	"testing"
)

type stubInterpreter struct {
	name         string
	source       string
	target       string
	translateErr error
	calls        int
}

func (s *stubInterpreter) Name() string                 { return s.name }
func (s *stubInterpreter) SourceName() (string, error)  { return s.source, nil }
func (s *stubInterpreter) TargetName() (string, error)  { return s.target, nil }
func (s *stubInterpreter) HasPair() bool                { return true }
func (s *stubInterpreter) IsPairAvailable() bool         { return true }
func (s *stubInterpreter) Translate(ctx context.Context, text string) (string, error) {
	s.calls++
	if s.translateErr != nil {
		return "", s.translateErr
	}
	return "translated:" + text, nil
}

func TestAddTranslationAppendsRecord(t *testing.T) {
	d := New("1", "idx", "", "hello", "tags", nil)
	interp := &stubInterpreter{name: "apertium", source: "english", target: "spanish"}

	if err := d.AddTranslation(context.Background(), interp, -1, false); err != nil {
		t.Fatalf("AddTranslation() error = %v", err)
	}
	if len(d.Translations) != 1 {
		t.Fatalf("expected 1 translation, got %d", len(d.Translations))
	}
	got := d.Translations[0]
	if got.Content != "translated:hello" || got.SourceName != "ENGLISH" || got.TargetName != "SPANISH" || got.Translator != "APERTIUM" {
		t.Errorf("unexpected translation record: %+v", got)
	}
}

func TestAddTranslationIdempotentWithoutForce(t *testing.T) {
	d := New("1", "idx", "", "hello", "tags", nil)
	interp := &stubInterpreter{name: "apertium", source: "english", target: "spanish"}

	for i := 0; i < 3; i++ {
		if err := d.AddTranslation(context.Background(), interp, -1, false); err != nil {
			t.Fatalf("AddTranslation() call %d error = %v", i, err)
		}
	}
	if len(d.Translations) != 1 {
		t.Fatalf("expected exactly 1 translation record, got %d", len(d.Translations))
	}
	if interp.calls != 1 {
		t.Fatalf("expected exactly 1 back-end Translate call, got %d", interp.calls)
	}
}

func TestAddTranslationForceRetranslates(t *testing.T) {
	d := New("1", "idx", "", "hello", "tags", nil)
	interp := &stubInterpreter{name: "apertium", source: "english", target: "spanish"}

	if err := d.AddTranslation(context.Background(), interp, -1, false); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if err := d.AddTranslation(context.Background(), interp, -1, true); err != nil {
		t.Fatalf("forced call error = %v", err)
	}
	if len(d.Translations) != 2 {
		t.Fatalf("expected 2 translation records after force, got %d", len(d.Translations))
	}
	if interp.calls != 2 {
		t.Fatalf("expected 2 back-end Translate calls, got %d", interp.calls)
	}
}

func TestAddTranslationTruncatesContent(t *testing.T) {
	d := New("1", "idx", "", "hello", "tags", nil)
	interp := &stubInterpreter{name: "apertium", source: "english", target: "spanish"}

	if err := d.AddTranslation(context.Background(), interp, 6, false); err != nil {
		t.Fatalf("AddTranslation() error = %v", err)
	}
	if got := d.Translations[0].Content; got != "transl" {
		t.Errorf("Content = %q, want truncated to 6 bytes %q", got, "transl")
	}
}

func TestAddTranslationPropagatesBackendError(t *testing.T) {
	d := New("1", "idx", "", "hello", "tags", nil)
	wantErr := errors.New("backend down")
	interp := &stubInterpreter{name: "apertium", source: "english", target: "spanish", translateErr: wantErr}

	if err := d.AddTranslation(context.Background(), interp, -1, false); !errors.Is(err, wantErr) {
		t.Errorf("expected backend error to propagate, got %v", err)
	}
	if len(d.Translations) != 0 {
		t.Error("expected no translation record on backend failure")
	}
}

func TestExtractTranslationsDecodesRecords(t *testing.T) {
	raw := []any{
		map[string]any{"content": "hola", "source_language": "EN", "target_language": "ES", "translator": "APERTIUM"},
		map[string]any{"content": "salut", "source_language": "EN", "target_language": "FR", "translator": "ARGOS"},
	}
	got := ExtractTranslations(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 translations, got %d", len(got))
	}
	if got[0].Content != "hola" || got[0].TargetName != "ES" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Content != "salut" || got[1].TargetName != "FR" {
		t.Errorf("unexpected second record: %+v", got[1])
	}
}

func TestExtractTranslationsToleratesMissingOrWrongShape(t *testing.T) {
	if got := ExtractTranslations(nil); got != nil {
		t.Errorf("expected nil for a missing field, got %+v", got)
	}
	if got := ExtractTranslations("not a list"); got != nil {
		t.Errorf("expected nil for an unexpected shape, got %+v", got)
	}
	raw := []any{"not a map", map[string]any{"content": "ok"}}
	got := ExtractTranslations(raw)
	if len(got) != 1 || got[0].Content != "ok" {
		t.Errorf("expected the non-map entry skipped and the map entry kept, got %+v", got)
	}
}

type recordingSaver struct {
	index, id, routing string
	doc                map[string]any
}

func (s *recordingSaver) Update(ctx context.Context, index, id, routing string, doc map[string]any) error {
	s.index, s.id, s.routing, s.doc = index, id, routing, doc
	return nil
}

func TestSaveScopesUpdateToTargetField(t *testing.T) {
	d := New("42", "my-index", "route-1", "hello", "tags", []Translation{{Content: "x", SourceName: "EN", TargetName: "ES", Translator: "APERTIUM"}})
	saver := &recordingSaver{}

	if err := d.Save(context.Background(), saver); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saver.index != "my-index" || saver.id != "42" || saver.routing != "route-1" {
		t.Errorf("Save() sent wrong identity: index=%q id=%q routing=%q", saver.index, saver.id, saver.routing)
	}
	if _, ok := saver.doc["tags"]; !ok {
		t.Errorf("Save() doc missing target field: %+v", saver.doc)
	}
	if len(saver.doc) != 1 {
		t.Errorf("Save() doc touches unrelated fields: %+v", saver.doc)
	}
}
