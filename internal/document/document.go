// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package document wraps a single search hit with the translation
// bookkeeping the engine needs: the source text, the accumulated
// translation records, and the cluster identity (index, id, routing) used
// to save updates back without disturbing unrelated fields.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/ICIJ/es-translator/internal/interpreter"
)

// Translation is one recorded translation of a document's source value,
// keyed by the (source, target, translator) triple that produced it.
type Translation struct {
	Content    string `json:"content"`
	SourceName string `json:"source_language"`
	TargetName string `json:"target_language"`
	Translator string `json:"translator"`
}

// matches reports whether this translation was produced by the given
// (source, target, translator) triple, case-insensitively — the engine
// stores names uppercased but callers may compare in either case.
func (t Translation) matches(sourceName, targetName, translator string) bool {
	return strings.EqualFold(t.SourceName, sourceName) &&
		strings.EqualFold(t.TargetName, targetName) &&
		strings.EqualFold(t.Translator, translator)
}

// Saver is the narrow slice of cluster.Client a Document needs to persist
// itself, kept separate so document tests don't need a real ES client.
type Saver interface {
	Update(ctx context.Context, index, id, routing string, doc map[string]any) error
}

// Document wraps one search hit plus the field names it was read from.
type Document struct {
	ID           string
	Index        string
	Routing      string
	SourceValue  string
	TargetField  string
	Translations []Translation
}

// New builds a Document from a hit's fields. sourceValue is the text found
// at the configured source field; targetField is the field translations
// are written back under (by default "content_translated"); existing is any translations array already present on the hit.
func New(id, index, routing, sourceValue, targetField string, existing []Translation) *Document {
	return &Document{
		ID:           id,
		Index:        index,
		Routing:      routing,
		SourceValue:  sourceValue,
		TargetField:  targetField,
		Translations: existing,
	}
}

// HasTranslation reports whether a translation already exists for the
// given (source, target, translator) triple.
func (d *Document) HasTranslation(sourceName, targetName, translator string) bool {
	for _, t := range d.Translations {
		if t.matches(sourceName, targetName, translator) {
			return true
		}
	}
	return false
}

// AddTranslation translates SourceValue through interp unless a matching
// translation record already exists and force is false, then appends the
// result (truncated to maxContentLength bytes when non-negative) as a new
// record with uppercased language names. It is idempotent under repeated
// calls with force=false: at most one back-end Translate call is made per
// missing (source, target, translator) triple.
func (d *Document) AddTranslation(ctx context.Context, interp interpreter.Interpreter, maxContentLength int64, force bool) error {
	sourceName, err := interp.SourceName()
	if err != nil {
		return err
	}
	targetName, err := interp.TargetName()
	if err != nil {
		return err
	}
	translator := interp.Name()

	if !force && d.HasTranslation(sourceName, targetName, translator) {
		return nil
	}

	content, err := interp.Translate(ctx, d.SourceValue)
	if err != nil {
		return err
	}
	if maxContentLength >= 0 && int64(len(content)) > maxContentLength {
		content = truncateBytes(content, maxContentLength)
	}

	d.Translations = append(d.Translations, Translation{
		Content:    content,
		SourceName: strings.ToUpper(sourceName),
		TargetName: strings.ToUpper(targetName),
		Translator: strings.ToUpper(translator),
	})
	return nil
}

// ExtractTranslations best-effort decodes a document's pre-existing
// target-field value (as returned by a JSON-decoded cluster source) into
// Translation records, so both the in-process engine and a remote task
// worker derive the same idempotence state from the same field.
// Anything unrecognized is dropped rather than treated as fatal, since it
// only affects idempotence, not safety.
func ExtractTranslations(raw any) []Translation {
	rawList, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []Translation
	for _, item := range rawList {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Translation{
			Content:    stringField(m, "content"),
			SourceName: stringField(m, "source_language"),
			TargetName: stringField(m, "target_language"),
			Translator: stringField(m, "translator"),
		})
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8
// sequence in the middle.
func truncateBytes(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	b := []byte(s)
	if int64(len(b)) <= n {
		return s
	}
	cut := int(n)
	for cut > 0 && isUTF8Continuation(b[cut]) {
		cut--
	}
	return string(b[:cut])
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}

// Save persists Translations back to the cluster via a partial update
// scoped to TargetField, so any other field on the document is left
// untouched.
func (d *Document) Save(ctx context.Context, client Saver) error {
	doc := map[string]any{d.TargetField: d.Translations}
	if err := client.Update(ctx, d.Index, d.ID, d.Routing, doc); err != nil {
		return fmt.Errorf("save translations for %s: %w", d.ID, err)
	}
	return nil
}
