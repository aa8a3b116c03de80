// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import "strings"

// LangTree is a depth-bounded tree of languages reachable from a root
// language through the repository's known pairs, used to auto-discover an
// intermediary language when no direct pair package exists between source
// and target. Children is ordered by first occurrence in the pairs list
// BuildLangTree was given, so FirstPairsPath's search order is deterministic.
type LangTree struct {
	Lang       string
	childOrder []string
	Children   map[string]*LangTree
}

// BuildLangTree grows a LangTree rooted at lang out of pairs (each a
// "src-tgt" string), descending at most depth levels. depth 2 is enough to
// find a single intermediary language: root -> intermediary -> target.
func BuildLangTree(lang string, pairs []string, depth int) *LangTree {
	tree := &LangTree{Lang: lang, Children: map[string]*LangTree{}}
	if depth <= 0 {
		return tree
	}
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "-", 2)
		if len(parts) != 2 {
			continue
		}
		var other string
		switch lang {
		case parts[0]:
			other = parts[1]
		case parts[1]:
			other = parts[0]
		default:
			continue
		}
		if _, seen := tree.Children[other]; seen {
			continue
		}
		tree.childOrder = append(tree.childOrder, other)
		tree.Children[other] = BuildLangTree(other, pairs, depth-1)
	}
	return tree
}

// FirstPairsPath returns the first language path found from the tree's root
// down to lang, exclusive of the root itself, e.g. for a tree rooted at
// "en" containing "en-fr-es" it returns ["fr", "es"] when asked for "es".
// It returns nil if lang isn't reachable within the tree's depth.
func (t *LangTree) FirstPairsPath(lang string) []string {
	for _, childLang := range t.childOrder {
		child := t.Children[childLang]
		if childLang == lang {
			return []string{childLang}
		}
		if child.hasLang(lang) {
			return append([]string{childLang}, child.FirstPairsPath(lang)...)
		}
	}
	return nil
}

// hasLang reports whether lang appears anywhere in the subtree rooted at t
// (excluding t itself).
func (t *LangTree) hasLang(lang string) bool {
	for childLang, child := range t.Children {
		if childLang == lang || child.hasLang(lang) {
			return true
		}
	}
	return false
}

// FindIntermediary finds the first language on a path between source and
// target within the given remote pairs, suitable for use as a pivot
// language when no direct source-target pair package is published.
// It returns "" if no path is found within the search depth.
func FindIntermediary(source, target string, remotePairs []string) string {
	tree := BuildLangTree(source, remotePairs, 2)
	path := tree.FirstPairsPath(target)
	if len(path) == 0 {
		return ""
	}
	return path[0]
}
