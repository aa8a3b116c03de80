// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package bootstrap resolves and prepares the on-disk layout interpreters
// need before they can translate anything.
//
// Every interpreter keeps its downloaded language packs under a pack
// directory derived from the configured data directory:
//
//	data_dir/packs/<interpreter-name>/
//
// PackDir derives that path; EnsurePackDir additionally creates it. The
// interpreter factory (internal/factory) calls EnsurePackDir before
// constructing an Apertium interpreter, so the Apertium interpreters never
// have to worry about whether their working directory exists. Argos
// interpreters do not use a pack directory.
package bootstrap
