// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"os"
	"path/filepath"
)

// modeFileStat stats the mode file a given "src-tgt" mode name would
// register under packDir/modes, e.g. packDir/modes/eng-spa.mode.
func modeFileStat(packDir, mode string) (os.FileInfo, error) {
	return os.Stat(filepath.Join(packDir, "modes", mode+".mode"))
}
