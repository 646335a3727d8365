/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package diag holds the small set of process-wide diagnostic helpers
// shared by every pipeline stage and by cmd/kasmc. It is the one place
// allowed to touch stderr or os.Exit outside of main.
package diag

import (
	"fmt"
	"os"
)

// Debug gates Trace output. Stages set this from a CLI flag or config,
// the same role lexer_debug and GeneratorDebug play in the teacher.
var Debug bool

// Stage prefixes every user-visible message, per spec §7: "all
// user-visible messages are prefixed by the stage name."
type Stage string

const (
	StageLexer   Stage = "lexer"
	StageParser  Stage = "parser"
	StageCodegen Stage = "codegen"
	StageCLI     Stage = "kasmc"
)

func assertMsg(b bool, msg string) {
	if !b {
		panic("assertion failure: " + msg)
	}
}

// Assert panics on a violated invariant. Reserved for conditions the
// compiler itself guarantees (e.g. heap layout never colliding with a
// reserved scratch slot, §9) rather than anything a source file can
// trigger - those go through the stage error types instead.
func Assert(b bool, msg string) {
	assertMsg(b, msg)
}

// Fatalf prints a stage-prefixed message and exits with status 2,
// mirroring OBSOLETE/yapl-0/util.go's fatal/pr pair.
func Fatalf(stage Stage, format string, args ...any) {
	Warnf(stage, format, args...)
	os.Exit(2)
}

// Warnf prints a stage-prefixed message to stderr without exiting.
func Warnf(stage Stage, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", stage, fmt.Sprintf(format, args...))
}

// Tracef prints only when Debug is set, the same role lexer_debug plays
// for asm/lexer.go's token-stream dump.
func Tracef(stage Stage, format string, args ...any) {
	if Debug {
		Warnf(stage, format, args...)
	}
}
