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

package codegen

import "fmt"

// ErrorKind enumerates the code generator's failure taxon, ported from
// the match arms of original_source/KCompilerRust/src/compiler.rs's
// CompilerError enum.
type ErrorKind int

const (
	NoMainProc ErrorKind = iota
	IllegalMove
	WrongArgumentCount
	UnsupportedLiteralForStatic
	BufferIndexMissing
	UnresolvedVariable
	StackOverflow
	Unimplemented
	InvalidStoreAddress
	SysOpcodeNotLiteral
)

var errorKindText = map[ErrorKind]string{
	NoMainProc:                  "program has no main procedure",
	IllegalMove:                 "value cannot be moved to the requested destination",
	WrongArgumentCount:          "embedded function called with the wrong number of arguments",
	UnsupportedLiteralForStatic: "only a string literal may initialize a static",
	BufferIndexMissing:          "buffer reference used without an index",
	UnresolvedVariable:          "variable reference was never resolved by the parser",
	StackOverflow:               "procedure frame exceeds 256 bytes",
	Unimplemented:               "construct is not yet lowered to KASM",
	InvalidStoreAddress:         "store's destination address must be a literal",
	SysOpcodeNotLiteral:         "sys's first argument must be a literal opcode",
}

type Error struct {
	Kind ErrorKind
	Text string
}

func (e *Error) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s: %s", errorKindText[e.Kind], e.Text)
	}
	return errorKindText[e.Kind]
}
