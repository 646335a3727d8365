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

package lexer

import "fmt"

// ErrorKind enumerates the character-level failures spec §7 assigns to
// the lexer taxon. This is a direct port of the Rust LexerError enum in
// original_source/KCompilerRust/src/lexer.rs, one variant per
// #[error(...)] arm, translated to Go's sentinel-kind-plus-detail shape.
type ErrorKind int

const (
	InvalidHexValue ErrorKind = iota
	CharLengthInvalid
	InvalidValueSize16b
	InvalidRegister
	NonTerminatedString
	NonTerminatedComment
	UnexpectedByte
)

var errorKindText = map[ErrorKind]string{
	InvalidHexValue:      "incorrect hex value",
	CharLengthInvalid:    "length of char literal is invalid",
	InvalidValueSize16b:  "value does not fit in 16 bits",
	InvalidRegister:      "attempting to use a register that does not exist",
	NonTerminatedString:  "string literal not terminated with a closing \"",
	NonTerminatedComment: "comment not terminated with a closing #",
	UnexpectedByte:       "unexpected byte",
}

// Error is the lexer's error type, carrying the failing position and
// the raw text that triggered it so the message can point at it.
type Error struct {
	Kind ErrorKind
	Pos  Position
	Text string
}

func (e *Error) Error() string {
	msg := errorKindText[e.Kind]
	if e.Text != "" {
		return fmt.Sprintf("%s: %s: %q", e.Pos, msg, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}
