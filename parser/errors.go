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

package parser

import (
	"fmt"

	"github.com/jberkowitz/kasmc/lexer"
)

// ErrorKind enumerates the parser's failure taxon, ported one-for-one
// from the match arms of original_source/KCompilerRust/src/parser.rs's
// error enum.
type ErrorKind int

const (
	Redefinition ErrorKind = iota
	UndefinedSymbol
	ConstNoInitial
	AttemptedExpressionInProgram
	StrayAssignment
	StrayOperator
	StrayValue
	MissingMain
	MultipleMain
	MissingReturn
	UnexpectedToken
	UnexpectedEndOfFile
	BadArgumentCount
	BufferIndexRequired
	NestingTooDeep
)

var errorKindText = map[ErrorKind]string{
	Redefinition:                 "variable redefined",
	UndefinedSymbol:              "reference to undefined symbol",
	ConstNoInitial:               "const used before it was given an initial value",
	AttemptedExpressionInProgram: "only declarations and assignments are allowed outside a procedure",
	StrayAssignment:              "assignment operator with no left-hand side",
	StrayOperator:                "operator with nothing to operate on",
	StrayValue:                   "value with no operator or assignment to attach to",
	MissingMain:                  "no main procedure defined",
	MultipleMain:                 "more than one main procedure defined",
	MissingReturn:                "non-void procedure does not return on every path",
	UnexpectedToken:              "unexpected token",
	UnexpectedEndOfFile:          "unexpected end of file",
	BadArgumentCount:             "wrong number of arguments",
	BufferIndexRequired:          "buffer reference requires an index",
	NestingTooDeep:               "block nesting exceeds the supported depth",
}

// Error is the parser's error type. Pos carries the source location
// where one is known; the Token field is not filled in by this parser
// and is always nil.
type Error struct {
	Kind  ErrorKind
	Pos   lexer.Position
	Text  string
	Token *lexer.Token
}

func (e *Error) Error() string {
	msg := errorKindText[e.Kind]
	if e.Text != "" {
		return fmt.Sprintf("%s: %s: %q", e.Pos, msg, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

// WarningKind enumerates non-fatal diagnostics the parser surfaces.
type WarningKind int

const (
	SingleTokenStatement WarningKind = iota
	SelfMove
)

var warningKindText = map[WarningKind]string{
	SingleTokenStatement: "statement has no effect",
	SelfMove:             "assignment has no effect: source and destination are the same",
}

type Warning struct {
	Kind WarningKind
	Pos  lexer.Position
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, warningKindText[w.Kind])
}
