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

// lexer.go - exported types: Lexer, Token (in token.go).
//
// The character-classification rules below follow spec §4.1, which is
// itself a close port of getNextToken() in
// original_source/KCompilerRust/src/lexer.rs. Unlike asm/lexer.go's
// multi-state switch (which has to track "in a symbol" vs "in a
// number" etc. across ReadByte calls because y4's assembly language is
// line-oriented and whitespace-sensitive), K's lexer decides a token's
// fate entirely from its first byte, so one GetToken call reads to
// completion without needing a persisted FSM state field - closer to
// the Rust original's per-call dispatch than to asm/lexer.go's loop.

import (
	"bufio"
	"io"
	"os"
	"strconv"
)

var starterBytes = map[byte]bool{
	'+': true, '-': true, '=': true, '>': true, '<': true, '!': true,
	'(': true, ')': true, ';': true, ',': true, '[': true, ']': true,
	'\'': true, '"': true, '#': true, ':': true, '_': true,
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Lexer turns a source byte stream into Tokens, one GetToken call at a
// time. It owns no resolution state - that is the parser's job once it
// starts mutating Token.Desc in place (spec §2, "the only cross-stage
// back-channel").
type Lexer struct {
	src  *byteSource
	path string
}

// NewFromFile opens path and returns a Lexer reading from it.
func NewFromFile(path string) (*Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Lexer{src: newByteSourceFromReader(bufio.NewReader(f)), path: path}, nil
}

// NewFromString returns a Lexer reading from an in-memory source,
// chiefly for tests (mirrors asm/lexer.go's MakeStringLexer).
func NewFromString(name, body string) *Lexer {
	return &Lexer{src: newByteSourceFromString(body), path: name}
}

func (lx *Lexer) Close() error {
	return lx.src.close()
}

// All drains the Lexer into a slice, the Go-idiomatic analogue of
// original_source's runLexer(file_contents, &mut token_storage).
func (lx *Lexer) All() ([]*Token, error) {
	var toks []*Token
	for {
		tk, err := lx.GetToken()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tk)
	}
}

// GetToken returns the next token, io.EOF once the source is exhausted,
// or a *Error on a classification failure (spec §7's LexerError taxon).
func (lx *Lexer) GetToken() (*Token, error) {
	c, pos, err := lx.skipWhitespaceAndComments()
	if err != nil {
		return nil, err
	}

	switch {
	case c == '+':
		return &Token{Kind: OpAdd, Text: "+", Pos: pos}, nil
	case c == '-':
		return &Token{Kind: OpSubtract, Text: "-", Pos: pos}, nil
	case c == '=':
		return lx.twoByteOp(pos, '=', OpEq, "==", OpAssign, "=")
	case c == '>':
		return lx.twoByteOp(pos, '=', OpGreatEq, ">=", OpGreat, ">")
	case c == '<':
		return lx.twoByteOp(pos, '=', OpLessEq, "<=", OpLess, "<")
	case c == '!':
		nxt, _, nerr := lx.src.readByte()
		if nerr == nil && nxt == '=' {
			return &Token{Kind: OpNEq, Text: "!=", Pos: pos}, nil
		}
		if nerr == nil {
			lx.src.unread(nxt)
		}
		return nil, &Error{Kind: UnexpectedByte, Pos: pos, Text: "!"}
	case c == '(' || c == ')' || c == ',' || c == '[' || c == ']':
		return &Token{Kind: Symbol, Text: string(c), Pos: pos}, nil
	case c == ';':
		return &Token{Kind: SymbolSemicolon, Text: ";", Pos: pos}, nil
	case c == ':':
		nxt, _, nerr := lx.src.readByte()
		if nerr == nil && nxt == ':' {
			return &Token{Kind: Symbol, Text: "::", Pos: pos}, nil
		}
		if nerr == nil {
			lx.src.unread(nxt)
		}
		return &Token{Kind: Symbol, Text: ":", Pos: pos}, nil
	case c == '\'':
		return lx.charLiteral(pos)
	case c == '"':
		return lx.stringLiteral(pos)
	case c == '_':
		return lx.register(pos)
	default:
		return lx.other(c, pos)
	}
}

// skipWhitespaceAndComments advances past whitespace and #...# comments
// and returns the first byte of the next token.
func (lx *Lexer) skipWhitespaceAndComments() (byte, Position, error) {
	for {
		c, pos, err := lx.src.readByte()
		if err != nil {
			return 0, Position{}, err
		}
		if isWhitespace(c) {
			continue
		}
		if c == '#' {
			if err := lx.skipComment(); err != nil {
				return 0, Position{}, err
			}
			continue
		}
		return c, pos, nil
	}
}

func (lx *Lexer) skipComment() error {
	for {
		c, pos, err := lx.src.readByte()
		if err == io.EOF {
			return &Error{Kind: NonTerminatedComment, Pos: pos}
		}
		if err != nil {
			return err
		}
		if c == '#' {
			return nil
		}
	}
}

func (lx *Lexer) twoByteOp(pos Position, second byte, twoKind Kind, twoText string, oneKind Kind, oneText string) (*Token, error) {
	nxt, _, err := lx.src.readByte()
	if err == nil && nxt == second {
		return &Token{Kind: twoKind, Text: twoText, Pos: pos}, nil
	}
	if err == nil {
		lx.src.unread(nxt)
	}
	return &Token{Kind: oneKind, Text: oneText, Pos: pos}, nil
}

func (lx *Lexer) charLiteral(pos Position) (*Token, error) {
	inner, _, err := lx.src.readByte()
	if err != nil {
		return nil, &Error{Kind: CharLengthInvalid, Pos: pos}
	}
	closing, _, err := lx.src.readByte()
	if err != nil || closing != '\'' {
		if err == nil {
			lx.src.unread(closing)
		}
		return nil, &Error{Kind: CharLengthInvalid, Pos: pos, Text: string(inner)}
	}
	return &Token{Kind: CharLiteral, Text: "'" + string(inner) + "'", Pos: pos}, nil
}

func (lx *Lexer) stringLiteral(pos Position) (*Token, error) {
	buf := []byte{'"'}
	for {
		c, _, err := lx.src.readByte()
		if err == io.EOF {
			return nil, &Error{Kind: NonTerminatedString, Pos: pos}
		}
		if err != nil {
			return nil, err
		}
		if c == '\\' {
			buf = append(buf, c)
			nxt, _, nerr := lx.src.readByte()
			if nerr == io.EOF {
				return nil, &Error{Kind: NonTerminatedString, Pos: pos}
			}
			if nerr != nil {
				return nil, nerr
			}
			buf = append(buf, nxt)
			continue
		}
		if c == '"' {
			buf = append(buf, '"')
			return &Token{Kind: StringLiteral, Text: string(buf), Pos: pos}, nil
		}
		buf = append(buf, c)
	}
}

func (lx *Lexer) register(pos Position) (*Token, error) {
	nxt, _, err := lx.src.readByte()
	if err != nil {
		return nil, &Error{Kind: InvalidRegister, Pos: pos}
	}
	switch nxt {
	case 'A', 'X', 'Y', 'S':
		return &Token{Kind: Register, Text: "_" + string(nxt), Pos: pos}, nil
	default:
		return nil, &Error{Kind: InvalidRegister, Pos: pos, Text: string(nxt)}
	}
}

// other collects the "anything else" bucket: an unquoted run of bytes
// up to the next whitespace or starter byte, then classifies it as a
// keyword, an embedded function, a number, a hex literal, or a label.
func (lx *Lexer) other(first byte, pos Position) (*Token, error) {
	buf := []byte{first}
	for {
		c, _, err := lx.src.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(c) || starterBytes[c] {
			lx.src.unread(c)
			break
		}
		buf = append(buf, c)
	}
	text := string(buf)

	if kind, ok := keywords[text]; ok {
		return &Token{Kind: kind, Text: text, Pos: pos}, nil
	}
	if embeddedFunctions[text] {
		return &Token{Kind: EmbeddedFunction, Text: text, Pos: pos}, nil
	}

	if allDigits(text) {
		if _, err := strconv.ParseUint(text, 10, 16); err != nil {
			if isRangeErr(err) {
				return nil, &Error{Kind: InvalidValueSize16b, Pos: pos, Text: text}
			}
			return nil, &Error{Kind: UnexpectedByte, Pos: pos, Text: text}
		}
		return &Token{Kind: NumberLiteral, Text: text, Pos: pos}, nil
	}

	if len(text) > 2 && text[0] == '0' && text[1] == 'x' {
		if _, err := strconv.ParseUint(text[2:], 16, 16); err != nil {
			if isRangeErr(err) {
				return nil, &Error{Kind: InvalidValueSize16b, Pos: pos, Text: text}
			}
			return nil, &Error{Kind: InvalidHexValue, Pos: pos, Text: text}
		}
		return &Token{Kind: HexNumberLiteral, Text: text, Pos: pos}, nil
	}

	return &Token{Kind: UnidentifiedLabel, Text: text, Pos: pos}, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
