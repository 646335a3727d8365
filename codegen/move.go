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

// move.go - ExpressionOutLocation and moveOutTo, a direct port of
// compiler.rs's ExpressionOutLocation enum and moveOutTo() function.
// Lowering a K expression never writes straight to its final home; it
// always finishes by asking "where did the value end up" (an
// ExpressionOutLocation) and then asks moveOutTo to get it the rest of
// the way, so every expression-kind handler in codegen.go shares one
// place that knows how to reconcile any source location with any
// destination.

import (
	"fmt"
	"strings"
)

type locKind int

const (
	locNone locKind = iota
	locRegisterA
	locRegisterX
	locRegisterY
	locStack
	locHeap
	locStatic
	locLiteral
	locStringLiteral
)

var locKindNames = []string{"None", "RegisterA", "RegisterX", "RegisterY", "Stack", "Heap", "Static", "Literal", "StringLiteral"}

func (k locKind) String() string {
	if int(k) < 0 || int(k) >= len(locKindNames) {
		return "locKind(?)"
	}
	return locKindNames[k]
}

// ExpressionOutLocation is where a value sits once an expression has
// been lowered: a register, a stack slot, a heap address, a static
// label, or - for values never one instruction away from a real
// location - an immediate literal or string-literal text.
type ExpressionOutLocation struct {
	kind    locKind
	offset  uint8
	addr    uint16
	text    string
}

var (
	LocNone     = ExpressionOutLocation{kind: locNone}
	LocRegisterA = ExpressionOutLocation{kind: locRegisterA}
	LocRegisterX = ExpressionOutLocation{kind: locRegisterX}
	LocRegisterY = ExpressionOutLocation{kind: locRegisterY}
)

func LocStack(offset uint8) ExpressionOutLocation {
	return ExpressionOutLocation{kind: locStack, offset: offset}
}

func LocHeap(addr uint16) ExpressionOutLocation {
	return ExpressionOutLocation{kind: locHeap, addr: addr}
}

func LocStatic(label string) ExpressionOutLocation {
	return ExpressionOutLocation{kind: locStatic, text: label}
}

func LocLiteral(text string) ExpressionOutLocation {
	return ExpressionOutLocation{kind: locLiteral, text: text}
}

func LocStringLiteral(text string) ExpressionOutLocation {
	return ExpressionOutLocation{kind: locStringLiteral, text: text}
}

// Reg reports the register name this location names, if it is one -
// the Rust original's ExpressionOutLocation::reg() helper.
func (l ExpressionOutLocation) Reg() (string, bool) {
	switch l.kind {
	case locRegisterA:
		return "A", true
	case locRegisterX:
		return "X", true
	case locRegisterY:
		return "Y", true
	}
	return "", false
}

// moveOutTo emits the instructions that get a value sitting at src into
// dst, returning the emitted text (possibly empty, for a no-op move)
// or an error if the combination is not one the instruction set can
// express directly. This is the move matrix: dst selects one of the
// five rows the instruction set actually supports (RegA, RegY, a heap
// cell, a stack slot, or a static label) - there is no instruction that
// writes register X, so an RegX destination always falls through to
// the IllegalMove at the bottom.
func moveOutTo(src, dst ExpressionOutLocation, warn func(string)) (string, error) {
	if dst.kind == locNone || src.kind == locNone {
		return "", nil
	}

	switch dst.kind {
	case locRegisterA:
		return moveToRegA(src, warn)
	case locRegisterY:
		return moveToRegY(src, warn)
	case locHeap:
		return moveToHeap(src, dst.addr, warn)
	case locStack:
		return moveToStack(src, dst.offset, warn)
	case locStatic:
		if src.kind != locStringLiteral {
			return "", &Error{Kind: UnsupportedLiteralForStatic}
		}
		return emitStaticLiteral(dst.text, src.text), nil
	}
	return "", &Error{Kind: IllegalMove, Text: fmt.Sprintf("cannot move into %v", dst.kind)}
}

func moveToRegA(src ExpressionOutLocation, warn func(string)) (string, error) {
	switch src.kind {
	case locRegisterA:
		warn("assignment has no effect: source and destination are the same")
		return "", nil
	case locRegisterX:
		return "TXA;\n", nil
	case locRegisterY:
		return "TYA;\n", nil
	case locStack:
		return fmt.Sprintf("LDAS %d;\n", src.offset), nil
	case locHeap:
		return fmt.Sprintf("LDA %d;\n", src.addr), nil
	case locLiteral:
		return fmt.Sprintf("LDAC %s;\n", src.text), nil
	}
	return "", &Error{Kind: IllegalMove, Text: fmt.Sprintf("cannot move %v to register A", src.kind)}
}

func moveToRegY(src ExpressionOutLocation, warn func(string)) (string, error) {
	switch src.kind {
	case locRegisterA:
		return "TAY;\n", nil
	case locRegisterX:
		return "TXY;\n", nil
	case locRegisterY:
		warn("assignment has no effect: source and destination are the same")
		return "", nil
	case locStack:
		return fmt.Sprintf("LDYS %d;\n", src.offset), nil
	case locHeap:
		return fmt.Sprintf("LDY %d;\n", src.addr), nil
	case locLiteral:
		return fmt.Sprintf("LDYC %s;\n", src.text), nil
	}
	return "", &Error{Kind: IllegalMove, Text: fmt.Sprintf("cannot move %v to register Y", src.kind)}
}

// moveToHeap stores into a heap cell. A literal or another heap cell
// has no direct store form and is decomposed "via RegY": src is loaded
// into Y, then that Y->heap move (itself direct) finishes the job.
func moveToHeap(src ExpressionOutLocation, addr uint16, warn func(string)) (string, error) {
	switch src.kind {
	case locRegisterA:
		return fmt.Sprintf("STA %d;\n", addr), nil
	case locRegisterY:
		return fmt.Sprintf("STY %d;\n", addr), nil
	case locStack:
		return fmt.Sprintf("STRC %d %d;\n", addr, 0x100+int(src.offset)), nil
	case locStatic:
		return fmt.Sprintf("STRC %d %s;\n", addr, src.text), nil
	case locLiteral, locHeap:
		first, err := moveToRegY(src, warn)
		if err != nil {
			return "", err
		}
		second, err := moveToHeap(LocRegisterY, addr, warn)
		if err != nil {
			return "", err
		}
		return first + second, nil
	}
	return "", &Error{Kind: IllegalMove, Text: fmt.Sprintf("cannot move %v to heap", src.kind)}
}

// moveToStack stores into a frame slot. A literal has no direct store
// form either and goes via RegY the same way moveToHeap does.
func moveToStack(src ExpressionOutLocation, offset uint8, warn func(string)) (string, error) {
	switch src.kind {
	case locRegisterA:
		return fmt.Sprintf("STAS %d;\n", offset), nil
	case locRegisterY:
		return fmt.Sprintf("STYS %d;\n", offset), nil
	case locHeap:
		return fmt.Sprintf("STSH %d %d;\n", offset, src.addr), nil
	case locLiteral:
		first, err := moveToRegY(src, warn)
		if err != nil {
			return "", err
		}
		second, err := moveToStack(LocRegisterY, offset, warn)
		if err != nil {
			return "", err
		}
		return first + second, nil
	}
	return "", &Error{Kind: IllegalMove, Text: fmt.Sprintf("cannot move %v to stack", src.kind)}
}

// emitStaticLiteral lowers a string literal into a LABEL/RAW/END block:
// a bare LABEL line, a bare RAW line, one data line of space-separated
// quoted-text and decimal-byte tokens terminated by an explicit NUL,
// then END. Embedded "\n" is split into a literal "10" byte the way the
// original compiler's label_header special case does, since a quoted
// string can't itself carry a raw 0x0A byte.
func emitStaticLiteral(label, quoted string) string {
	inner := quoted
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	parts := splitNewlines(inner)
	var tokens []string
	for i, part := range parts {
		if part != "" {
			tokens = append(tokens, "\""+part+"\"")
		}
		if i < len(parts)-1 {
			tokens = append(tokens, "10")
		}
	}
	tokens = append(tokens, "0")
	return "LABEL " + label + "\nRAW\n" + strings.Join(tokens, " ") + "\nEND\n"
}

func splitNewlines(s string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\\' && s[i+1] == 'n' {
			out = append(out, s[start:i])
			start = i + 2
			i++
		}
	}
	out = append(out, s[start:])
	return out
}
