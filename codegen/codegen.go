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

// Package codegen lowers a resolved program tree into KASM assembly
// text. It is a generalization of compiler.rs's runCompiler/evaluateExpr
// pair: the overall three-region layout (heap-init header, static
// labels, procedures with main spliced last) and the move-matrix
// approach to getting a computed value to its destination both come
// straight from there. If/While/Else blocks reach emitBlock, which
// reports them as Unimplemented; the original predates blocks.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jberkowitz/kasmc/lexer"
	"github.com/jberkowitz/kasmc/parser"
)

const headerStart = "__START_HEADER__"
const headerEnd = "__END_HEADER__"
const mainLabel = "__MAIN__"

type generator struct {
	prog     *parser.Program
	warnings []string
}

// Generate lowers prog into a complete KASM text listing, or reports
// the first CompilerError it hits (spec §7's "compiler" taxon): a
// missing main, a construct that is not lowered (an if/while/else
// block, an operator other than +), an illegal move, or a malformed
// embedded-function or procedure call that the parser let through.
func Generate(prog *parser.Program) (string, []string, error) {
	g := &generator{prog: prog}
	text, err := g.run()
	return text, g.warnings, err
}

func (g *generator) warn(msg string) {
	g.warnings = append(g.warnings, msg)
}

func (g *generator) run() (string, error) {
	var mainProc *parser.Procedure
	var others []*parser.Procedure
	for _, p := range g.prog.Procedures {
		if p.Label == "main" {
			mainProc = p
		} else {
			others = append(others, p)
		}
	}
	if mainProc == nil {
		return "", &Error{Kind: NoMainProc}
	}

	var b strings.Builder
	if len(g.prog.Prologue) > 0 {
		if err := g.emitHeader(&b); err != nil {
			return "", err
		}
	}
	if err := g.emitStatics(&b); err != nil {
		return "", err
	}
	for _, p := range others {
		if err := g.emitProcedure(&b, p, p.Label); err != nil {
			return "", err
		}
	}
	if err := g.emitProcedure(&b, mainProc, mainLabel); err != nil {
		return "", err
	}
	return b.String(), nil
}

// emitHeader writes the heap-initialization prologue: every top-level
// assignment expression. Callers only reach this when the prologue is
// non-empty; an empty prologue omits the region entirely, since the
// marker pair has nothing to wrap.
func (g *generator) emitHeader(b *strings.Builder) error {
	b.WriteString("LABEL " + headerStart + "\n")
	for _, line := range g.prog.Prologue {
		if line.Kind != parser.LineExpression {
			continue
		}
		expr := g.prog.Expressions[line.Index]
		if err := g.emitStatement(b, expr, nil); err != nil {
			return err
		}
	}
	b.WriteString("LABEL " + headerEnd + "\n")
	return nil
}

// emitStatics writes a LABEL/RAW/END block for every static whose
// initializer is already known (spec's static region).
func (g *generator) emitStatics(b *strings.Builder) error {
	for _, v := range g.prog.Statics {
		if !v.HasLiteral {
			continue
		}
		b.WriteString(emitStaticLiteral(v.Label, v.Literal))
	}
	return nil
}

// emitProcedure writes a procedure's label, its stack-allocate prologue
// if it has locals, and its body. It never synthesizes a closing
// BRK/RTS of its own: like the original compiler, the only way a
// procedure's body ends is an explicit `ret`, or - for a void
// procedure - an explicit `exit(...)` call; a void procedure that
// falls off the end without either simply emits nothing further.
func (g *generator) emitProcedure(b *strings.Builder, p *parser.Procedure, label string) error {
	b.WriteString("LABEL " + label + "\n")
	if p.AllocatedBytes > 0 {
		fmt.Fprintf(b, "SAL %d;\n", p.AllocatedBytes)
	}
	return g.emitLines(b, p.Lines, p.Expressions, p.Blocks, p)
}

func (g *generator) emitLines(b *strings.Builder, lines []parser.Line, exprs []*parser.Expression, blocks []*parser.Block, p *parser.Procedure) error {
	for _, line := range lines {
		switch line.Kind {
		case parser.LineExpression:
			if err := g.emitStatement(b, exprs[line.Index], p); err != nil {
				return err
			}
		case parser.LineBlock:
			if err := g.emitBlock(b, blocks[line.Index], exprs, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) emitStatement(b *strings.Builder, expr *parser.Expression, p *parser.Procedure) error {
	if expr.Kind == parser.ExprReturn {
		loc, err := g.evaluateExpr(b, expr.Tokens, p)
		if err != nil {
			return err
		}
		text, err := moveOutTo(loc, LocRegisterA, g.warn)
		if err != nil {
			return err
		}
		b.WriteString(text)
		if p.AllocatedBytes > 0 {
			fmt.Fprintf(b, "DAL %d;\n", p.AllocatedBytes)
		}
		if p.Label == "main" {
			b.WriteString("BRK;\n")
		} else {
			b.WriteString("RTS;\n")
		}
		return nil
	}
	_, err := g.evaluateExpr(b, expr.Tokens, p)
	return err
}

// emitBlock would lower an if/else/while body. The instruction set
// (§6) has no compare or jump mnemonic of any kind, so there is no
// conditional control flow to lower into; this is left as an explicit
// unimplemented construct rather than inventing instructions the
// target machine does not have.
func (g *generator) emitBlock(b *strings.Builder, blk *parser.Block, parentExprs []*parser.Expression, p *parser.Procedure) error {
	return &Error{Kind: Unimplemented, Text: blk.Kind.String() + " block"}
}

// evaluateExpr lowers a token run left to right, returning where the
// final value ended up. A single literal/variable/register token
// lowers to its own location; a longer run is an embedded-function
// call, a procedure call, or an add chain.
func (g *generator) evaluateExpr(b *strings.Builder, toks []*lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	if len(toks) == 0 {
		return LocNone, nil
	}

	first := toks[0]
	switch first.Kind.String() {
	case "NumberLiteral", "HexNumberLiteral":
		if len(toks) == 1 {
			return LocLiteral(first.Text), nil
		}
	case "CharLiteral":
		if len(toks) == 1 {
			return LocLiteral(first.Text), nil
		}
	case "StringLiteral":
		if len(toks) == 1 {
			return LocStringLiteral(first.Text), nil
		}
	case "Register":
		if len(toks) == 1 {
			return registerLoc(first.Text), nil
		}
	case "Variable":
		if len(toks) == 1 {
			return g.variableLoc(first, p)
		}
		if toks[1].Text == "=" {
			return g.evaluateAssignment(b, first, toks[2:], p)
		}
	case "ProcedureCall":
		if len(toks) == 1 {
			return LocStatic(first.Text), nil
		}
	case "UnidentifiedLabel":
		return LocNone, &Error{Kind: UnresolvedVariable, Text: first.Text}
	case "EmbeddedFunction":
		if len(toks) >= 2 && toks[1].Text == "(" && toks[len(toks)-1].Text == ")" {
			return g.evaluateEmbedded(b, first, toks[2:len(toks)-1], p)
		}
		return LocNone, &Error{Kind: WrongArgumentCount, Text: first.Text}
	}

	return g.evaluateAddChain(b, toks, p)
}

func registerLoc(text string) ExpressionOutLocation {
	switch text {
	case "_A":
		return LocRegisterA
	case "_X":
		return LocRegisterX
	case "_Y":
		return LocRegisterY
	}
	return LocNone
}

// variableLoc resolves a token's cached Descriptor into a concrete
// location. Argument and local slots are indexes, not byte offsets -
// Argument indexes the fixed call-marshalling heap cells (spec §4.3),
// while a local/block slot indexes p.Locals to recover the stack byte
// offset the parser assigned it.
func (g *generator) variableLoc(tk *lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	if !tk.Desc.Valid {
		return LocNone, &Error{Kind: UnresolvedVariable, Text: tk.Text}
	}
	switch tk.Desc.Class.String() {
	case "Heap":
		if tk.Desc.Slot < 0 || tk.Desc.Slot >= len(g.prog.Heap) {
			return LocNone, &Error{Kind: UnresolvedVariable, Text: tk.Text}
		}
		return LocHeap(g.prog.Heap[tk.Desc.Slot].Address), nil
	case "ProgramStatic", "ProgramConst":
		return LocStatic(tk.Text), nil
	case "Argument":
		if tk.Desc.Slot < 0 || tk.Desc.Slot >= len(argSlots) {
			return LocNone, &Error{Kind: WrongArgumentCount, Text: tk.Text}
		}
		return LocHeap(argSlots[tk.Desc.Slot]), nil
	default:
		if p == nil || tk.Desc.Slot < 0 || tk.Desc.Slot >= len(p.Locals) {
			return LocNone, &Error{Kind: UnresolvedVariable, Text: tk.Text}
		}
		return LocStack(p.Locals[tk.Desc.Slot].Offset), nil
	}
}

func (g *generator) evaluateAssignment(b *strings.Builder, nameTk *lexer.Token, rhs []*lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	dst, err := g.variableLoc(nameTk, p)
	if err != nil {
		return LocNone, err
	}
	srcLoc, err := g.evaluateExpr(b, rhs, p)
	if err != nil {
		return LocNone, err
	}
	text, err := moveOutTo(srcLoc, dst, g.warn)
	if err != nil {
		return LocNone, err
	}
	b.WriteString(text)
	return dst, nil
}

// evaluateEmbedded dispatches store/sys/exit, the three built-ins
// spec §5 names (store takes two arguments, exit one, sys one or
// more), each lowered to a short instruction
// sequence rather than a JSR (they have no callable body).
func (g *generator) evaluateEmbedded(b *strings.Builder, fn *lexer.Token, args []*lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	groups := splitArgs(args)
	switch fn.Text {
	case "store":
		if len(groups) != 2 {
			return LocNone, &Error{Kind: WrongArgumentCount, Text: "store"}
		}
		addr, ok := literalAddress(groups[1])
		if !ok {
			return LocNone, &Error{Kind: InvalidStoreAddress, Text: "store"}
		}
		srcLoc, err := g.evaluateExpr(b, groups[0], p)
		if err != nil {
			return LocNone, err
		}
		text, err := moveOutTo(srcLoc, LocHeap(addr), g.warn)
		if err != nil {
			return LocNone, err
		}
		b.WriteString(text)
		return LocNone, nil
	case "sys":
		if len(groups) == 0 {
			return LocNone, &Error{Kind: WrongArgumentCount, Text: "sys"}
		}
		opTk, ok := soleLiteralToken(groups[0])
		if !ok {
			return LocNone, &Error{Kind: SysOpcodeNotLiteral, Text: "sys"}
		}
		for _, arg := range groups[1:] {
			loc, err := g.evaluateExpr(b, arg, p)
			if err != nil {
				return LocNone, err
			}
			text, err := moveOutTo(loc, LocHeap(parser.ReservedSysScratch), g.warn)
			if err != nil {
				return LocNone, err
			}
			b.WriteString(text)
		}
		fmt.Fprintf(b, "SYS %s;\n", opTk.Text)
		return LocNone, nil
	case "exit":
		if len(groups) != 1 {
			return LocNone, &Error{Kind: WrongArgumentCount, Text: "exit"}
		}
		loc, err := g.evaluateExpr(b, groups[0], p)
		if err != nil {
			return LocNone, err
		}
		text, err := moveOutTo(loc, LocRegisterA, g.warn)
		if err != nil {
			return LocNone, err
		}
		b.WriteString(text)
		b.WriteString("BRK;\n")
		return LocNone, nil
	}
	return LocNone, &Error{Kind: WrongArgumentCount, Text: fn.Text}
}

// evaluateAddChain handles an "a + b + c" run, folded left to right,
// and procedure calls (a bare "label(args)" run), the two remaining
// shapes an expression's tokens can take.
func (g *generator) evaluateAddChain(b *strings.Builder, toks []*lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	if len(toks) >= 2 && toks[0].Kind.String() == "ProcedureCall" && toks[1].Text == "(" {
		return g.evaluateCall(b, toks, p)
	}
	if len(toks) == 1 {
		return LocNone, &Error{Kind: Unimplemented, Text: "stand-alone token " + toks[0].Text}
	}

	// a + b [+ c ...]: evaluate the first term into A, then fold each
	// following single-token "+ term" into it, left to right.
	// Only addition is lowered; every other operator has no instruction
	// to lower to and fails as unimplemented rather than inventing one.
	loc, err := g.evaluateExpr(b, toks[:1], p)
	if err != nil {
		return LocNone, err
	}
	text, err := moveOutTo(loc, LocRegisterA, g.warn)
	if err != nil {
		return LocNone, err
	}
	b.WriteString(text)

	i := 1
	for i < len(toks) {
		op := toks[i]
		if i+1 >= len(toks) {
			return LocNone, &Error{Kind: IllegalMove, Text: "dangling operator"}
		}
		if op.Kind.String() != "OpAdd" {
			return LocNone, &Error{Kind: Unimplemented, Text: "operator " + op.Text}
		}
		rhsLoc, err := g.evaluateExpr(b, toks[i+1:i+2], p)
		if err != nil {
			return LocNone, err
		}
		if rhsLoc.kind == locLiteral {
			fmt.Fprintf(b, "ADCC %s;\n", rhsLoc.text)
		} else {
			scratch, err := moveOutTo(rhsLoc, LocHeap(parser.ReservedAddScratch), g.warn)
			if err != nil {
				return LocNone, err
			}
			b.WriteString(scratch)
			fmt.Fprintf(b, "ADC %d;\n", parser.ReservedAddScratch)
		}
		i += 2
	}
	return LocRegisterA, nil
}

// soleLiteralToken reports the single literal token toks consists of,
// if it is exactly one token and that token is a literal - the shape
// sys's opcode argument and store's address argument both require.
func soleLiteralToken(toks []*lexer.Token) (*lexer.Token, bool) {
	if len(toks) != 1 {
		return nil, false
	}
	switch toks[0].Kind.String() {
	case "NumberLiteral", "HexNumberLiteral":
		return toks[0], true
	}
	return nil, false
}

// literalAddress parses toks as a single literal heap address, decimal
// or "0x..." (store's destination argument).
func literalAddress(toks []*lexer.Token) (uint16, bool) {
	tk, ok := soleLiteralToken(toks)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(tk.Text, 0, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// argSlots are the fixed heap cells used to marshal call arguments,
// spec §4.3: six descending addresses below the heap base reserved
// for this purpose.
var argSlots = []uint16{0x0005, 0x0004, 0x0003, 0x0002, 0x0001, 0x0000}

func (g *generator) evaluateCall(b *strings.Builder, toks []*lexer.Token, p *parser.Procedure) (ExpressionOutLocation, error) {
	label := toks[0].Text
	inner := toks[2 : len(toks)-1] // drop "name" "(" ... ")"
	groups := splitArgs(inner)
	if len(groups) > len(argSlots) {
		return LocNone, &Error{Kind: WrongArgumentCount, Text: label}
	}
	for i, g2 := range groups {
		loc, err := g.evaluateExpr(b, g2, p)
		if err != nil {
			return LocNone, err
		}
		text, err := moveOutTo(loc, LocHeap(argSlots[i]), g.warn)
		if err != nil {
			return LocNone, err
		}
		b.WriteString(text)
	}
	fmt.Fprintf(b, "JSR %s;\n", label)
	return LocRegisterA, nil
}

// splitArgs divides a parenthesized argument token run on top-level
// commas, leaving nested parens/brackets alone.
func splitArgs(toks []*lexer.Token) [][]*lexer.Token {
	var groups [][]*lexer.Token
	var cur []*lexer.Token
	depth := 0
	for _, tk := range toks {
		switch tk.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		if depth == 0 && tk.Text == "," {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, tk)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
