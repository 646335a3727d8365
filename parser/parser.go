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

// parser.go - the streaming statement-window parser. This is a direct
// generalization of original_source/KCompilerRust/src/parser.rs's main
// token loop: that version matches on tk.tk_type inside one big loop
// mutating a handful of "current *" variables (current procedure,
// current block directory, the pending variable-definition storage
// class, an accumulator for the expression under construction, and a
// queue of errors that can only be judged once the statement's closing
// semicolon is seen). asm/parser.go shows the same idea - a small bag
// of context threaded through state-handler functions - but its own
// states are keyed to y4 assembly's line-oriented grammar, so the
// actual statement logic below is the Rust parser's, not asm's.

import (
	"github.com/jberkowitz/kasmc/lexer"
)

// container is whichever thing currently owns Lines/Expressions/Blocks:
// the top-level program prologue, a procedure body, or a nested block.
type container struct {
	lines       *[]Line
	expressions *[]*Expression
	blocks      *[]*Block
}

type Parser struct {
	toks []*lexer.Token
	pos  int

	prog    *Program
	sym     *SymbolTable
	curProc *Procedure

	// blockStack holds every block currently open, outermost first;
	// its top is the container new statements land in.
	blockStack []*Block

	nextDAT   lexer.VarDest
	haveDAT   bool
	curExpr   []*lexer.Token
	curKind   ExpressionKind
	deferred  []*Error

	Warnings []Warning
}

func New(toks []*lexer.Token) *Parser {
	return &Parser{toks: toks, prog: NewProgram(), sym: NewSymbolTable(), curKind: ExprUnspecified}
}

// Parse consumes the whole token stream and returns the finished tree.
// Mirrors runParser(tokens, &mut program) in the original source.
func Parse(toks []*lexer.Token) (*Program, []Warning, error) {
	p := New(toks)
	if err := p.run(); err != nil {
		return nil, p.Warnings, err
	}
	if err := p.finish(); err != nil {
		return nil, p.Warnings, err
	}
	return p.prog, p.Warnings, nil
}

func (p *Parser) peek() *lexer.Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() *lexer.Token {
	tk := p.peek()
	if tk != nil {
		p.pos++
	}
	return tk
}

func (p *Parser) current() *container {
	if n := len(p.blockStack); n > 0 {
		b := p.blockStack[n-1]
		return &container{lines: &b.Lines, expressions: &b.Expressions, blocks: &b.Blocks}
	}
	if p.curProc != nil {
		return &container{lines: &p.curProc.Lines, expressions: &p.curProc.Expressions, blocks: &p.curProc.Blocks}
	}
	return &container{lines: &p.prog.Prologue, expressions: &p.prog.Expressions, blocks: nil}
}

func (p *Parser) run() error {
	for {
		tk := p.advance()
		if tk == nil {
			return nil
		}
		if err := p.step(tk); err != nil {
			return err
		}
	}
}

func (p *Parser) step(tk *lexer.Token) error {
	switch tk.Kind.String() {
	case "KeywordProc":
		return p.startProc()
	case "KeywordEnd":
		return p.closeBlockOrProc()
	case "KeywordRet":
		p.curKind = ExprReturn
		return nil
	case "KeywordIf":
		return p.startBlock(BlockIf)
	case "KeywordWhile":
		return p.startBlock(BlockWhile)
	case "KeywordElse":
		return p.startBlock(BlockElse)
	case "KeywordHeap":
		p.nextDAT, p.haveDAT = lexer.DestHeap, true
		return nil
	case "KeywordConst":
		p.nextDAT, p.haveDAT = lexer.DestProgramConst, true
		return nil
	case "KeywordStatic":
		p.nextDAT, p.haveDAT = lexer.DestProgramStatic, true
		return nil
	case "KeywordUint", "KeywordShort", "KeywordString", "KeywordBuffer":
		return p.declareVariable(tk)
	case "SymbolSemicolon":
		return p.finalizeStatement(tk)
	case "OpAssign":
		if len(p.curExpr) == 0 {
			return &Error{Kind: StrayAssignment, Pos: tk.Pos}
		}
		p.curKind = ExprAssignment
		p.curExpr = append(p.curExpr, tk)
		return nil
	case "OpAdd", "OpSubtract", "OpEq", "OpNEq", "OpLess", "OpGreat", "OpLessEq", "OpGreatEq":
		if len(p.curExpr) == 0 {
			return &Error{Kind: StrayOperator, Pos: tk.Pos}
		}
		p.curExpr = append(p.curExpr, tk)
		return nil
	case "UnidentifiedLabel":
		return p.resolveLabel(tk)
	default:
		// Registers, literals, embedded functions, and plain symbols
		// used inside an expression (parens, commas, brackets) simply
		// accumulate; they are validated by the code generator, which
		// already has to walk the token list to lower it.
		p.curExpr = append(p.curExpr, tk)
		return nil
	}
}

func (p *Parser) startProc() error {
	retTk := p.advance()
	if retTk == nil {
		return &Error{Kind: UnexpectedEndOfFile}
	}
	retType, err := keywordToValueType(retTk)
	if err != nil {
		return err
	}
	nameTk := p.advance()
	if nameTk == nil || nameTk.Kind.String() != "UnidentifiedLabel" {
		return &Error{Kind: UnexpectedToken, Pos: retTk.Pos}
	}

	proc := &Procedure{Label: nameTk.Text, ReturnType: retType}
	var argNames []string

	// "(" arg, arg ")" - each arg is "<type> <name>".
	if tk := p.peek(); tk == nil || tk.Text != "(" {
		return &Error{Kind: UnexpectedToken, Pos: nameTk.Pos}
	}
	p.advance()
	for {
		tk := p.peek()
		if tk == nil {
			return &Error{Kind: UnexpectedEndOfFile}
		}
		if tk.Text == ")" {
			p.advance()
			break
		}
		if tk.Text == "," {
			p.advance()
			continue
		}
		typeTk := p.advance()
		vt, err := keywordToValueType(typeTk)
		if err != nil {
			return err
		}
		argNameTk := p.advance()
		if argNameTk == nil || argNameTk.Kind.String() != "UnidentifiedLabel" {
			return &Error{Kind: UnexpectedToken, Pos: typeTk.Pos}
		}
		proc.Args = append(proc.Args, Variable{Name: argNameTk.Text, ValueType: vt, Allocation: AllocStack})
		argNames = append(argNames, argNameTk.Text)
	}

	if err := p.sym.DeclareProc(proc.Label, len(p.prog.Procedures)); err != nil {
		return err
	}
	p.prog.Procedures = append(p.prog.Procedures, proc)
	p.curProc = proc
	p.sym.EnterProcedure(argNames)
	return nil
}

func keywordToValueType(tk *lexer.Token) (DataValueType, error) {
	if tk == nil {
		return DataValueType{}, &Error{Kind: UnexpectedEndOfFile}
	}
	switch tk.Kind.String() {
	case "KeywordVoid":
		return TypeVoid, nil
	case "KeywordUint":
		return TypeUint, nil
	case "KeywordShort":
		return TypeShort, nil
	case "KeywordString":
		return TypeString, nil
	case "KeywordBuffer":
		return TypeBuffer, nil
	}
	return DataValueType{}, &Error{Kind: UnexpectedToken, Pos: tk.Pos, Text: tk.Text}
}

func (p *Parser) closeBlockOrProc() error {
	if n := len(p.blockStack); n > 0 {
		p.blockStack = p.blockStack[:n-1]
		p.sym.PopBlock()
		return nil
	}
	if p.curProc == nil {
		return &Error{Kind: UnexpectedToken}
	}
	if p.curProc.ReturnType != TypeVoid && !p.curProc.HasReturn {
		return &Error{Kind: MissingReturn, Text: p.curProc.Label}
	}
	p.sym.ExitProcedure()
	p.curProc = nil
	return nil
}

// startBlock opens an If/While/Else body. If/While read a "(" guard
// ")" first; Else has no guard and opens a fresh block after whatever
// Line precedes it - no check is made that the preceding Line is an If.
func (p *Parser) startBlock(kind BlockKind) error {
	var guardIdx = -1
	if kind != BlockElse {
		if tk := p.peek(); tk == nil || tk.Text != "(" {
			return &Error{Kind: UnexpectedToken}
		}
		p.advance()
		var guard []*lexer.Token
		for {
			tk := p.peek()
			if tk == nil {
				return &Error{Kind: UnexpectedEndOfFile}
			}
			if tk.Text == ")" {
				p.advance()
				break
			}
			guard = append(guard, p.advance())
		}
		cont := p.current()
		expr := &Expression{Kind: condKindFor(kind), Tokens: guard}
		*cont.expressions = append(*cont.expressions, expr)
		guardIdx = len(*cont.expressions) - 1
	}

	cont := p.current()
	depth := p.sym.PushBlock()
	var dir []DirEntry
	if p.curProc != nil {
		dir = append(dir, DirEntry{InProcedure: true, BlockIndex: -1})
	}
	blk := &Block{Kind: kind, Guard: guardIdx, Dir: dir, Depth: depth}
	*cont.blocks = append(*cont.blocks, blk)
	blockIdx := len(*cont.blocks) - 1
	*cont.lines = append(*cont.lines, Line{Kind: LineBlock, Index: blockIdx})
	p.blockStack = append(p.blockStack, blk)
	return nil
}

func condKindFor(kind BlockKind) ExpressionKind {
	if kind == BlockWhile {
		return ExprConditionalWhile
	}
	return ExprConditionalIf
}

// declareVariable handles "<type> [size] name [= init];", generalized
// from the Rust declareVariable! macro: for a buffer, the macro always
// peeks for the "[" before reading the name (size comes before the
// name, not after), the one exception being a static buffer, where the
// bracket may be omitted entirely; BufferLen is then left 0 and the
// buffer's data is just the literal initializer captured for the
// static region. It then allocates storage per the
// pending nextDAT class (defaulting to a procedure's stack frame, or to
// the heap at top level where there is no stack), registers the name,
// and folds a trailing "= literal" into an Assignment expression.
func (p *Parser) declareVariable(typeTk *lexer.Token) error {
	vt, err := keywordToValueType(typeTk)
	if err != nil {
		return err
	}

	isStaticBuffer := vt == TypeBuffer && p.haveDAT && p.nextDAT == lexer.DestProgramStatic

	bufLen := 0
	if vt == TypeBuffer {
		if tk := p.peek(); tk != nil && tk.Text == "[" {
			p.advance()
			sizeTk := p.advance()
			bufLen = parseSmallInt(sizeTk)
			if tk := p.peek(); tk != nil && tk.Text == "]" {
				p.advance()
			} else {
				return &Error{Kind: UnexpectedToken, Pos: typeTk.Pos}
			}
		} else if !isStaticBuffer {
			return &Error{Kind: UnexpectedToken, Pos: typeTk.Pos}
		}
	}

	nameTk := p.advance()
	if nameTk == nil || nameTk.Kind.String() != "UnidentifiedLabel" {
		return &Error{Kind: UnexpectedToken, Pos: typeTk.Pos}
	}

	class := lexer.DestCurrentProc
	if p.haveDAT {
		class = p.nextDAT
	} else if p.curProc == nil {
		class = lexer.DestHeap
	}
	p.haveDAT = false

	v := Variable{Name: nameTk.Text, ValueType: vt, BufferLen: bufLen}
	var slot int
	switch class {
	case lexer.DestHeap:
		v.Allocation = AllocHeap
		v.Address = p.prog.NextHeapAddr
		p.prog.NextHeapAddr += uint16(storageSize(vt, bufLen))
		p.prog.Heap = append(p.prog.Heap, v)
		slot = len(p.prog.Heap) - 1
		if err := p.sym.DeclareHeap(v.Name, slot); err != nil {
			return err
		}
	case lexer.DestProgramConst:
		v.Allocation = AllocConst
		v.Label = v.Name
		p.prog.Consts = append(p.prog.Consts, v)
		slot = len(p.prog.Consts) - 1
		if err := p.sym.DeclareConst(v.Name, slot); err != nil {
			return err
		}
	case lexer.DestProgramStatic:
		v.Allocation = AllocStatic
		v.Label = v.Name
		p.prog.Statics = append(p.prog.Statics, v)
		slot = len(p.prog.Statics) - 1
		if err := p.sym.DeclareStatic(v.Name, slot); err != nil {
			return err
		}
	default:
		if p.curProc == nil {
			return &Error{Kind: AttemptedExpressionInProgram, Pos: nameTk.Pos}
		}
		v.Allocation = AllocStack
		v.Offset = p.curProc.AllocatedBytes
		p.curProc.AllocatedBytes += uint8(storageSize(vt, bufLen))
		p.curProc.Locals = append(p.curProc.Locals, v)
		slot = len(p.curProc.Locals) - 1
		if err := p.sym.DeclareLocal(v.Name, slot); err != nil {
			return err
		}
	}
	nameTk.Desc = lexer.Descriptor{Valid: true, Slot: slot, Class: class}
	nameTk.Kind = lexer.Variable

	// "<type> name = <initializer>" folds directly into an Assignment
	// expression headed by the name token, matching declareVariable!'s
	// behavior of immediately emitting the initializer as code.
	if tk := p.peek(); tk != nil && tk.Text == "=" {
		p.curExpr = append(p.curExpr, nameTk)
		p.curKind = ExprAssignment
		if class == lexer.DestProgramConst {
			p.prog.Consts[slot].HasLiteral = true
		}
		if class == lexer.DestProgramStatic {
			p.prog.Statics[slot].HasLiteral = true
		}
	}
	return nil
}

func storageSize(vt DataValueType, bufLen int) int {
	if vt == TypeBuffer {
		if bufLen > 0 {
			return bufLen
		}
		return 2
	}
	return vt.Size()
}

func parseSmallInt(tk *lexer.Token) int {
	if tk == nil {
		return 0
	}
	n := 0
	for i := 0; i < len(tk.Text); i++ {
		c := tk.Text[i]
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// resolveLabel handles an UnidentifiedLabel seen mid-expression: it is
// either a variable reference (resolved now, the descriptor cached on
// the token per invariant I1) or a procedure call, or it fails to
// resolve and is queued so the failure is reported once the
// statement's semicolon closes the window (mirrors the original
// parser's resolvable-errors queue). The queue is flushed at that same
// semicolon, so a call to a procedure declared later in the file is
// reported as UndefinedSymbol.
func (p *Parser) resolveLabel(tk *lexer.Token) error {
	if desc, ok := p.sym.Resolve(tk.Text); ok {
		tk.Desc = desc
		tk.Kind = lexer.Variable
		if desc.Class == lexer.DestProgramConst {
			v := p.prog.Consts[desc.Slot]
			if !v.HasLiteral {
				p.deferred = append(p.deferred, &Error{Kind: ConstNoInitial, Pos: tk.Pos, Text: tk.Text})
			} else {
				// A resolved const folds straight to its bound literal -
				// the code generator never sees a const reference at all.
				tk.Kind = v.LiteralKind
				tk.Text = v.Literal
			}
		}
		p.curExpr = append(p.curExpr, tk)
		return nil
	}
	if _, ok := p.sym.IsProcedure(tk.Text); ok {
		tk.Kind = lexer.ProcedureCall
		p.curExpr = append(p.curExpr, tk)
		return nil
	}
	p.curExpr = append(p.curExpr, tk)
	p.deferred = append(p.deferred, &Error{Kind: UndefinedSymbol, Pos: tk.Pos, Text: tk.Text})
	return nil
}

// finalizeStatement closes the current statement window at a ';':
// decide the expression's final kind (a lone call is Unspecified,
// "x = ..." is Assignment, "ret ..." is Return), append it to whichever
// container currently owns the cursor, flush deferred resolution
// errors that only matter once the statement is known to be real code,
// and reset the accumulator for the next statement.
func (p *Parser) finalizeStatement(semiTk *lexer.Token) error {
	if len(p.curExpr) == 0 {
		// A bare "ret;" (valid only in a void procedure) still has to
		// register as the procedure's return, even though it carries
		// no tokens for the code generator to evaluate.
		if p.curKind == ExprReturn && p.curProc != nil {
			p.curProc.HasReturn = true
			cont := p.current()
			expr := &Expression{Kind: ExprReturn}
			*cont.expressions = append(*cont.expressions, expr)
			*cont.lines = append(*cont.lines, Line{Kind: LineExpression, Index: len(*cont.expressions) - 1})
		}
		p.curKind = ExprUnspecified
		return p.flushDeferred()
	}
	// Only a bare variable reference used as a whole statement ("x;") is
	// meaningless; "ret x;" and a one-token call both have exactly one
	// token too but carry real effect, so the warning must also check
	// that the expression is an otherwise-unclassified Unspecified one.
	if p.curKind == ExprUnspecified && len(p.curExpr) == 1 && p.curExpr[0].Kind == lexer.Variable {
		p.Warnings = append(p.Warnings, Warning{Kind: SingleTokenStatement, Pos: semiTk.Pos})
	}
	if p.curKind == ExprReturn && p.curProc != nil {
		p.curProc.HasReturn = true
	}

	// A Const or Static left-hand side binds its literal at parse time
	// (invariant I3) and is never itself a runtime location - variableLoc
	// resolves both back to the variable's own Static label, not its
	// value, so emitting the assignment as code would just break the
	// code generator. Capture the literal and drop the statement.
	compileTimeOnly := false
	if p.curKind == ExprAssignment && len(p.curExpr) >= 3 {
		nameTk := p.curExpr[0]
		p.captureStaticLiteral(nameTk, p.curExpr[2:])
		if nameTk.Desc.Valid && (nameTk.Desc.Class == lexer.DestProgramConst || nameTk.Desc.Class == lexer.DestProgramStatic) {
			compileTimeOnly = true
		}
	}

	if !compileTimeOnly {
		cont := p.current()
		expr := &Expression{Kind: p.curKind, Tokens: p.curExpr}
		*cont.expressions = append(*cont.expressions, expr)
		idx := len(*cont.expressions) - 1
		*cont.lines = append(*cont.lines, Line{Kind: LineExpression, Index: idx})
	}

	p.curExpr = nil
	p.curKind = ExprUnspecified
	return p.flushDeferred()
}

// flushDeferred reports the first resolution error queued since the
// last statement boundary, if any - mirrors the original parser's
// resolvable-errors queue, judged only once a statement is known real.
func (p *Parser) flushDeferred() error {
	if len(p.deferred) == 0 {
		return nil
	}
	err := p.deferred[0]
	p.deferred = nil
	return err
}

// captureStaticLiteral records a "name = ..." assignment's literal text
// on the declared Variable when name names a static or const, so the
// code generator's static-data region (written once, ahead of any
// procedure body) has the text to emit. rhs is scanned rather than
// indexed directly so a bracket-wrapped array initializer still yields
// its literal.
func (p *Parser) captureStaticLiteral(nameTk *lexer.Token, rhs []*lexer.Token) {
	if !nameTk.Desc.Valid {
		return
	}
	litTk := firstLiteralToken(rhs)
	if litTk == nil {
		return
	}
	switch nameTk.Desc.Class {
	case lexer.DestProgramStatic:
		p.prog.Statics[nameTk.Desc.Slot].Literal = litTk.Text
		p.prog.Statics[nameTk.Desc.Slot].LiteralKind = litTk.Kind
	case lexer.DestProgramConst:
		p.prog.Consts[nameTk.Desc.Slot].Literal = litTk.Text
		p.prog.Consts[nameTk.Desc.Slot].LiteralKind = litTk.Kind
	}
}

func firstLiteralToken(toks []*lexer.Token) *lexer.Token {
	for _, tk := range toks {
		switch tk.Kind.String() {
		case "NumberLiteral", "HexNumberLiteral", "StringLiteral", "CharLiteral":
			return tk
		}
	}
	return nil
}

// finish runs the whole-program checks that only make sense once every
// token has been consumed: exactly one main, and (redundantly, in case
// the source file never closed its last proc) every non-void procedure
// returning.
func (p *Parser) finish() error {
	if p.curProc != nil && p.curProc.ReturnType != TypeVoid && !p.curProc.HasReturn {
		return &Error{Kind: MissingReturn, Text: p.curProc.Label}
	}
	mains := 0
	for _, proc := range p.prog.Procedures {
		if proc.Label == "main" {
			mains++
		}
	}
	if mains == 0 {
		return &Error{Kind: MissingMain}
	}
	if mains > 1 {
		return &Error{Kind: MultipleMain}
	}
	return nil
}
