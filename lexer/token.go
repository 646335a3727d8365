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

import "strconv"

// token.go - exported types: Kind, Token, VarDest, Descriptor.
//
// Kind is wrapped in a one-field struct rather than declared as a bare
// int, the same trick asm/lexer.go uses for its lexerStateType and
// TokenKindType: a bare `type Kind int` lets any int be assigned to a
// Kind field without a conversion, silently defeating the enumeration.
// Wrapping the int in a struct forces every Kind value through one of
// the names below.

type Kind struct{ k int }

func (k Kind) String() string {
	if k.k < 0 || k.k >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k.k]
}

const (
	kNone = iota
	kRegister
	kUnidentifiedLabel
	kVariable
	kProcedureCall
	kCharLiteral
	kStringLiteral
	kNumberLiteral
	kHexNumberLiteral
	kSymbol
	kSymbolSemicolon
	kOp
	kOpAssign
	kOpAdd
	kOpSubtract
	kOpEq
	kOpNEq
	kOpLess
	kOpGreat
	kOpLessEq
	kOpGreatEq
	kKeywordString
	kKeywordUint
	kKeywordShort
	kKeywordBuffer
	kKeywordStatic
	kKeywordHeap
	kKeywordConst
	kKeywordLABEL
	kKeywordRaw
	kKeywordEnd
	kKeywordProc
	kKeywordRet
	kKeywordWhile
	kKeywordIf
	kKeywordElse
	kKeywordVoid
	kEmbeddedFunction
	kindCount
)

var (
	None               = Kind{kNone}
	Register           = Kind{kRegister}
	UnidentifiedLabel  = Kind{kUnidentifiedLabel}
	Variable           = Kind{kVariable}
	ProcedureCall      = Kind{kProcedureCall}
	CharLiteral        = Kind{kCharLiteral}
	StringLiteral      = Kind{kStringLiteral}
	NumberLiteral      = Kind{kNumberLiteral}
	HexNumberLiteral   = Kind{kHexNumberLiteral}
	Symbol             = Kind{kSymbol}
	SymbolSemicolon    = Kind{kSymbolSemicolon}
	Op                 = Kind{kOp}
	OpAssign           = Kind{kOpAssign}
	OpAdd              = Kind{kOpAdd}
	OpSubtract         = Kind{kOpSubtract}
	OpEq               = Kind{kOpEq}
	OpNEq              = Kind{kOpNEq}
	OpLess             = Kind{kOpLess}
	OpGreat            = Kind{kOpGreat}
	OpLessEq           = Kind{kOpLessEq}
	OpGreatEq          = Kind{kOpGreatEq}
	KeywordString      = Kind{kKeywordString}
	KeywordUint        = Kind{kKeywordUint}
	KeywordShort       = Kind{kKeywordShort}
	KeywordBuffer      = Kind{kKeywordBuffer}
	KeywordStatic      = Kind{kKeywordStatic}
	KeywordHeap        = Kind{kKeywordHeap}
	KeywordConst       = Kind{kKeywordConst}
	KeywordLABEL       = Kind{kKeywordLABEL}
	KeywordRaw         = Kind{kKeywordRaw}
	KeywordEnd         = Kind{kKeywordEnd}
	KeywordProc        = Kind{kKeywordProc}
	KeywordRet         = Kind{kKeywordRet}
	KeywordWhile       = Kind{kKeywordWhile}
	KeywordIf          = Kind{kKeywordIf}
	KeywordElse        = Kind{kKeywordElse}
	KeywordVoid        = Kind{kKeywordVoid}
	EmbeddedFunction   = Kind{kEmbeddedFunction}
)

var kindNames = []string{
	"None", "Register", "UnidentifiedLabel", "Variable", "ProcedureCall",
	"CharLiteral", "StringLiteral", "NumberLiteral", "HexNumberLiteral",
	"Symbol", "SymbolSemicolon", "Op", "OpAssign", "OpAdd", "OpSubtract",
	"OpEq", "OpNEq", "OpLess", "OpGreat", "OpLessEq", "OpGreatEq",
	"KeywordString", "KeywordUint", "KeywordShort", "KeywordBuffer",
	"KeywordStatic", "KeywordHeap", "KeywordConst", "KeywordLABEL",
	"KeywordRaw", "KeywordEnd", "KeywordProc", "KeywordRet", "KeywordWhile",
	"KeywordIf", "KeywordElse", "KeywordVoid", "EmbeddedFunction",
}

var keywords = map[string]Kind{
	"static": KeywordStatic,
	"string": KeywordString,
	"const":  KeywordConst,
	"short":  KeywordShort,
	"buffer": KeywordBuffer,
	"heap":   KeywordHeap,
	"LABEL":  KeywordLABEL,
	"raw":    KeywordRaw,
	"end":    KeywordEnd,
	"proc":   KeywordProc,
	"ret":    KeywordRet,
	"while":  KeywordWhile,
	"if":     KeywordIf,
	"else":   KeywordElse,
	"void":   KeywordVoid,
	"uint":   KeywordUint,
}

var embeddedFunctions = map[string]bool{
	"store": true,
	"sys":   true,
	"exit":  true,
}

// VarDest is the resolved storage class of a variable reference, spec
// §3 "Storage class". It rides along on a Token's Descriptor once the
// parser resolves a name, and is read back by the code generator.
type VarDest struct {
	d     int
	depth uint8
}

const (
	dNone = iota
	dHeap
	dProgramConst
	dProgramStatic
	dCurrentProc
	dArgument
	dBlock
)

var (
	DestNone          = VarDest{d: dNone}
	DestHeap          = VarDest{d: dHeap}
	DestProgramConst  = VarDest{d: dProgramConst}
	DestProgramStatic = VarDest{d: dProgramStatic}
	DestCurrentProc   = VarDest{d: dCurrentProc}
	DestArgument      = VarDest{d: dArgument}
)

// DestBlock builds a Block(depth) storage class: a variable reference
// resolved to a block-local scope, measured by distance from the
// current procedure scope (spec §3: "Block(depth)").
func DestBlock(depth uint8) VarDest {
	return VarDest{d: dBlock, depth: depth}
}

func (v VarDest) String() string {
	switch v.d {
	case dNone:
		return "None"
	case dHeap:
		return "Heap"
	case dProgramConst:
		return "ProgramConst"
	case dProgramStatic:
		return "ProgramStatic"
	case dCurrentProc:
		return "CurrentProc"
	case dArgument:
		return "Argument"
	case dBlock:
		return "Block"
	}
	return "VarDest(?)"
}

// IsBlock reports whether this is a Block(depth) class and returns the depth.
func (v VarDest) IsBlock() (uint8, bool) {
	return v.depth, v.d == dBlock
}

func (v VarDest) Equal(o VarDest) bool {
	return v.d == o.d && (v.d != dBlock || v.depth == o.depth)
}

// Descriptor is the token compiler-data field the parser mutates in
// place to cache a name resolution, spec §3 "optional resolved
// descriptor (none | variable-reference(slot-index, storage-class))".
type Descriptor struct {
	Valid bool
	Slot  int
	Class VarDest
}

// Position locates a token in the source file, for diagnostics. Not
// part of the core data model in spec §3, but every stage needs it to
// produce a usable error message - see lookbusy1344-arm_emulator's
// parser.Position, which this is grounded on.
type Position struct {
	Line, Col int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Token is a lexeme plus its classification and, once the parser has
// resolved it, the cached descriptor (spec §3, invariant I1/I2).
type Token struct {
	Kind Kind
	Text string
	Desc Descriptor
	Pos  Position
}

func (t *Token) String() string {
	return "{" + t.Kind.String() + " " + t.Text + "}"
}
