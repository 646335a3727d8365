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

// tree.go - the annotated program tree the parser builds and the code
// generator walks. A generalization of
// original_source/KCompilerRust/src/parser/parserTree.rs: that version
// predates block-structured if/while, so ExpressionType there only has
// Unspecified/Return/Assignment and there is no Block type at all. This
// adds ConditionalIf/ConditionalWhile and the Block/Line pair needed to
// represent them, following the shape described for the full language.

import "github.com/jberkowitz/kasmc/lexer"

// DataValueType is a variable's K-level type, spec §3.
type DataValueType struct{ v int }

const (
	vVoid = iota
	vUint
	vShort
	vChar
	vString
	vBuffer
)

var (
	TypeVoid   = DataValueType{vVoid}
	TypeUint   = DataValueType{vUint}
	TypeShort  = DataValueType{vShort}
	TypeChar   = DataValueType{vChar}
	TypeString = DataValueType{vString}
	TypeBuffer = DataValueType{vBuffer}
)

func (d DataValueType) String() string {
	switch d.v {
	case vVoid:
		return "Void"
	case vUint:
		return "Uint"
	case vShort:
		return "Short"
	case vChar:
		return "Char"
	case vString:
		return "String"
	case vBuffer:
		return "Buffer"
	}
	return "DataValueType(?)"
}

// Size returns the number of bytes a value of this type occupies in its
// home storage (a Buffer's inline size is carried separately on the
// Variable, since it depends on the declared element count).
func (d DataValueType) Size() int {
	switch d.v {
	case vVoid:
		return 0
	case vUint, vChar:
		return 1
	case vShort, vString:
		return 2
	case vBuffer:
		return 2 // a Buffer variable itself holds a pointer once static; inline callers use Variable.BufferLen instead.
	}
	return 0
}

// DataAllocationType is where a variable's storage physically lives.
type DataAllocationType struct{ a int }

const (
	aNone = iota
	aHeap
	aStack
	aStatic
	aConst
)

var (
	AllocNone   = DataAllocationType{aNone}
	AllocHeap   = DataAllocationType{aHeap}
	AllocStack  = DataAllocationType{aStack}
	AllocStatic = DataAllocationType{aStatic}
	AllocConst  = DataAllocationType{aConst}
)

func (a DataAllocationType) String() string {
	switch a.a {
	case aNone:
		return "None"
	case aHeap:
		return "Heap"
	case aStack:
		return "Stack"
	case aStatic:
		return "Static"
	case aConst:
		return "Const"
	}
	return "DataAllocationType(?)"
}

// Variable is one declared name: a formal argument, a local, a heap
// global, a const, or a static. Address/Offset holds whichever of the
// two the Allocation calls for; exactly one is meaningful at a time.
type Variable struct {
	Name       string
	ValueType  DataValueType
	Allocation DataAllocationType
	Address    uint16 // valid when Allocation == AllocHeap
	Offset     uint8  // valid when Allocation == AllocStack
	Label      string // valid when Allocation == AllocStatic or AllocConst
	BufferLen  int    // element count, valid when ValueType == TypeBuffer (0 for a static buffer declared without a bracket)
	Literal    string // initializer text, if any; required before use for AllocConst (invariant I3)
	HasLiteral bool
	LiteralKind lexer.Kind // Literal's original token kind, for const-folding a reference back to its own literal form
}

// ExpressionKind classifies an Expression, spec §3.
type ExpressionKind struct{ e int }

const (
	eUnspecified = iota
	eReturn
	eAssignment
	eConditionalIf
	eConditionalWhile
)

var (
	ExprUnspecified      = ExpressionKind{eUnspecified}
	ExprReturn           = ExpressionKind{eReturn}
	ExprAssignment       = ExpressionKind{eAssignment}
	ExprConditionalIf    = ExpressionKind{eConditionalIf}
	ExprConditionalWhile = ExpressionKind{eConditionalWhile}
)

func (e ExpressionKind) String() string {
	switch e.e {
	case eUnspecified:
		return "Unspecified"
	case eReturn:
		return "Return"
	case eAssignment:
		return "Assignment"
	case eConditionalIf:
		return "ConditionalIf"
	case eConditionalWhile:
		return "ConditionalWhile"
	}
	return "ExpressionKind(?)"
}

// Expression is an ordered run of already-classified-and-resolved
// tokens between two statement boundaries (spec §3).
type Expression struct {
	Kind   ExpressionKind
	Tokens []*lexer.Token
}

// LineKind tells a Line apart: either it holds a statement
// (Index into the owning Block/Procedure's Expressions) or it
// introduces a nested Block (Index into Blocks).
type LineKind struct{ l int }

var (
	LineExpression = LineKind{0}
	LineBlock      = LineKind{1}
)

func (l LineKind) String() string {
	if l.l == 0 {
		return "Expression"
	}
	return "Block"
}

type Line struct {
	Kind  LineKind
	Index int
}

// BlockKind distinguishes an if-body from an else-body from a while-body.
type BlockKind struct{ b int }

var (
	BlockIf    = BlockKind{0}
	BlockElse  = BlockKind{1}
	BlockWhile = BlockKind{2}
)

func (b BlockKind) String() string {
	switch b.b {
	case 0:
		return "If"
	case 1:
		return "Else"
	case 2:
		return "While"
	}
	return "BlockKind(?)"
}

// DirEntry is one step of a block directory path: which container
// (Procedure or a parent Block) and the index of the child within it.
type DirEntry struct {
	InProcedure bool
	BlockIndex  int
}

// Block is one nested if/else/while body. Guard is the index into the
// enclosing container's Expressions (not the Block's own) holding the
// ConditionalIf/ConditionalWhile test, or -1 for an Else block (which
// has no guard of its own).
type Block struct {
	Kind        BlockKind
	Guard       int
	Dir         []DirEntry
	Depth       uint8
	Lines       []Line
	Expressions []*Expression
	Blocks      []*Block
}

// Procedure is one proc..end definition.
type Procedure struct {
	Label         string
	ReturnType    DataValueType
	Args          []Variable
	Locals        []Variable
	Lines         []Line
	Expressions   []*Expression
	Blocks        []*Block
	AllocatedBytes uint8 // high-water mark of stack bytes used, invariant I2
	HasReturn     bool
}

// Program is the parser's final output: the fully resolved tree the
// code generator walks to emit KASM text.
type Program struct {
	NextHeapAddr uint16 // heap bump allocator, starts at 0x0200 (invariant I4)
	Heap         []Variable
	Consts       []Variable
	Statics      []Variable
	Prologue     []Line // top-level expressions, spec §3 "program prologue"
	Expressions  []*Expression
	Procedures   []*Procedure
}

const heapBase uint16 = 0x0200

// reserved scratch addresses the heap allocator must never hand out
// (spec §9): 0x0000 is addition scratch, 0xFFFE is syscall marshalling
// scratch.
const (
	ReservedAddScratch uint16 = 0x0000
	ReservedSysScratch uint16 = 0xFFFE
)

func NewProgram() *Program {
	return &Program{NextHeapAddr: heapBase}
}
