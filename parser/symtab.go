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

// symtab.go - name resolution. Grounded on asm/sym.go's SymbolTable
// (a name->index map backed by a flat slice so nothing needs per-use
// allocation), generalized from asm's single flat namespace into the
// nested scopes a block-structured language needs: a name is looked up
// innermost-block-first, then outward, then through the program-wide
// tables, matching the resolution order described for UnidentifiedLabel
// (args, then locals innermost-to-outermost, then heap, const, static,
// finally procedures).

import "github.com/jberkowitz/kasmc/lexer"

type scopeLevel struct {
	names map[string]int
	depth uint8 // 0 == the procedure's direct body (CurrentProc); >0 == nested block
}

// SymbolTable tracks every name currently in scope while the parser
// walks one Program: the program-wide heap/const/static/procedure
// tables, plus a scope stack that grows and shrinks as the parser
// enters and leaves procedures and nested blocks.
type SymbolTable struct {
	heap    map[string]int
	consts  map[string]int
	statics map[string]int
	procs   map[string]int

	args   map[string]int
	scopes []scopeLevel
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		heap:    make(map[string]int),
		consts:  make(map[string]int),
		statics: make(map[string]int),
		procs:   make(map[string]int),
	}
}

func (st *SymbolTable) DeclareHeap(name string, slot int) error {
	return declare(st.heap, name, slot)
}

func (st *SymbolTable) DeclareConst(name string, slot int) error {
	return declare(st.consts, name, slot)
}

func (st *SymbolTable) DeclareStatic(name string, slot int) error {
	return declare(st.statics, name, slot)
}

func (st *SymbolTable) DeclareProc(name string, index int) error {
	return declare(st.procs, name, index)
}

func declare(m map[string]int, name string, slot int) error {
	if _, exists := m[name]; exists {
		return &Error{Kind: Redefinition, Text: name}
	}
	m[name] = slot
	return nil
}

// EnterProcedure opens a fresh scope stack for a new procedure body,
// seeding the argument namespace (invariant I1: args share one
// namespace separate from locals, resolved first).
func (st *SymbolTable) EnterProcedure(argNames []string) {
	st.args = make(map[string]int, len(argNames))
	for i, n := range argNames {
		st.args[n] = i
	}
	st.scopes = []scopeLevel{{names: make(map[string]int), depth: 0}}
}

// ExitProcedure drops the procedure's scope stack entirely once its
// body has been fully parsed.
func (st *SymbolTable) ExitProcedure() {
	st.args = nil
	st.scopes = nil
}

// PushBlock opens a new nested-block scope one level deeper than the
// current innermost one (spec §3, VarDest Block(depth)).
func (st *SymbolTable) PushBlock() uint8 {
	depth := uint8(len(st.scopes))
	st.scopes = append(st.scopes, scopeLevel{names: make(map[string]int), depth: depth})
	return depth
}

// PopBlock closes the innermost block scope; any locals it declared
// stop resolving once this returns.
func (st *SymbolTable) PopBlock() {
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// DeclareLocal adds name to the innermost scope (the current block, or
// the procedure body if no block is open), returning its slot index
// into the owning Procedure's flattened Locals list.
func (st *SymbolTable) DeclareLocal(name string, slot int) error {
	inner := &st.scopes[len(st.scopes)-1]
	return declare(inner.names, name, slot)
}

// Resolve looks a name up through every visible scope in priority
// order: arguments, then block/proc locals innermost to outermost,
// then heap, const, and static globals. It does not check procedure
// names; callers resolving a call target use IsProcedure instead.
func (st *SymbolTable) Resolve(name string) (lexer.Descriptor, bool) {
	if idx, ok := st.args[name]; ok {
		return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestArgument}, true
	}
	for i := len(st.scopes) - 1; i >= 0; i-- {
		sc := st.scopes[i]
		if idx, ok := sc.names[name]; ok {
			if sc.depth == 0 {
				return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestCurrentProc}, true
			}
			return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestBlock(sc.depth)}, true
		}
	}
	if idx, ok := st.heap[name]; ok {
		return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestHeap}, true
	}
	if idx, ok := st.consts[name]; ok {
		return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestProgramConst}, true
	}
	if idx, ok := st.statics[name]; ok {
		return lexer.Descriptor{Valid: true, Slot: idx, Class: lexer.DestProgramStatic}, true
	}
	return lexer.Descriptor{}, false
}

// IsProcedure reports whether name is a declared procedure, and its
// index in Program.Procedures if so.
func (st *SymbolTable) IsProcedure(name string) (int, bool) {
	idx, ok := st.procs[name]
	return idx, ok
}
