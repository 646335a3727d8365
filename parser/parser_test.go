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
	"testing"

	"github.com/jberkowitz/kasmc/lexer"
)

func check(t *testing.T, a1 any, a2 any) {
	t.Helper()
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func tokensOf(t *testing.T, src string) []*lexer.Token {
	t.Helper()
	lx := lexer.NewFromString(t.Name(), src)
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	return toks
}

func TestParseRequiresMain(t *testing.T) {
	toks := tokensOf(t, "proc void helper()\nret;\nend\n")
	_, _, err := Parse(toks)
	if err == nil {
		t.Fatal("expected MissingMain error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	check(t, perr.Kind, MissingMain)
}

func TestParseRejectsTwoMains(t *testing.T) {
	src := "proc void main()\nret;\nend\nproc void main()\nret;\nend\n"
	toks := tokensOf(t, src)
	_, _, err := Parse(toks)
	if err == nil {
		t.Fatal("expected an error for a second main procedure")
	}
}

func TestParseMinimalMain(t *testing.T) {
	toks := tokensOf(t, "proc void main()\nret;\nend\n")
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	check(t, len(prog.Procedures), 1)
	check(t, prog.Procedures[0].Label, "main")
}

func TestParseMissingReturnIsAnError(t *testing.T) {
	toks := tokensOf(t, "proc uint main()\nuint x = 5;\nend\n")
	_, _, err := Parse(toks)
	if err == nil {
		t.Fatal("expected MissingReturn error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	check(t, perr.Kind, MissingReturn)
}

func TestParseLocalDeclarationAllocatesStack(t *testing.T) {
	toks := tokensOf(t, "proc uint main()\nuint x = 5;\nret x;\nend\n")
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	main := prog.Procedures[0]
	check(t, len(main.Locals), 1)
	check(t, main.Locals[0].Name, "x")
	check(t, main.Locals[0].Offset, uint8(0))
	check(t, main.AllocatedBytes, uint8(1))
}

func TestParseHeapDeclarationAllocatesFromBase(t *testing.T) {
	toks := tokensOf(t, "heap uint g = 1;\nproc void main()\nret;\nend\n")
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	check(t, len(prog.Heap), 1)
	check(t, prog.Heap[0].Name, "g")
	check(t, prog.Heap[0].Address, uint16(0x0200))
}

func TestParseConstWithoutInitialIsDeferred(t *testing.T) {
	src := "const uint k;\nproc uint main()\nret k;\nend\n"
	toks := tokensOf(t, src)
	_, _, err := Parse(toks)
	if err == nil {
		t.Fatal("expected a ConstNoInitial error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	check(t, perr.Kind, ConstNoInitial)
}

func TestParseIfOpensABlock(t *testing.T) {
	src := "proc void main()\nuint x = 1;\nif (x > 0)\nret;\nend\nret;\nend\n"
	toks := tokensOf(t, src)
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	main := prog.Procedures[0]
	var sawBlock bool
	for _, line := range main.Lines {
		if line.Kind == LineBlock {
			sawBlock = true
		}
	}
	if !sawBlock {
		t.Error("expected an if to register as a Block line")
	}
	if len(main.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(main.Blocks))
	}
	check(t, main.Blocks[0].Kind, BlockIf)
}

func TestParseBareVariableStatementWarns(t *testing.T) {
	src := "proc void main()\nuint x = 1;\nx;\nret;\nend\n"
	toks := tokensOf(t, src)
	_, warnings, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(warnings), warnings)
	}
	check(t, warnings[0].Kind, SingleTokenStatement)
}

func TestParseReturnOfBareVariableDoesNotWarn(t *testing.T) {
	src := "proc uint main()\nuint x = 1;\nret x;\nend\n"
	toks := tokensOf(t, src)
	_, warnings, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestParseDeclarationWithoutInitializerDoesNotWarn(t *testing.T) {
	src := "proc void main()\nuint x;\nret;\nend\n"
	toks := tokensOf(t, src)
	_, warnings, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestParseConstAssignmentIsNotEmittedAsCode(t *testing.T) {
	src := "const uint k = 5;\nproc uint main()\nret k;\nend\n"
	toks := tokensOf(t, src)
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	check(t, len(prog.Prologue), 0)
	check(t, prog.Consts[0].Literal, "5")
}

func TestParseStaticBufferWithoutBracketCapturesLiteral(t *testing.T) {
	src := "static buffer msg = \"hi\";\nproc void main()\nret;\nend\n"
	toks := tokensOf(t, src)
	prog, _, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	check(t, len(prog.Statics), 1)
	check(t, prog.Statics[0].Literal, "\"hi\"")
}

func TestParseUndefinedSymbolIsDeferredToSemicolon(t *testing.T) {
	src := "proc void main()\nret undeclaredThing;\nend\n"
	toks := tokensOf(t, src)
	_, _, err := Parse(toks)
	if err == nil {
		t.Fatal("expected an UndefinedSymbol error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	check(t, perr.Kind, UndefinedSymbol)
}
