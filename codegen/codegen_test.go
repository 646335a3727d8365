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

import (
	"strings"
	"testing"

	"github.com/jberkowitz/kasmc/lexer"
	"github.com/jberkowitz/kasmc/parser"
)

func mustParse(t *testing.T, src string) *parser.Program {
	t.Helper()
	lx := lexer.NewFromString(t.Name(), src)
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	prog, warnings, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	for _, w := range warnings {
		t.Logf("warning: %s", w)
	}
	return prog
}

// TestGenerateMinimalMain matches scenario S6: a void main with no
// exit path emits only its label and the implicit BRK its `ret`
// triggers - no SAL/DAL, since the procedure allocates no frame.
func TestGenerateMinimalMain(t *testing.T) {
	src := `proc void main()
ret;
end
`
	prog := mustParse(t, src)
	text, _, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "LABEL __MAIN__\nBRK;\n"
	if text != want {
		t.Errorf("got:\n%q\nwant:\n%q", text, want)
	}
}

// TestGenerateExitEmitsSingleBRK matches scenario S1: `exit('A')` loads
// the literal into register A and brakes once - the procedure falling
// off the end afterward must not add a second BRK of its own.
func TestGenerateExitEmitsSingleBRK(t *testing.T) {
	src := `proc void main()
exit('A');
end
`
	prog := mustParse(t, src)
	text, _, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "LABEL __MAIN__\nLDAC 'A';\nBRK;\n"
	if text != want {
		t.Errorf("got:\n%q\nwant:\n%q", text, want)
	}
}

// TestGenerateStaticBufferEmitsRawEnd matches scenario S3: a static
// buffer initialized from a string literal emits a LABEL/RAW/END
// block with the embedded newline rendered as a literal "10" byte
// and an explicit NUL terminator.
func TestGenerateStaticBufferEmitsRawEnd(t *testing.T) {
	src := `static buffer greeting = [ "hi\n" ];
proc void main()
ret;
end
`
	prog := mustParse(t, src)
	text, _, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "LABEL greeting\nRAW\n\"hi\" 10 0\nEND\n"
	if !strings.Contains(text, want) {
		t.Errorf("missing static RAW block in output:\n%s\nwanted substring:\n%q", text, want)
	}
}

// TestGenerateConstIsFoldedNotEmitted matches scenario S5: a resolved
// const reference is folded straight to its literal, so exit(x) reads
// exactly like exit(3) and the const declaration produces no code of
// its own.
func TestGenerateConstIsFoldedNotEmitted(t *testing.T) {
	src := `const uint x = 3;
proc void main()
exit(x);
end
`
	prog := mustParse(t, src)
	text, _, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "LABEL __MAIN__\nLDAC 3;\nBRK;\n"
	if text != want {
		t.Errorf("got:\n%q\nwant:\n%q", text, want)
	}
}

func TestGenerateNoMainIsAnError(t *testing.T) {
	// Parse itself rejects a source with no main (MissingMain), so the
	// tree is built directly to reach Generate's own check.
	prog := parser.NewProgram()
	prog.Procedures = append(prog.Procedures, &parser.Procedure{Label: "helper", ReturnType: parser.TypeVoid})
	_, _, err := Generate(prog)
	if err == nil {
		t.Fatal("expected an error for a program with no main")
	}
	cgErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if cgErr.Kind != NoMainProc {
		t.Errorf("got error kind %v, want NoMainProc", cgErr.Kind)
	}
}

func TestGenerateLocalAssignmentAndReturn(t *testing.T) {
	src := `proc uint main()
uint x = 5;
ret x;
end
`
	prog := mustParse(t, src)
	text, _, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(text, "SAL ") {
		t.Errorf("expected a stack-allocate instruction for the local, got:\n%s", text)
	}
	if !strings.Contains(text, "ST") {
		t.Errorf("expected the literal to be stored to the local's slot, got:\n%s", text)
	}
}

func TestValidateRejectsUnknownMnemonic(t *testing.T) {
	if err := Validate("NOPE", 0); err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestValidateChecksOperandCount(t *testing.T) {
	if err := Validate("BRK", 1); err == nil {
		t.Fatal("expected an error: BRK takes no operands")
	}
	if err := Validate("JSR", 1); err != nil {
		t.Fatalf("JSR with one operand should validate, got: %v", err)
	}
}
