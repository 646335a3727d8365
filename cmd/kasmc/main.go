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

// Command kasmc compiles a K source file to KASM text. Its CLI shape -
// a lone debug flag plus a positional source file argument, a usage
// printed to stderr on misuse - is carried over from asm/asm.go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jberkowitz/kasmc/codegen"
	"github.com/jberkowitz/kasmc/config"
	"github.com/jberkowitz/kasmc/diag"
	"github.com/jberkowitz/kasmc/lexer"
	"github.com/jberkowitz/kasmc/parser"
)

var (
	dflag     = flag.Bool("d", false, "enable debug tracing")
	statsFlag = flag.Bool("stats", false, "print per-procedure statement and frame statistics")
	cfgFlag   = flag.String("c", "", "path to a kasmc.toml configuration file")
	outFlag   = flag.String("o", "", "output file (default: source file with .kasm extension)")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		usage()
	}
	source := args[0]

	cfg, err := config.Load(*cfgFlag)
	if err != nil {
		diag.Fatalf(diag.StageCLI, "%s", err)
	}
	diag.Debug = *dflag || cfg.Diagnostics.Debug

	lx, err := lexer.NewFromFile(source)
	if err != nil {
		diag.Fatalf(diag.StageCLI, "open %s: %s", source, err)
	}
	defer lx.Close()

	toks, err := lx.All()
	if err != nil {
		diag.Fatalf(diag.StageLexer, "%s", err)
	}
	diag.Tracef(diag.StageLexer, "%d tokens", len(toks))

	prog, warnings, err := parser.Parse(toks)
	if err != nil {
		diag.Fatalf(diag.StageParser, "%s", err)
	}
	for _, w := range warnings {
		if cfg.Diagnostics.WarningsAreErrors {
			diag.Fatalf(diag.StageParser, "%s", w)
		}
		diag.Warnf(diag.StageParser, "%s", w)
	}

	text, cgWarnings, err := codegen.Generate(prog)
	if err != nil {
		diag.Fatalf(diag.StageCodegen, "%s", err)
	}
	for _, w := range cgWarnings {
		diag.Warnf(diag.StageCodegen, "%s", w)
	}

	outPath := *outFlag
	if len(args) == 2 {
		outPath = args[1]
	}
	if outPath == "" {
		outPath = replaceExt(source, ".kasm")
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		diag.Fatalf(diag.StageCLI, "write %s: %s", outPath, err)
	}

	if *statsFlag || cfg.Output.EmitStats {
		printStats(prog)
	}
}

func printStats(prog *parser.Program) {
	for _, p := range prog.Procedures {
		fmt.Fprintf(os.Stderr, "%s: %d statement(s), %d frame byte(s)\n", p.Label, len(p.Expressions), p.AllocatedBytes)
	}
}

func replaceExt(path, ext string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i] + ext
		}
	}
	return path + ext
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: kasmc [options] source-file [output-file]\nOptions:")
	flag.PrintDefaults()
	os.Exit(1)
}
