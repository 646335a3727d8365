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

// isa.go - an operand-count table for every KASM mnemonic the code
// generator emits, grounded on dis/dis.go's KeyEntry/SignatureElement
// table: dis.go uses such a table to know how many operands follow a
// given opcode byte when walking a compiled binary backwards into
// text; Validate is the text-side equivalent, checking that a mnemonic
// is known and has the operand count it calls for. Neither Generate
// nor cmd/kasmc calls it; it is exercised only by this package's tests.

import "fmt"

type operandShape int

const (
	shapeNone operandShape = iota
	shapeOne
	shapeTwo
	shapeThree
)

var mnemonicShapes = map[string]operandShape{
	"LABEL": shapeOne,
	"RAW":   shapeNone, // bare directive; its data sits on the following line, not as an operand
	"END":   shapeNone,
	"SAL":   shapeOne,
	"DAL":   shapeOne,
	"BRK":   shapeNone,
	"RTS":   shapeNone,
	"JSR":   shapeOne,
	"LDAC":  shapeOne,
	"LDYC":  shapeOne,
	"LDAS":  shapeOne,
	"LDYS":  shapeOne,
	"LDA":   shapeOne,
	"LDY":   shapeOne,
	"STA":   shapeOne,
	"STY":   shapeOne,
	"STAS":  shapeOne,
	"STYS":  shapeOne,
	"STRC":  shapeTwo,
	"STSH":  shapeTwo,
	"TAY":   shapeNone,
	"TYA":   shapeNone,
	"TXA":   shapeNone,
	"TXY":   shapeNone,
	"ADC":   shapeOne,
	"ADCC":  shapeOne,
	"SYS":   shapeOne,
}

// Validate reports whether mnemonic is known to the instruction set and
// was given the number of operands its shape calls for.
func Validate(mnemonic string, operands int) error {
	shape, ok := mnemonicShapes[mnemonic]
	if !ok {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	want := map[operandShape]int{shapeNone: 0, shapeOne: 1, shapeTwo: 2, shapeThree: 3}[shape]
	if operands != want {
		return fmt.Errorf("%s takes %d operand(s), got %d", mnemonic, want, operands)
	}
	return nil
}
