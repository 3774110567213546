package cpu

import (
	"fmt"
	"strings"
)

// Disassemble decodes the instruction at addr using read for memory and
// returns its text and encoded length. Undefined opcodes render as DB.
func Disassemble(read func(uint16) byte, addr uint16) (string, int) {
	opcode := read(addr)
	in := primary[opcode]
	if !in.Defined() {
		return fmt.Sprintf("DB $%02X", opcode), 1
	}
	if in.op == opPrefix {
		return extended[read(addr+1)].Mnemonic, 2
	}

	text := in.Mnemonic
	switch in.Operand {
	case OperandImm8:
		text = strings.Replace(text, "d8", fmt.Sprintf("$%02X", read(addr+1)), 1)
	case OperandHigh8:
		text = strings.Replace(text, "a8", fmt.Sprintf("$FF%02X", read(addr+1)), 1)
	case OperandRel8:
		off := int8(read(addr + 1))
		if in.op == opJR {
			target := addr + 2 + uint16(int16(off))
			text = strings.Replace(text, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			text = strings.Replace(text, "r8", fmt.Sprintf("%d", off), 1)
		}
	case OperandImm16:
		v := uint16(read(addr+1)) | uint16(read(addr+2))<<8
		text = strings.NewReplacer("d16", fmt.Sprintf("$%04X", v), "a16", fmt.Sprintf("$%04X", v)).Replace(text)
	}
	return text, in.Length()
}
