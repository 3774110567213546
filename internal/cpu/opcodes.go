package cpu

// OperandKind describes the immediate bytes that follow an opcode.
type OperandKind uint8

const (
	OperandNone  OperandKind = iota
	OperandImm8              // d8
	OperandImm16             // d16 / a16
	OperandRel8              // signed r8
	OperandHigh8             // a8, offset into 0xFF00
)

// Len returns the number of immediate bytes.
func (k OperandKind) Len() int {
	switch k {
	case OperandImm8, OperandRel8, OperandHigh8:
		return 1
	case OperandImm16:
		return 2
	}
	return 0
}

type operation uint8

const (
	opInvalid operation = iota
	opNOP
	opLoad8
	opLoad16
	opStoreIndirect
	opLoadIndirect
	opStoreSP
	opInc16
	opDec16
	opAddHL
	opInc8
	opDec8
	opRotateA
	opDAA
	opCPL
	opSCF
	opCCF
	opStop
	opHalt
	opALU
	opJR
	opJP
	opJPHL
	opCall
	opRet
	opRETI
	opRST
	opPush
	opPop
	opStoreHigh
	opLoadHigh
	opStoreAbs
	opLoadAbs
	opAddSP
	opLoadHLSP
	opLoadSPHL
	opDI
	opEI
	opPrefix
	opShift
	opBit
	opRes
	opSet
	opCount
)

// Instruction is one decode table entry. Cycles is the cost when a
// conditional branch is not taken (or the only cost); Taken is the cost
// when it is.
type Instruction struct {
	Mnemonic string
	Operand  OperandKind
	Cycles   uint8
	Taken    uint8

	op   operation
	x, y uint8
}

// Defined reports whether the entry decodes to an operation.
func (in Instruction) Defined() bool { return in.op != opInvalid }

// Length is the encoded size including the opcode byte.
func (in Instruction) Length() int { return 1 + in.Operand.Len() }

const prefixCB = 0xCB

// Register codes as encoded in opcode bits: B C D E H L (HL) A.
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLInd
	regA
	srcImm // LD r,d8 and ALU d8 read the immediate
)

const condAlways uint8 = 4

const (
	aluADD uint8 = iota
	aluADC
	aluSUB
	aluSBC
	aluAND
	aluXOR
	aluOR
	aluCP
)

const (
	shRLC uint8 = iota
	shRRC
	shRL
	shRR
	shSLA
	shSRA
	shSWAP
	shSRL
)

var (
	r8Names   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	rpNames   = [4]string{"BC", "DE", "HL", "SP"}
	rp2Names  = [4]string{"BC", "DE", "HL", "AF"}
	condNames = [4]string{"NZ", "Z", "NC", "C"}
	aluNames  = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	shNames   = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	indNames  = [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}
)

var (
	primary  [256]Instruction
	extended [256]Instruction
)

// Lookup returns the entry for opcode in the primary or extended table.
func Lookup(opcode byte, ext bool) Instruction {
	if ext {
		return extended[opcode]
	}
	return primary[opcode]
}

func define(opcode byte, mnemonic string, operand OperandKind, cycles, taken uint8, op operation, x, y uint8) {
	if primary[opcode].Defined() {
		panic("cpu: opcode defined twice: " + mnemonic)
	}
	primary[opcode] = Instruction{Mnemonic: mnemonic, Operand: operand, Cycles: cycles, Taken: taken, op: op, x: x, y: y}
}

// r8Cost returns base when neither code is (HL), otherwise withHL.
func r8Cost(base, withHL uint8, codes ...uint8) uint8 {
	for _, c := range codes {
		if c == regHLInd {
			return withHL
		}
	}
	return base
}

func init() {
	define(0x00, "NOP", OperandNone, 4, 0, opNOP, 0, 0)
	define(0x08, "LD (a16),SP", OperandImm16, 20, 0, opStoreSP, 0, 0)
	define(0x10, "STOP", OperandImm8, 4, 0, opStop, 0, 0)
	define(0x18, "JR r8", OperandRel8, 12, 12, opJR, condAlways, 0)
	define(0x27, "DAA", OperandNone, 4, 0, opDAA, 0, 0)
	define(0x2F, "CPL", OperandNone, 4, 0, opCPL, 0, 0)
	define(0x37, "SCF", OperandNone, 4, 0, opSCF, 0, 0)
	define(0x3F, "CCF", OperandNone, 4, 0, opCCF, 0, 0)
	define(0x76, "HALT", OperandNone, 4, 0, opHalt, 0, 0)

	for i, name := range [4]string{"RLCA", "RRCA", "RLA", "RRA"} {
		define(0x07+byte(i)*8, name, OperandNone, 4, 0, opRotateA, uint8(i), 0)
	}

	for i := uint8(0); i < 4; i++ {
		define(0x02+i*16, "LD "+indNames[i]+",A", OperandNone, 8, 0, opStoreIndirect, i, 0)
		define(0x0A+i*16, "LD A,"+indNames[i], OperandNone, 8, 0, opLoadIndirect, i, 0)

		define(0x01+i*16, "LD "+rpNames[i]+",d16", OperandImm16, 12, 0, opLoad16, i, 0)
		define(0x03+i*16, "INC "+rpNames[i], OperandNone, 8, 0, opInc16, i, 0)
		define(0x0B+i*16, "DEC "+rpNames[i], OperandNone, 8, 0, opDec16, i, 0)
		define(0x09+i*16, "ADD HL,"+rpNames[i], OperandNone, 8, 0, opAddHL, i, 0)

		define(0xC1+i*16, "POP "+rp2Names[i], OperandNone, 12, 0, opPop, i, 0)
		define(0xC5+i*16, "PUSH "+rp2Names[i], OperandNone, 16, 0, opPush, i, 0)

		define(0x20+i*8, "JR "+condNames[i]+",r8", OperandRel8, 8, 12, opJR, i, 0)
		define(0xC0+i*8, "RET "+condNames[i], OperandNone, 8, 20, opRet, i, 0)
		define(0xC2+i*8, "JP "+condNames[i]+",a16", OperandImm16, 12, 16, opJP, i, 0)
		define(0xC4+i*8, "CALL "+condNames[i]+",a16", OperandImm16, 12, 24, opCall, i, 0)
	}

	for r := uint8(0); r < 8; r++ {
		define(0x04+r*8, "INC "+r8Names[r], OperandNone, r8Cost(4, 12, r), 0, opInc8, r, 0)
		define(0x05+r*8, "DEC "+r8Names[r], OperandNone, r8Cost(4, 12, r), 0, opDec8, r, 0)
		define(0x06+r*8, "LD "+r8Names[r]+",d8", OperandImm8, r8Cost(8, 12, r), 0, opLoad8, r, srcImm)

		define(0xC6+r*8, aluNames[r]+"d8", OperandImm8, 8, 0, opALU, r, srcImm)
		define(0xC7+r*8, rstName(r), OperandNone, 16, 0, opRST, 0, r*8)

		for src := uint8(0); src < 8; src++ {
			define(0x80+r*8+src, aluNames[r]+r8Names[src], OperandNone, r8Cost(4, 8, src), 0, opALU, r, src)
			if r == regHLInd && src == regHLInd {
				continue // 0x76 is HALT
			}
			define(0x40+r*8+src, "LD "+r8Names[r]+","+r8Names[src], OperandNone, r8Cost(4, 8, r, src), 0, opLoad8, r, src)
		}
	}

	define(0xC3, "JP a16", OperandImm16, 16, 16, opJP, condAlways, 0)
	define(0xC9, "RET", OperandNone, 16, 16, opRet, condAlways, 0)
	define(0xCB, "PREFIX CB", OperandNone, 0, 0, opPrefix, 0, 0)
	define(0xCD, "CALL a16", OperandImm16, 24, 24, opCall, condAlways, 0)
	define(0xD9, "RETI", OperandNone, 16, 0, opRETI, 0, 0)
	define(0xE0, "LDH (a8),A", OperandHigh8, 12, 0, opStoreHigh, 0, 0)
	define(0xF0, "LDH A,(a8)", OperandHigh8, 12, 0, opLoadHigh, 0, 0)
	define(0xE2, "LD (C),A", OperandNone, 8, 0, opStoreHigh, 1, 0)
	define(0xF2, "LD A,(C)", OperandNone, 8, 0, opLoadHigh, 1, 0)
	define(0xE8, "ADD SP,r8", OperandRel8, 16, 0, opAddSP, 0, 0)
	define(0xF8, "LD HL,SP+r8", OperandRel8, 12, 0, opLoadHLSP, 0, 0)
	define(0xE9, "JP (HL)", OperandNone, 4, 0, opJPHL, 0, 0)
	define(0xF9, "LD SP,HL", OperandNone, 8, 0, opLoadSPHL, 0, 0)
	define(0xEA, "LD (a16),A", OperandImm16, 16, 0, opStoreAbs, 0, 0)
	define(0xFA, "LD A,(a16)", OperandImm16, 16, 0, opLoadAbs, 0, 0)
	define(0xF3, "DI", OperandNone, 4, 0, opDI, 0, 0)
	define(0xFB, "EI", OperandNone, 4, 0, opEI, 0, 0)

	// Extended table: every entry is defined. Costs include the prefix byte.
	for op := 0; op < 256; op++ {
		kind, reg := uint8(op>>3)&7, uint8(op)&7
		in := Instruction{op: opShift, x: kind, y: reg, Cycles: r8Cost(8, 16, reg)}
		switch op >> 6 {
		case 0:
			in.Mnemonic = shNames[kind] + " " + r8Names[reg]
		case 1:
			in.op, in.Cycles = opBit, r8Cost(8, 12, reg)
			in.Mnemonic = "BIT " + string(rune('0'+kind)) + "," + r8Names[reg]
		case 2:
			in.op = opRes
			in.Mnemonic = "RES " + string(rune('0'+kind)) + "," + r8Names[reg]
		case 3:
			in.op = opSet
			in.Mnemonic = "SET " + string(rune('0'+kind)) + "," + r8Names[reg]
		}
		extended[op] = in
	}
}

func rstName(r uint8) string {
	const hex = "0123456789ABCDEF"
	v := r * 8
	return "RST " + string(hex[v>>4]) + string(hex[v&0x0F]) + "H"
}
