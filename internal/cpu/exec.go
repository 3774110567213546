package cpu

// handler executes one operation. The return value selects the taken-branch
// cycle cost.
type handler func(c *CPU, in *Instruction, imm uint16) bool

var handlers = [opCount]handler{
	opInvalid:       func(*CPU, *Instruction, uint16) bool { return false },
	opPrefix:        func(*CPU, *Instruction, uint16) bool { return false },
	opNOP:           func(*CPU, *Instruction, uint16) bool { return false },
	opLoad8:         execLoad8,
	opLoad16:        execLoad16,
	opStoreIndirect: execStoreIndirect,
	opLoadIndirect:  execLoadIndirect,
	opStoreSP:       execStoreSP,
	opInc16:         execInc16,
	opDec16:         execDec16,
	opAddHL:         execAddHL,
	opInc8:          execInc8,
	opDec8:          execDec8,
	opRotateA:       execRotateA,
	opDAA:           execDAA,
	opCPL:           execCPL,
	opSCF:           execSCF,
	opCCF:           execCCF,
	opStop:          execStop,
	opHalt:          execHalt,
	opALU:           execALU,
	opJR:            execJR,
	opJP:            execJP,
	opJPHL:          execJPHL,
	opCall:          execCall,
	opRet:           execRet,
	opRETI:          execRETI,
	opRST:           execRST,
	opPush:          execPush,
	opPop:           execPop,
	opStoreHigh:     execStoreHigh,
	opLoadHigh:      execLoadHigh,
	opStoreAbs:      execStoreAbs,
	opLoadAbs:       execLoadAbs,
	opAddSP:         execAddSP,
	opLoadHLSP:      execLoadHLSP,
	opLoadSPHL:      execLoadSPHL,
	opDI:            execDI,
	opEI:            execEI,
	opShift:         execShift,
	opBit:           execBit,
	opRes:           execRes,
	opSet:           execSet,
}

func execLoad8(c *CPU, in *Instruction, imm uint16) bool {
	v := byte(imm)
	if in.y != srcImm {
		v = c.reg8(in.y)
	}
	c.setReg8(in.x, v)
	return false
}

func execLoad16(c *CPU, in *Instruction, imm uint16) bool {
	c.setRP(in.x, imm)
	return false
}

func execStoreIndirect(c *CPU, in *Instruction, _ uint16) bool {
	c.write8(c.indirect(in.x), c.regs.A)
	return false
}

func execLoadIndirect(c *CPU, in *Instruction, _ uint16) bool {
	c.regs.A = c.read8(c.indirect(in.x))
	return false
}

func execStoreSP(c *CPU, _ *Instruction, imm uint16) bool {
	c.bus.Store16(imm, c.sp)
	return false
}

func execInc16(c *CPU, in *Instruction, _ uint16) bool {
	c.setRP(in.x, c.rp(in.x)+1)
	return false
}

func execDec16(c *CPU, in *Instruction, _ uint16) bool {
	c.setRP(in.x, c.rp(in.x)-1)
	return false
}

func execAddHL(c *CPU, in *Instruction, _ uint16) bool {
	hl, v := c.regs.HL(), c.rp(in.x)
	r := uint32(hl) + uint32(v)
	c.regs.setZNHC(c.regs.Flag(FlagZ), false, hl&0x0FFF+v&0x0FFF > 0x0FFF, r > 0xFFFF)
	c.regs.SetHL(uint16(r))
	return false
}

func execInc8(c *CPU, in *Instruction, _ uint16) bool {
	v := c.reg8(in.x)
	r := v + 1
	c.regs.setZNHC(r == 0, false, v&0x0F == 0x0F, c.regs.Flag(FlagC))
	c.setReg8(in.x, r)
	return false
}

func execDec8(c *CPU, in *Instruction, _ uint16) bool {
	v := c.reg8(in.x)
	r := v - 1
	c.regs.setZNHC(r == 0, true, v&0x0F == 0, c.regs.Flag(FlagC))
	c.setReg8(in.x, r)
	return false
}

// RLCA/RRCA/RLA/RRA share the extended rotates but always clear Z.
func execRotateA(c *CPU, in *Instruction, _ uint16) bool {
	r, cy := shift(in.x, c.regs.A, c.regs.carryBit())
	c.regs.A = r
	c.regs.setZNHC(false, false, false, cy)
	return false
}

func execDAA(c *CPU, _ *Instruction, _ uint16) bool {
	c.daa()
	return false
}

func execCPL(c *CPU, _ *Instruction, _ uint16) bool {
	c.regs.A = ^c.regs.A
	c.regs.SetFlag(FlagN, true)
	c.regs.SetFlag(FlagH, true)
	return false
}

func execSCF(c *CPU, _ *Instruction, _ uint16) bool {
	c.regs.setZNHC(c.regs.Flag(FlagZ), false, false, true)
	return false
}

func execCCF(c *CPU, _ *Instruction, _ uint16) bool {
	c.regs.setZNHC(c.regs.Flag(FlagZ), false, false, !c.regs.Flag(FlagC))
	return false
}

// STOP consumes its padding byte and resets the divider.
func execStop(c *CPU, _ *Instruction, _ uint16) bool {
	c.write8(0xFF04, 0)
	return false
}

func execHalt(c *CPU, _ *Instruction, _ uint16) bool {
	c.halted = true
	return false
}

func execALU(c *CPU, in *Instruction, imm uint16) bool {
	v := byte(imm)
	if in.y != srcImm {
		v = c.reg8(in.y)
	}
	c.alu(in.x, v)
	return false
}

func execJR(c *CPU, in *Instruction, imm uint16) bool {
	if !c.condition(in.x) {
		return false
	}
	c.pc += uint16(int16(int8(byte(imm))))
	return true
}

func execJP(c *CPU, in *Instruction, imm uint16) bool {
	if !c.condition(in.x) {
		return false
	}
	c.pc = imm
	return true
}

func execJPHL(c *CPU, _ *Instruction, _ uint16) bool {
	c.pc = c.regs.HL()
	return false
}

func execCall(c *CPU, in *Instruction, imm uint16) bool {
	if !c.condition(in.x) {
		return false
	}
	c.push16(c.pc)
	c.pc = imm
	return true
}

func execRet(c *CPU, in *Instruction, _ uint16) bool {
	if !c.condition(in.x) {
		return false
	}
	c.pc = c.pop16()
	return true
}

// RETI enables interrupts without the EI delay.
func execRETI(c *CPU, _ *Instruction, _ uint16) bool {
	c.pc = c.pop16()
	c.ime = true
	c.enableIME.cancel()
	c.disableIME.cancel()
	return false
}

func execRST(c *CPU, in *Instruction, _ uint16) bool {
	c.push16(c.pc)
	c.pc = uint16(in.y)
	return false
}

func execPush(c *CPU, in *Instruction, _ uint16) bool {
	c.push16(c.rp2(in.x))
	return false
}

func execPop(c *CPU, in *Instruction, _ uint16) bool {
	c.setRP2(in.x, c.pop16())
	return false
}

func highAddr(c *CPU, in *Instruction, imm uint16) uint16 {
	if in.x == 1 {
		return 0xFF00 | uint16(c.regs.C)
	}
	return 0xFF00 | imm&0xFF
}

func execStoreHigh(c *CPU, in *Instruction, imm uint16) bool {
	c.write8(highAddr(c, in, imm), c.regs.A)
	return false
}

func execLoadHigh(c *CPU, in *Instruction, imm uint16) bool {
	c.regs.A = c.read8(highAddr(c, in, imm))
	return false
}

func execStoreAbs(c *CPU, _ *Instruction, imm uint16) bool {
	c.write8(imm, c.regs.A)
	return false
}

func execLoadAbs(c *CPU, _ *Instruction, imm uint16) bool {
	c.regs.A = c.read8(imm)
	return false
}

func execAddSP(c *CPU, _ *Instruction, imm uint16) bool {
	c.sp = c.addSP(imm)
	return false
}

func execLoadHLSP(c *CPU, _ *Instruction, imm uint16) bool {
	c.regs.SetHL(c.addSP(imm))
	return false
}

func execLoadSPHL(c *CPU, _ *Instruction, _ uint16) bool {
	c.sp = c.regs.HL()
	return false
}

func execDI(c *CPU, _ *Instruction, _ uint16) bool {
	c.enableIME.cancel()
	c.disableIME.arm()
	return false
}

func execEI(c *CPU, _ *Instruction, _ uint16) bool {
	c.disableIME.cancel()
	c.enableIME.arm()
	return false
}

func execShift(c *CPU, in *Instruction, _ uint16) bool {
	r, cy := shift(in.x, c.reg8(in.y), c.regs.carryBit())
	c.regs.setZNHC(r == 0, false, false, cy)
	c.setReg8(in.y, r)
	return false
}

func execBit(c *CPU, in *Instruction, _ uint16) bool {
	v := c.reg8(in.y)
	c.regs.setZNHC(v&(1<<in.x) == 0, false, true, c.regs.Flag(FlagC))
	return false
}

func execRes(c *CPU, in *Instruction, _ uint16) bool {
	c.setReg8(in.y, c.reg8(in.y)&^(1<<in.x))
	return false
}

func execSet(c *CPU, in *Instruction, _ uint16) bool {
	c.setReg8(in.y, c.reg8(in.y)|1<<in.x)
	return false
}
