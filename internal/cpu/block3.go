package cpu

// decodeBlock3 handles opcodes 0xC0-0xFF: conditional/unconditional
// RET/JP/CALL, PUSH/POP, RST, the immediate ALU forms, and the irregular
// stack/IO/interrupt-control opcodes that don't follow the block's usual
// column pattern (LDH, LD (C),A, ADD SP,r8, JP (HL), DI/EI, ...).
func (c *CPU) decodeBlock3(op uint8) uint16 {
	switch op {
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.irq.IME = true
		return 16
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xE9: // JP (HL)
		c.PC = c.HL()
		return 4
	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xE0: // LDH (a8), A
		addr := 0xFF00 + uint16(c.fetch8())
		c.bus.Write(addr, c.A)
		return 12
	case 0xF0: // LDH A, (a8)
		addr := 0xFF00 + uint16(c.fetch8())
		c.A = c.bus.Read(addr)
		return 12
	case 0xE2: // LD (C), A
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A, (C)
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 8
	case 0xEA: // LD (a16), A
		c.bus.Write(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A, (a16)
		c.A = c.bus.Read(c.fetch16())
		return 16
	case 0xF3: // DI
		c.irq.IME = false
		return 4
	case 0xFB: // EI
		c.irq.RequestEI()
		return 4
	case 0xE8: // ADD SP, r8
		c.SP = c.addSPOffset(int8(c.fetch8()))
		return 16
	case 0xF8: // LD HL, SP+r8
		c.SetHL(c.addSPOffset(int8(c.fetch8())))
		return 12
	case 0xF9: // LD SP, HL
		c.SP = c.HL()
		return 8
	}

	switch op & 7 {
	case 0: // RET cc
		f := op >> 3 & 3
		if c.cond(f) {
			c.PC = c.pop16()
			return 20
		}
		return 8
	case 1: // POP r16 (AF-remapped)
		r := op >> 4 & 3
		c.setPushPop(r, c.pop16())
		return 12
	case 2: // JP cc, a16
		f := op >> 3 & 3
		addr := c.fetch16()
		if c.cond(f) {
			c.PC = addr
			return 16
		}
		return 12
	case 4: // CALL cc, a16
		f := op >> 3 & 3
		addr := c.fetch16()
		if c.cond(f) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 5: // PUSH r16 (AF-remapped)
		r := op >> 4 & 3
		c.push16(c.getPushPop(r))
		return 16
	case 6: // ALU A, d8
		return c.decodeALU(op, c.fetch8())
	default: // RST z*8
		z := op >> 3 & 7
		c.push16(c.PC)
		c.PC = uint16(z) * 8
		return 16
	}
}

// addSPOffset implements the shared semantics of ADD SP,r8 and
// LD HL,SP+r8: flags are computed from the unsigned low-byte addition of SP
// and the immediate, with Z and N always cleared, matching real hardware's
// documented (if quirky) 8-bit half/full carry check.
func (c *CPU) addSPOffset(off int8) uint16 {
	sp := c.SP
	result := uint16(int32(sp) + int32(off))
	half := (sp&0xF)+(uint16(uint8(off))&0xF) > 0xF
	carry := (sp&0xFF)+uint16(uint8(off)) > 0xFF
	c.SetFlags(false, false, half, carry)
	return result
}
