package cpu

// reg8 identifies one of the eight 8-bit operand slots used throughout the
// unprefixed and CB-prefixed opcode space: B, C, D, E, H, L, (HL), A. Index
// 6 ((HL)) is special-cased to go through the bus instead of a register.
func (c *CPU) getReg8(idx uint8) uint8 {
	switch idx & 7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.bus.Read(c.HL())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(idx uint8, v uint8) {
	switch idx & 7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.bus.Write(c.HL(), v)
	default:
		c.A = v
	}
}

// reg16 identifies one of the four register-pair slots used by 16-bit
// load/inc/dec/add instructions: BC, DE, HL, SP.
func (c *CPU) getReg16(idx uint8) uint16 {
	switch idx & 3 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setReg16(idx uint8, v uint16) {
	switch idx & 3 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// pushPopPair identifies the register pair PUSH/POP operate on: index 3
// remaps from SP to AF, since the stack pointer itself can never be pushed.
func (c *CPU) getPushPop(idx uint8) uint16 {
	if idx&3 == 3 {
		return c.AF()
	}
	return c.getReg16(idx)
}

func (c *CPU) setPushPop(idx uint8, v uint16) {
	if idx&3 == 3 {
		c.SetAF(v)
		return
	}
	c.setReg16(idx, v)
}

// cond evaluates one of the four branch conditions NZ, Z, NC, C encoded in
// bits 3-4 of a conditional jump/call/return opcode.
func (c *CPU) cond(f uint8) bool {
	switch f & 3 {
	case 0:
		return !c.Z()
	case 1:
		return c.Z()
	case 2:
		return !c.CFlag()
	default:
		return c.CFlag()
	}
}
