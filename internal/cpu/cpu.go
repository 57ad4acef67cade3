// Package cpu implements the Sharp LR35902 instruction interpreter: register
// file, flag contracts, the 256 unprefixed and 256 CB-prefixed opcodes,
// interrupt dispatch, and HALT/STOP/double-speed semantics.
package cpu

import (
	"fmt"

	"github.com/retrocore/gbcore/internal/interrupts"
)

// Bus is everything the CPU needs from the rest of the machine. A single
// implementation (the MMU) satisfies it; the CPU never reaches into VRAM,
// cartridge, or peripheral state directly.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// Advance runs every ticked peripheral (PPU, timer, cartridge clock) forward
	// by cycles T-states. Called once the CPU knows how long the current
	// step actually took.
	Advance(cycles uint16)
}

// Mode tracks the CPU's run state outside of normal fetch-execute.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeHalt
	ModeHaltBug
	ModeStop
)

// CPU is the Sharp LR35902 interpreter.
type CPU struct {
	Registers
	PC, SP uint16

	bus Bus
	irq *interrupts.State

	mode        Mode
	doubleSpeed bool

	// Debug/testing hooks.
	Debug           bool
	DebugBreakpoint bool
	StrictOpcodes   bool
	Fault           *BadOpcodeError

	debugBreakRequested bool

	cycles uint64 // monotonic T-state counter since construction
}

// BadOpcodeError is raised when the CPU decodes one of the eleven bytes that
// have no defined instruction on real hardware.
type BadOpcodeError struct {
	PC uint16
	Op uint8
}

func (e *BadOpcodeError) Error() string {
	return fmt.Sprintf("undefined opcode 0x%02X at 0x%04X", e.Op, e.PC)
}

// New returns a CPU wired to bus and irq. StrictOpcodes defaults to true:
// an undefined opcode halts the interpreter in place and records Fault,
// rather than silently behaving like a NOP.
func New(bus Bus, irq *interrupts.State) *CPU {
	return &CPU{bus: bus, irq: irq, StrictOpcodes: true}
}

// Cycles returns the number of T-states executed since construction.
func (c *CPU) Cycles() uint64 { return c.cycles }

// SetDoubleSpeed flips the CPU's internal double-speed flag; called by the
// bus when the STOP-triggered speed switch (KEY1) completes.
func (c *CPU) SetDoubleSpeed(v bool) { c.doubleSpeed = v }

// DoubleSpeed reports the current speed mode.
func (c *CPU) DoubleSpeed() bool { return c.doubleSpeed }

// RequestDebugBreak asks Step to return before executing the next
// instruction, giving the host a cooperative breakpoint.
func (c *CPU) RequestDebugBreak() { c.debugBreakRequested = true }

// Step advances the CPU by one instruction, or by one 4-cycle tick while
// halted/stopped, and returns the number of T-states consumed. Interrupt
// arbitration happens at the top of every step per §4.1, before the next
// opcode is fetched: HALT is woken by any pending (enabled & requested)
// interrupt regardless of IME; dispatch itself only happens when IME is
// set, and when it does, it preempts the fetch entirely rather than
// running after it.
func (c *CPU) Step() uint16 {
	if c.debugBreakRequested {
		c.debugBreakRequested = false
		return 0
	}
	if c.Fault != nil {
		// a strict undefined-opcode fault freezes the CPU; the host must
		// inspect Fault and decide what to do next.
		c.advance(4)
		return 4
	}

	if c.irq.Pending() {
		if c.mode == ModeHalt || c.mode == ModeStop {
			c.mode = ModeNormal
		}
	}

	if c.irq.IME && c.irq.Pending() {
		cycles := c.dispatchInterrupt()
		c.advance(cycles)
		return cycles
	}

	var cycles uint16
	switch c.mode {
	case ModeHalt, ModeStop:
		cycles = 4
	case ModeHaltBug:
		// the byte after HALT executes twice: PC is not advanced past the
		// opcode we are about to re-fetch.
		c.mode = ModeNormal
		op := c.bus.Read(c.PC)
		cycles = c.execute(op)
	default:
		op := c.fetchOpcode()
		cycles = c.execute(op)
	}

	c.irq.Tick()
	c.advance(cycles)
	return cycles
}

func (c *CPU) advance(cycles uint16) {
	c.cycles += uint64(cycles)
	c.bus.Advance(cycles)
}

func (c *CPU) fetchOpcode() uint8 {
	op := c.bus.Read(c.PC)
	c.PC++
	return op
}

// fetch8 reads the immediate byte following the opcode.
func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

// fetch16 reads the little-endian immediate word following the opcode.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.bus.Write(c.SP, uint8(v>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.bus.Read(c.SP)
	c.SP++
	hi := c.bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// dispatchInterrupt services the highest-priority pending interrupt: push
// PC, clear IME, clear the serviced IF bit, and jump to its vector. Costs a
// fixed 20 T-states (5 M-cycles), per §4.1.
func (c *CPU) dispatchInterrupt() uint16 {
	source, ok := c.irq.NextSource()
	if !ok {
		return 0
	}
	c.irq.IME = false
	c.irq.Clear(source)
	c.push16(c.PC)
	c.PC = interruptVector(source)
	return 20
}

func interruptVector(source uint8) uint16 {
	return 0x0040 + uint16(source)*8
}

// execute decodes and runs a single opcode, returning the T-states it
// consumed (including any taken-branch adjustment).
func (c *CPU) execute(op uint8) uint16 {
	if op == 0xCB {
		return c.executeCB(c.fetch8())
	}
	if isUndefinedOpcode(op) {
		c.Fault = &BadOpcodeError{PC: c.PC - 1, Op: op}
		if !c.StrictOpcodes {
			c.Fault = nil
			return 4
		}
		return 4
	}
	return c.decode(op)
}

func isUndefinedOpcode(op uint8) bool {
	switch op {
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return true
	}
	return false
}
