package cpu

import (
	"testing"

	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB address space with no peripheral timing, enough to
// drive the interpreter's opcode semantics in isolation.
type fakeBus struct {
	mem     [0x10000]byte
	advance uint16
}

func (b *fakeBus) Read(addr uint16) uint8     { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, v uint8) { b.mem[addr] = v }
func (b *fakeBus) Advance(cycles uint16)      { b.advance += cycles }

func newTestCPU() (*CPU, *fakeBus, *interrupts.State) {
	bus := &fakeBus{}
	irq := interrupts.New()
	c := New(bus, irq)
	return c, bus, irq
}

func (b *fakeBus) load(addr uint16, program ...uint8) {
	copy(b.mem[addr:], program)
}

func TestAddHLBC(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.SetBC(0x0605)
	c.SetHL(0x8A23)
	bus.load(0, 0x09) // ADD HL, BC
	cycles := c.Step()

	assert.Equal(t, uint16(8), cycles)
	assert.Equal(t, uint16(0x9028), c.HL())
	assert.True(t, c.HFlag())
	assert.False(t, c.CFlag())
	assert.False(t, c.N())
}

func TestConditionalRetTakenAndNotTaken(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.SP = 0xFFFE
	bus.load(0xFFFE, 0x00, 0x01) // return address 0x0100
	bus.load(0, 0xC0)            // RET NZ

	c.SetFlags(false, false, false, false) // Z=0, so the return is taken
	cycles := c.Step()
	assert.Equal(t, uint16(20), cycles)
	assert.Equal(t, uint16(0x0100), c.PC)

	c.PC = 0
	c.SP = 0xFFFE
	bus.load(0, 0xC0)
	c.SetFlags(true, false, false, false) // Z=1, RET NZ not taken
	cycles = c.Step()
	assert.Equal(t, uint16(8), cycles)
	assert.Equal(t, uint16(1), c.PC)
}

func TestInterruptDispatch(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.load(0, 0x00) // NOP at PC; dispatch must preempt it, not run it first
	c.PC = 0x1000
	c.SP = 0xFFFE
	irq.IME = true
	irq.Enable = 1 << interrupts.VBlank
	irq.Request(interrupts.VBlank)

	cycles := c.Step()

	assert.Equal(t, uint16(20), cycles)
	assert.Equal(t, uint16(0x0040), c.PC)
	assert.False(t, irq.IME)
	assert.Equal(t, uint8(0), irq.Flag&(1<<interrupts.VBlank))
	assert.Equal(t, uint16(0x1000), c.pop16())
}

func TestEIDelayedByOneInstruction(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.load(0, 0xFB, 0x00, 0x00) // EI, NOP, NOP
	irq.IME = false

	c.Step() // executes EI; IME still false immediately after
	assert.False(t, irq.IME)

	c.Step() // executes the NOP right after EI; IME takes effect now
	assert.True(t, irq.IME)
}

func TestHaltBugReexecutesFollowingByte(t *testing.T) {
	c, bus, irq := newTestCPU()
	irq.IME = false
	irq.Enable = 1 << interrupts.Timer
	irq.Request(interrupts.Timer) // pending with IME=0 triggers the HALT bug
	bus.load(0, 0x76, 0x3C)       // HALT, INC A
	c.A = 0

	c.Step() // HALT decodes into the bug mode instead of actually halting
	require.Equal(t, ModeHaltBug, c.mode)

	c.Step() // INC A executes
	assert.Equal(t, uint8(1), c.A)
	c.Step() // INC A executes again: PC was never advanced past it
	assert.Equal(t, uint8(2), c.A)
}

func TestDAAAfterBCDAddition(t *testing.T) {
	c, _, _ := newTestCPU()
	c.A = 0x45
	c.add(0x38, false) // 0x45 + 0x38 = 0x7D, H clear; low nibble 0xD > 9 needs +0x06
	c.daa()
	assert.Equal(t, uint8(0x83), c.A)
	assert.False(t, c.CFlag())
}

func TestIncDoesNotTouchCarry(t *testing.T) {
	c, _, _ := newTestCPU()
	c.SetFlags(false, false, false, true)
	c.B = 0xFF
	bus := c.bus.(*fakeBus)
	bus.load(0, 0x04) // INC B
	c.Step()
	assert.Equal(t, uint8(0), c.B)
	assert.True(t, c.Z())
	assert.True(t, c.HFlag())
	assert.True(t, c.CFlag()) // untouched by INC
}

func TestPushPopRemapsIndex3ToAF(t *testing.T) {
	c, _, _ := newTestCPU()
	c.SP = 0xFFFE
	c.SetAF(0x1230)
	c.push16(c.getPushPop(3))
	c.SetAF(0)
	c.setPushPop(3, c.pop16())
	assert.Equal(t, uint16(0x1230), c.AF())
}

func TestUndefinedOpcodeFaults(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.load(0, 0xD3)
	c.Step()
	require.NotNil(t, c.Fault)
	assert.Equal(t, uint8(0xD3), c.Fault.Op)
}
