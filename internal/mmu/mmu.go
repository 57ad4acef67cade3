// Package mmu provides the Game Boy's memory-mapped bus: region dispatch
// across cartridge ROM/RAM, VRAM, working RAM (with CGB banking), OAM, I/O
// registers, HRAM, and the interrupt-enable register. The MMU is the sole
// implementation of cpu.Bus; every peripheral it owns is advanced once per
// instruction from Advance rather than on every individual memory access.
package mmu

import (
	"github.com/retrocore/gbcore/internal/apu"
	"github.com/retrocore/gbcore/internal/cartridge"
	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/retrocore/gbcore/internal/joypad"
	"github.com/retrocore/gbcore/internal/ppu"
	"github.com/retrocore/gbcore/internal/ram"
	"github.com/retrocore/gbcore/internal/serial"
	"github.com/retrocore/gbcore/internal/timer"
	"github.com/retrocore/gbcore/internal/types"
	"github.com/retrocore/gbcore/pkg/log"
)

// MMU wires every peripheral into the flat 64KiB address space.
type MMU struct {
	Cart *cartridge.Cartridge
	PPU  *ppu.PPU
	Timer *timer.Timer
	Joypad *joypad.Joypad
	Serial *serial.Port
	APU    *apu.APU
	IRQ    *interrupts.State

	wram     [8]*ram.RAM // bank 0 fixed, banks 1-7 switchable via SVBK on CGB
	wramBank uint8
	hram     *ram.RAM

	cgb   bool
	key0  uint8
	key1  uint8
	svbk  uint8

	dmaRegister uint8

	hdma hdmaController

	log log.Logger
}

// New wires a fully-assembled bus around an already-loaded cartridge.
func New(cart *cartridge.Cartridge, cgb bool, logger log.Logger) *MMU {
	m := &MMU{
		Cart:   cart,
		IRQ:    interrupts.New(),
		hram:   ram.New(0x7F),
		cgb:    cgb,
		svbk:   1,
		log:    logger,
	}
	for i := range m.wram {
		m.wram[i] = ram.New(0x1000)
	}
	m.PPU = ppu.New(m.IRQ, cgb)
	m.Timer = timer.New(m.IRQ)
	m.Joypad = joypad.New(m.IRQ)
	m.Serial = serial.New(m.IRQ, logger)
	m.APU = apu.New()
	m.hdma.mmu = m
	return m
}

func (m *MMU) wramBankIndex() uint8 {
	if m.cgb && m.svbk&0x07 != 0 {
		return m.svbk & 0x07
	}
	return 1
}

// Read dispatches a CPU-visible memory read across every mapped region.
func (m *MMU) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.Cart.Read(addr)
	case addr < 0xA000:
		return m.PPU.Read(addr)
	case addr < 0xC000:
		return m.Cart.Read(addr)
	case addr < 0xD000:
		return m.wram[0].Read(addr - 0xC000)
	case addr < 0xE000:
		return m.wram[m.wramBankIndex()].Read(addr - 0xD000)
	case addr < 0xFE00: // echo of 0xC000-0xDDFF
		return m.Read(addr - 0x2000)
	case addr < 0xFEA0:
		return m.PPU.Read(addr)
	case addr < 0xFF00:
		return 0 // unusable
	case addr < 0xFF80:
		return m.readIO(addr)
	case addr < 0xFFFF:
		return m.hram.Read(addr - 0xFF80)
	default:
		return m.IRQ.Read(addr)
	}
}

// Write dispatches a CPU-visible memory write across every mapped region.
func (m *MMU) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		m.Cart.Write(addr, value)
	case addr < 0xA000:
		m.PPU.Write(addr, value)
	case addr < 0xC000:
		m.Cart.Write(addr, value)
	case addr < 0xD000:
		m.wram[0].Write(addr-0xC000, value)
	case addr < 0xE000:
		m.wram[m.wramBankIndex()].Write(addr-0xD000, value)
	case addr < 0xFE00:
		m.Write(addr-0x2000, value)
	case addr < 0xFEA0:
		m.PPU.Write(addr, value)
	case addr < 0xFF00:
		// unusable, writes are dropped
	case addr < 0xFF80:
		m.writeIO(addr, value)
	case addr < 0xFFFF:
		m.hram.Write(addr-0xFF80, value)
	default:
		m.IRQ.Write(addr, value)
	}
}

func (m *MMU) readIO(addr uint16) uint8 {
	switch {
	case addr == types.P1:
		return m.Joypad.Read()
	case addr == types.SB, addr == types.SC:
		return m.Serial.Read(addr)
	case addr == types.DIV, addr == types.TIMA, addr == types.TMA, addr == types.TAC:
		return m.Timer.Read(addr)
	case addr == types.IF:
		return m.IRQ.Read(addr)
	case addr >= 0xFF10 && addr <= types.WaveRAMEnd:
		return m.APU.Read(addr)
	case addr >= types.LCDC && addr <= types.WX:
		return m.PPU.Read(addr)
	case addr == types.DMA:
		return m.dmaRegister
	case addr == types.KEY0:
		return m.key0
	case addr == types.KEY1:
		return m.key1
	case addr == types.VBK:
		return m.PPU.Read(addr)
	case addr >= types.HDMA1 && addr <= types.HDMA5:
		return m.hdma.read(addr)
	case addr == types.BCPS, addr == types.BCPD, addr == types.OCPS, addr == types.OCPD:
		return m.PPU.Read(addr)
	case addr == types.SVBK:
		if !m.cgb {
			return 0xFF
		}
		return m.svbk | 0xF8
	}
	m.log.Debugf("mmu: read from unmapped I/O register 0x%04X", addr)
	return 0
}

func (m *MMU) writeIO(addr uint16, value uint8) {
	switch {
	case addr == types.P1:
		m.Joypad.Write(value)
	case addr == types.SB, addr == types.SC:
		m.Serial.Write(addr, value)
	case addr == types.DIV, addr == types.TIMA, addr == types.TMA, addr == types.TAC:
		m.Timer.Write(addr, value)
	case addr == types.IF:
		m.IRQ.Write(addr, value)
	case addr >= 0xFF10 && addr <= types.WaveRAMEnd:
		m.APU.Write(addr, value)
	case addr >= types.LCDC && addr <= types.WX:
		m.PPU.Write(addr, value)
	case addr == types.DMA:
		m.startOAMDMA(value)
	case addr == types.KEY0:
		if m.cgb {
			m.key0 = value & 0x0F
		}
	case addr == types.KEY1:
		if m.cgb {
			m.key1 = m.key1&0x80 | value&0x01
		}
	case addr == types.VBK:
		m.PPU.Write(addr, value)
	case addr >= types.HDMA1 && addr <= types.HDMA5:
		m.hdma.write(addr, value)
	case addr == types.BCPS, addr == types.BCPD, addr == types.OCPS, addr == types.OCPD:
		m.PPU.Write(addr, value)
	case addr == types.SVBK:
		if m.cgb {
			m.svbk = value & 0x07
		}
	default:
		m.log.Debugf("mmu: write to unmapped I/O register 0x%04X = 0x%02X", addr, value)
	}
}

// Advance runs every ticked peripheral forward by cycles T-states, called
// once per CPU step after the instruction's true cost is known. In
// double-speed mode the PPU and the cartridge clock, which run at a fixed
// real-time rate, see half as many T-states; the timer sees all of them.
func (m *MMU) Advance(cycles uint16) {
	fixedRate := cycles
	if m.DoubleSpeed() {
		fixedRate = cycles / 2
	}
	m.PPU.Advance(fixedRate)
	m.Timer.Advance(cycles)
	m.Cart.Tick(fixedRate)
}

// SpeedSwitchPending reports whether KEY1's armed bit is set (it changes
// nothing; CompleteSpeedSwitch does the switch) - called by the host
// driver immediately after a STOP instruction completes.
func (m *MMU) SpeedSwitchPending() bool {
	return m.cgb && m.key1&0x01 != 0
}

// CompleteSpeedSwitch toggles KEY1's reported-speed bit and clears the arm
// bit, reporting whether a switch actually happened.
func (m *MMU) CompleteSpeedSwitch() bool {
	if !m.SpeedSwitchPending() {
		return false
	}
	m.key1 ^= 0x80
	m.key1 &^= 0x01
	return true
}

// DoubleSpeed reports KEY1's current-speed bit.
func (m *MMU) DoubleSpeed() bool {
	return m.key1&0x80 != 0
}
