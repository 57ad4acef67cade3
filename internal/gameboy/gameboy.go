// Package gameboy assembles the CPU, bus, and every peripheral into a
// runnable machine, and exposes the host-facing driver API: load a
// cartridge, step or run frames, feed input, and read back the
// framebuffer and battery RAM.
package gameboy

import (
	"github.com/retrocore/gbcore/internal/cartridge"
	"github.com/retrocore/gbcore/internal/cpu"
	"github.com/retrocore/gbcore/internal/joypad"
	"github.com/retrocore/gbcore/internal/mmu"
	"github.com/retrocore/gbcore/internal/ppu"
	"github.com/retrocore/gbcore/pkg/log"
)

// ClockSpeed is the unmodified (single-speed) Sharp LR35902 clock rate.
const ClockSpeed = 4194304

// CyclesPerFrame is the T-state length of one 160x144 frame at 59.7Hz.
const CyclesPerFrame = 70224

// Model selects which hardware the machine boots as.
type Model uint8

const (
	// ModelAuto selects CGB or DMG based on the cartridge header's
	// compatibility flag.
	ModelAuto Model = iota
	ModelDMG
	ModelCGB
)

// GameBoy is a fully wired machine: CPU, bus, and every peripheral the bus
// owns.
type GameBoy struct {
	CPU *cpu.CPU
	Bus *mmu.MMU

	cgb bool
	log log.Logger
}

// Option configures a GameBoy at construction time.
type Option func(*config)

type config struct {
	model  Model
	logger log.Logger
	debug  bool
}

// WithModel forces DMG or CGB mode instead of auto-detecting from the
// cartridge header.
func WithModel(m Model) Option {
	return func(c *config) { c.model = m }
}

// WithLogger supplies a logger the machine uses for diagnostic output
// (unmapped I/O accesses, cartridge warnings). Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDebug sets the CPU's Debug flag. Undefined opcodes fault whether or
// not it is given.
func WithDebug() Option {
	return func(c *config) { c.debug = true }
}

// New loads rom and returns a machine ready to Step or RunFrame.
func New(rom []byte, opts ...Option) (*GameBoy, error) {
	cfg := config{logger: log.NewNullLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cart, err := cartridge.Load(rom, cfg.logger)
	if err != nil {
		return nil, err
	}

	cgb := cfg.model == ModelCGB || (cfg.model == ModelAuto && cart.Header().CGB())

	bus := mmu.New(cart, cgb, cfg.logger)
	c := cpu.New(bus, bus.IRQ)
	c.Debug = cfg.debug

	gb := &GameBoy{CPU: c, Bus: bus, cgb: cgb, log: cfg.logger}
	gb.reset()
	return gb, nil
}

// reset puts registers into the documented post-boot-ROM state, since this
// core never executes the real boot ROM.
func (g *GameBoy) reset() {
	g.CPU.PC = 0x0100
	g.CPU.SP = 0xFFFE
	if g.cgb {
		g.CPU.SetAF(0x1180)
		g.CPU.SetBC(0x0000)
		g.CPU.SetDE(0xFF56)
		g.CPU.SetHL(0x000D)
	} else {
		g.CPU.SetAF(0x01B0)
		g.CPU.SetBC(0x0013)
		g.CPU.SetDE(0x00D8)
		g.CPU.SetHL(0x014D)
	}
	g.Bus.IRQ.Enable = 0
	g.Bus.IRQ.Flag = 0xE1
}

// Step executes exactly one CPU instruction (or one 4-cycle tick while
// halted/stopped) and returns the T-states it consumed.
func (g *GameBoy) Step() uint16 {
	cycles := g.CPU.Step()
	if g.Bus.SpeedSwitchPending() {
		g.Bus.CompleteSpeedSwitch()
		g.CPU.SetDoubleSpeed(g.Bus.DoubleSpeed())
	}
	return cycles
}

// RunUntil steps the CPU until the running cycle total has advanced by at
// least cycleBudget T-states (one frame = CyclesPerFrame).
func (g *GameBoy) RunUntil(cycleBudget uint64) {
	target := g.CPU.Cycles() + cycleBudget
	for g.CPU.Cycles() < target {
		g.Step()
	}
}

// RunFrame steps the CPU until a full frame has been rendered, and returns
// the resulting framebuffer.
func (g *GameBoy) RunFrame() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	for !g.Bus.PPU.FrameReady() {
		g.Step()
	}
	return g.Bus.PPU.FrameBuffer()
}

// Frame steps the CPU until a new frame has been rendered and returns it.
func (g *GameBoy) Frame() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	return g.RunFrame()
}

// FrameBuffer returns the most recently completed frame.
func (g *GameBoy) FrameBuffer() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	return g.Bus.PPU.FrameBuffer()
}

func (g *GameBoy) PressButton(b joypad.Button)   { g.Bus.Joypad.Press(b) }
func (g *GameBoy) ReleaseButton(b joypad.Button) { g.Bus.Joypad.Release(b) }

// SaveRAM returns the cartridge's battery-backed RAM, or nil if it has
// none.
func (g *GameBoy) SaveRAM() []byte { return g.Bus.Cart.SaveRAM() }

// LoadRAM restores previously saved battery-backed RAM.
func (g *GameBoy) LoadRAM(data []byte) error { return g.Bus.Cart.LoadRAM(data) }

// RequestDebugBreak asks the CPU to stop before its next instruction.
func (g *GameBoy) RequestDebugBreak() { g.CPU.RequestDebugBreak() }

// Model reports whether the machine booted as DMG or CGB.
func (g *GameBoy) Model() Model {
	if g.cgb {
		return ModelCGB
	}
	return ModelDMG
}
