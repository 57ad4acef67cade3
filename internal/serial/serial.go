// Package serial provides a register-only stand-in for the link cable: no
// peer is ever attached, so every transfer immediately "completes", SB is
// cleared, and the outgoing byte is logged for diagnostic purposes rather
// than delivered anywhere.
package serial

import (
	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/retrocore/gbcore/internal/types"
	"github.com/retrocore/gbcore/pkg/log"
)

type Port struct {
	data    uint8
	control uint8

	irq *interrupts.State
	log log.Logger
}

func New(irq *interrupts.State, logger log.Logger) *Port {
	return &Port{irq: irq, log: logger, control: 0x7E}
}

func (p *Port) Read(addr uint16) uint8 {
	switch addr {
	case types.SB:
		return p.data
	case types.SC:
		return p.control | 0x7E
	}
	return 0xFF
}

// Write stores SB verbatim. Writing SC with the transfer-start bit (0x80)
// set begins an unconnected transfer: since there is no peer to clock bits
// in, the core treats it as instantaneous, logs the outgoing byte, clears
// SB and the start bit, and raises Serial immediately.
func (p *Port) Write(addr uint16, value uint8) {
	switch addr {
	case types.SB:
		p.data = value
	case types.SC:
		p.control = value | 0x7E
		if value&0x80 != 0 {
			p.log.Debugf("serial: transfer 0x%02X (no peer attached)", p.data)
			p.data = 0
			p.control &^= 0x80
			p.irq.Request(interrupts.Serial)
		}
	}
}
