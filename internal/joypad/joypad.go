// Package joypad emulates the P1 joypad register: two 4-bit button groups
// multiplexed onto the same nibble, selected by writing bits 4-5.
package joypad

import "github.com/retrocore/gbcore/internal/interrupts"

// Button identifies one of the eight physical buttons. The low nibble of
// held tracks Right/Left/Up/Down (bits 0-3); the high nibble tracks
// A/B/Select/Start (bits 4-7), matching how P1 reads them back.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Joypad tracks the held-button state and the P1 select bits the game
// writes to choose which nibble it wants to read.
type Joypad struct {
	held   uint8
	select_ uint8 // P1 bits 4-5, 0 meaning "selected"

	irq *interrupts.State
}

func New(irq *interrupts.State) *Joypad {
	return &Joypad{irq: irq, select_: 0x30}
}

// Press marks button held and raises the Joypad interrupt if the bit just
// transitioned from released to held on a currently-selected nibble.
func (j *Joypad) Press(b Button) {
	before := j.Read()
	j.held |= 1 << b
	after := j.Read()
	if before&0x0F != after&0x0F {
		j.irq.Request(interrupts.Joypad)
	}
}

func (j *Joypad) Release(b Button) {
	j.held &^= 1 << b
}

// Read returns the live P1 register value: bits 6-7 always set, the
// selected nibble(s) pulled low for held buttons, unselected bits read 1.
func (j *Joypad) Read() uint8 {
	result := uint8(0x0F)
	if j.select_&0x10 == 0 { // directions selected
		result &^= j.held & 0x0F
	}
	if j.select_&0x20 == 0 { // actions selected
		result &^= (j.held >> 4) & 0x0F
	}
	return result | j.select_ | 0xC0
}

func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0x30
}
