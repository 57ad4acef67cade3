package joypad

import (
	"testing"

	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/stretchr/testify/assert"
)

func TestReadReflectsSelectedNibble(t *testing.T) {
	irq := interrupts.New()
	j := New(irq)
	j.Press(ButtonA)
	j.Press(ButtonDown)

	j.Write(0x10) // bit4=1,bit5=0: action keys selected
	assert.Equal(t, uint8(0xDE), j.Read())

	j.Write(0x20) // bit4=0,bit5=1: direction keys selected
	assert.Equal(t, uint8(0xE7), j.Read())
}

func TestPressRaisesInterruptOnFallingEdge(t *testing.T) {
	irq := interrupts.New()
	j := New(irq)
	j.Write(0x20) // direction keys selected

	j.Press(ButtonUp)
	assert.True(t, irq.Flag&(1<<interrupts.Joypad) != 0)
}

func TestPressWithOtherNibbleSelectedDoesNotInterrupt(t *testing.T) {
	irq := interrupts.New()
	j := New(irq)
	j.Write(0x10) // action keys selected, not directions

	j.Press(ButtonUp)
	assert.Equal(t, uint8(0), irq.Flag)
}
