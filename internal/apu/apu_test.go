package apu

import (
	"testing"

	"github.com/retrocore/gbcore/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestRegisterWritesAreIgnoredWhilePoweredOff(t *testing.T) {
	a := New()
	a.Write(0xFF12, 0xF0) // NR12, while APU is off
	assert.Equal(t, uint8(0), a.Read(0xFF12))
}

func TestRegisterWritesPersistWhilePoweredOn(t *testing.T) {
	a := New()
	a.Write(types.NR52, 0x80) // power on
	a.Write(0xFF12, 0xF0)
	assert.Equal(t, uint8(0xF0), a.Read(0xFF12))
}

func TestWaveRAMAlwaysWritable(t *testing.T) {
	a := New()
	a.Write(0xFF30, 0xAB)
	assert.Equal(t, uint8(0xAB), a.Read(0xFF30))
}

func TestNR52ReflectsMasterSwitch(t *testing.T) {
	a := New()
	assert.Equal(t, uint8(0x70), a.Read(types.NR52))
	a.Write(types.NR52, 0x80)
	assert.Equal(t, uint8(0xF0), a.Read(types.NR52))
}
