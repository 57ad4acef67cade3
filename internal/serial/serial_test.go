package serial

import (
	"testing"

	"github.com/retrocore/gbcore/internal/interrupts"
	"github.com/retrocore/gbcore/internal/types"
	"github.com/retrocore/gbcore/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestTransferStartCompletesImmediately(t *testing.T) {
	irq := interrupts.New()
	p := New(irq, log.NewNullLogger())
	p.Write(types.SB, 0xAB)
	p.Write(types.SC, 0x81)

	assert.Equal(t, uint8(0), p.Read(types.SC)&0x80)
	irq.Enable = 0x1F
	assert.True(t, irq.Pending())
}
