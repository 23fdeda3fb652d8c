package timer

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/stretchr/testify/assert"
)

func newTimer() (*Timer, *bus.Bus) {
	b := bus.New(cart.NewROMOnly(make([]byte, 0x8000)))
	return New(b), b
}

func TestTimer_DividerThreshold(t *testing.T) {
	tm, b := newTimer()

	tm.Advance(DivPeriod - 4)
	assert.Equal(t, byte(0), b.Regs.DIV)

	tm.Advance(4)
	assert.Equal(t, byte(1), b.Regs.DIV)
	assert.Equal(t, 0, tm.Cycles())

	tm.Advance(3*DivPeriod + 20)
	assert.Equal(t, byte(4), b.Regs.DIV)
	assert.Equal(t, 20, tm.Cycles())
}

func TestTimer_DividerWraps(t *testing.T) {
	tm, b := newTimer()
	b.Regs.DIV = 0xFF
	tm.Advance(DivPeriod)
	assert.Equal(t, byte(0x00), b.Regs.DIV)
}

func TestTimer_LeavesCounterLatchesAlone(t *testing.T) {
	tm, b := newTimer()
	b.Write(0xFF07, 0x05)
	b.Write(0xFF05, 0xFE)
	tm.Advance(100 * DivPeriod)
	assert.Equal(t, byte(0xFE), b.Read(0xFF05))
	assert.Zero(t, b.Regs.IF&(1<<bus.IntTimer))
}
