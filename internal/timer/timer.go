// Package timer implements the free-running divider.
package timer

import "github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"

// DivPeriod is the number of cycles between DIV increments.
const DivPeriod = 256

// Timer advances DIV on the bus. TIMA, TMA and TAC stay plain latches.
type Timer struct {
	bus    *bus.Bus
	cycles int
}

func New(b *bus.Bus) *Timer {
	return &Timer{bus: b}
}

func (t *Timer) Advance(cycles int) {
	t.cycles += cycles
	for t.cycles >= DivPeriod {
		t.cycles -= DivPeriod
		t.bus.Regs.DIV++
	}
}

func (t *Timer) Reset() { t.cycles = 0 }

// Cycles returns the accumulator, for snapshots.
func (t *Timer) Cycles() int { return t.cycles }

func (t *Timer) SetCycles(n int) { t.cycles = n % DivPeriod }
