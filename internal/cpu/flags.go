package cpu

// Flags is the packed F register. The low nibble always reads zero.
type Flags byte

const (
	FlagZ Flags = 1 << 7
	FlagN Flags = 1 << 6
	FlagH Flags = 1 << 5
	FlagC Flags = 1 << 4
)

func (f Flags) Z() bool { return f&FlagZ != 0 }
func (f Flags) N() bool { return f&FlagN != 0 }
func (f Flags) H() bool { return f&FlagH != 0 }
func (f Flags) C() bool { return f&FlagC != 0 }

// Set turns the given flag bits on or off.
func (f *Flags) Set(mask Flags, on bool) {
	if on {
		*f |= mask
	} else {
		*f &^= mask
	}
}

func makeFlags(z, n, h, c bool) Flags {
	var f Flags
	f.Set(FlagZ, z)
	f.Set(FlagN, n)
	f.Set(FlagH, h)
	f.Set(FlagC, c)
	return f
}

func (f Flags) String() string {
	out := []byte("----")
	for i, m := range []Flags{FlagZ, FlagN, FlagH, FlagC} {
		if f&m != 0 {
			out[i] = "ZNHC"[i]
		}
	}
	return string(out)
}
