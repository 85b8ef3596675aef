package carrier

import "github.com/faanross/simulacra_pdf/internal/config"

// Kern is a kerning value split into sign and magnitude. All bit surgery
// happens on the magnitude so the sign of the adjustment never flips.
type Kern struct {
	Negative  bool
	Magnitude int
}

// Split separates v into sign and magnitude.
func Split(v int) Kern {
	if v < 0 {
		return Kern{Negative: true, Magnitude: -v}
	}
	return Kern{Magnitude: v}
}

// Int recombines sign and magnitude.
func (k Kern) Int() int {
	if k.Negative {
		return -k.Magnitude
	}
	return k.Magnitude
}

// Residue is the numeral carried by the magnitude: the low n bits of
// magnitude-1. Carriers store numeral+1 so that a zero never appears.
func (k Kern) Residue(bits int) int {
	return (k.Magnitude - 1) & (1<<bits - 1)
}

// base returns the high bits of magnitude-1 above the low n bits.
func (k Kern) base(bits int) int {
	return (k.Magnitude - 1) &^ (1<<bits - 1)
}

// WithLow keeps the high bits of magnitude-1 and sets the low part so that
// the magnitude becomes base+low, low in [1, 2^n]. A magnitude that is a
// multiple of 2^n belongs to the block below it (16 with n=4 becomes 1..16,
// not 17..32), so every value stays inside its own Block.
func (k Kern) WithLow(bits, low int) Kern {
	return Kern{Negative: k.Negative, Magnitude: k.base(bits) + low}
}

// WithMagnitude replaces the magnitude outright, keeping the sign.
func (k Kern) WithMagnitude(m int) Kern {
	return Kern{Negative: k.Negative, Magnitude: m}
}

// Block returns the signed bounds of every value WithLow can produce from k.
func (k Kern) Block(bits int) (lo, hi int) {
	first := Kern{Negative: k.Negative, Magnitude: k.base(bits) + 1}.Int()
	last := Kern{Negative: k.Negative, Magnitude: k.base(bits) + 1<<bits}.Int()
	if first > last {
		return last, first
	}
	return first, last
}

// Eligible reports whether v may carry a numeral at all.
func Eligible(cfg config.Config, v int) bool {
	if v == 0 {
		return false
	}
	if cfg.Enhanced {
		return true
	}
	return Split(v).Magnitude <= cfg.Modulus()
}

// InSubRange reports whether v passes the optional sub-range filter. The
// whole block of v is tested so rewriting the low bits cannot move a value
// across the filter boundary.
func InSubRange(cfg config.Config, v int) bool {
	if !cfg.SubRange {
		return true
	}
	lo, hi := Split(v).Block(cfg.BitDepth)
	return cfg.Range.Covers(lo, hi)
}

// Set writes low (in [1, 2^n]) into v the way the configured mode does:
// enhanced mode keeps the high bits, the original mode replaces the
// magnitude.
func Set(cfg config.Config, v, low int) int {
	k := Split(v)
	if cfg.Enhanced {
		return k.WithLow(cfg.BitDepth, low).Int()
	}
	return k.WithMagnitude(low).Int()
}
