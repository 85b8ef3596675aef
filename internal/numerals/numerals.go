package numerals

import (
	"crypto/sha1"
	"errors"
	"fmt"

	"github.com/faanross/simulacra_pdf/internal/spec"
)

var (
	ErrCorruptTail = errors.New("numeral count does not match a whole number of bytes")
	ErrBitDepth    = errors.New("bit depth out of range")
)

// Numeral is an integer in [0, 2^n) holding n bits of data.
type Numeral = int

// Sequence is an ordered list of numerals.
type Sequence []Numeral

// Equal reports whether two sequences hold the same numerals.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Codec converts bytes to n-bit numerals and back.
type Codec struct {
	bits int
}

// NewCodec creates a codec for the given bit depth.
func NewCodec(bits int) (*Codec, error) {
	if bits < spec.MIN_BIT_DEPTH || bits > spec.MAX_BIT_DEPTH {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}
	return &Codec{bits: bits}, nil
}

// Bits returns the numeral width.
func (c *Codec) Bits() int { return c.bits }

// DigestNumerals maps the 20 SHA-1 digest bytes of data to numerals mod 2^n.
func (c *Codec) DigestNumerals(data []byte) Sequence {
	sum := sha1.Sum(data)
	mask := (1 << c.bits) - 1

	nums := make(Sequence, spec.DIGEST_NUMERALS)
	for i, b := range sum {
		nums[i] = int(b) & mask
	}
	return nums
}

// PayloadNumerals packs data MSB first into ceil(8*len/n) numerals. The
// last numeral holds the remaining bits right-aligned.
func (c *Codec) PayloadNumerals(data []byte) Sequence {
	totalBits := len(data) * spec.BITS_PER_BYTE
	count := (totalBits + c.bits - 1) / c.bits
	nums := make(Sequence, 0, count)

	for start := 0; start < totalBits; start += c.bits {
		end := min(start+c.bits, totalBits)
		v := 0
		for pos := start; pos < end; pos++ {
			v = v<<1 | bitAt(data, pos)
		}
		nums = append(nums, v)
	}
	return nums
}

// Unpack reverses PayloadNumerals. The last numeral is trimmed from the left
// so the bit string is a whole number of bytes. A trim of exactly n drops the
// last numeral; more than n cannot come from PayloadNumerals.
func (c *Codec) Unpack(nums Sequence) ([]byte, error) {
	if len(nums) == 0 {
		return []byte{}, nil
	}

	totalBits := len(nums) * c.bits
	trim := totalBits % spec.BITS_PER_BYTE
	if trim > c.bits {
		return nil, fmt.Errorf("%w: %d numerals of %d bits leave %d stray bits",
			ErrCorruptTail, len(nums), c.bits, trim)
	}

	out := make([]byte, (totalBits-trim)/spec.BITS_PER_BYTE)
	pos := 0
	last := len(nums) - 1
	for i, n := range nums {
		width := c.bits
		if i == last {
			width -= trim
		}
		for j := width - 1; j >= 0; j-- {
			if n>>j&1 == 1 {
				out[pos/8] |= 1 << (7 - pos%8)
			}
			pos++
		}
	}
	return out, nil
}

// bitAt returns bit pos of data, counting from the MSB of data[0].
func bitAt(data []byte, pos int) int {
	return int(data[pos/8]>>(7-pos%8)) & 1
}

// Plan is the full numeral layout written into a document.
type Plan struct {
	Checksum Sequence
	Payload  Sequence
	Marker   Sequence
}

// Plan builds checksum ++ payload ++ end marker for a message and key.
func (c *Codec) Plan(payload, key []byte) Plan {
	return Plan{
		Checksum: c.DigestNumerals(payload),
		Payload:  c.PayloadNumerals(payload),
		Marker:   c.DigestNumerals(key),
	}
}

// Sequence flattens the plan in embedding order.
func (p Plan) Sequence() Sequence {
	seq := make(Sequence, 0, p.Len())
	seq = append(seq, p.Checksum...)
	seq = append(seq, p.Payload...)
	return append(seq, p.Marker...)
}

// Len is the number of carriers the plan consumes.
func (p Plan) Len() int {
	return len(p.Checksum) + len(p.Payload) + len(p.Marker)
}
