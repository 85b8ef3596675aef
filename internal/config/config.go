package config

import (
	"errors"
	"fmt"

	"github.com/faanross/simulacra_pdf/internal/spec"
)

var (
	ErrBitDepth     = errors.New("bit depth out of range")
	ErrRedundancy   = errors.New("redundancy must be strictly between 0 and 1")
	ErrSubRangeMode = errors.New("sub-range filter requires enhanced mode")
	ErrReservedHook = errors.New("reserved option must be zero")
	ErrRange        = errors.New("invalid sub-range bounds")
)

// Range is the signed window of kerning values accepted by the sub-range
// filter, minus an excluded gap. All bounds are inclusive.
type Range struct {
	Min    int
	Max    int
	GapMin int
	GapMax int
}

// DefaultRange matches the kerning values pdfTeX emits for body text.
func DefaultRange() Range {
	return Range{
		Min:    spec.SUBRANGE_MIN,
		Max:    spec.SUBRANGE_MAX,
		GapMin: spec.SUBRANGE_GAP_MIN,
		GapMax: spec.SUBRANGE_GAP_MAX,
	}
}

// Covers reports whether every value in [lo, hi] is accepted.
func (r Range) Covers(lo, hi int) bool {
	if lo < r.Min || hi > r.Max {
		return false
	}
	if r.GapMin <= r.GapMax && lo <= r.GapMax && hi >= r.GapMin {
		return false
	}
	return true
}

// Config holds the per-run options shared by the embedder and the extractor.
// Both sides must use the same BitDepth, Enhanced and SubRange settings.
type Config struct {
	BitDepth          int
	Redundancy        float64
	Enhanced          bool
	SubRange          bool
	KeepOriginalNoise bool
	Range             Range

	// Reserved hooks, always 0.
	StartOffset int
	Jitter      int
}

// Option tweaks a Config before validation.
type Option func(*Config)

func WithBitDepth(n int) Option { return func(c *Config) { c.BitDepth = n } }

func WithRedundancy(r float64) Option { return func(c *Config) { c.Redundancy = r } }

func WithEnhanced(on bool) Option { return func(c *Config) { c.Enhanced = on } }

func WithSubRange(on bool) Option { return func(c *Config) { c.SubRange = on } }

func WithRange(r Range) Option { return func(c *Config) { c.Range = r } }

func WithKeepOriginalNoise(on bool) Option {
	return func(c *Config) { c.KeepOriginalNoise = on }
}

// Default returns the configuration of the original algorithm.
func Default() Config {
	return Config{
		BitDepth:   spec.DEFAULT_BIT_DEPTH,
		Redundancy: spec.DEFAULT_REDUNDANCY,
		Range:      DefaultRange(),
	}
}

// New builds a validated Config from the defaults and the given options.
func New(opts ...Option) (Config, error) {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects misuse before any document is touched.
func (c Config) Validate() error {
	if c.BitDepth < spec.MIN_BIT_DEPTH || c.BitDepth > spec.MAX_BIT_DEPTH {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrBitDepth, c.BitDepth, spec.MIN_BIT_DEPTH, spec.MAX_BIT_DEPTH)
	}
	// NaN fails both comparisons
	if !(c.Redundancy > 0 && c.Redundancy < 1) {
		return fmt.Errorf("%w: %v", ErrRedundancy, c.Redundancy)
	}
	if c.SubRange && !c.Enhanced {
		return ErrSubRangeMode
	}
	if c.SubRange && c.Range.Min > c.Range.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrRange, c.Range.Min, c.Range.Max)
	}
	if c.StartOffset != 0 {
		return fmt.Errorf("%w: start offset %d", ErrReservedHook, c.StartOffset)
	}
	if c.Jitter != 0 {
		return fmt.Errorf("%w: jitter %d", ErrReservedHook, c.Jitter)
	}
	return nil
}

// Modulus returns 2^n.
func (c Config) Modulus() int {
	return 1 << c.BitDepth
}
