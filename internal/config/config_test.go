package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 4, cfg.BitDepth)
	require.Equal(t, 0.1, cfg.Redundancy)
	require.False(t, cfg.Enhanced)
	require.Equal(t, 16, cfg.Modulus())
}

func TestValidateRejectsMisuse(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
		want error
	}{
		{"zero bits", []Option{WithBitDepth(0)}, ErrBitDepth},
		{"nine bits", []Option{WithBitDepth(9)}, ErrBitDepth},
		{"zero redundancy", []Option{WithRedundancy(0)}, ErrRedundancy},
		{"full redundancy", []Option{WithRedundancy(1)}, ErrRedundancy},
		{"nan redundancy", []Option{WithRedundancy(math.NaN())}, ErrRedundancy},
		{"sub-range without enhanced", []Option{WithSubRange(true)}, ErrSubRangeMode},
		{"inverted range", []Option{WithEnhanced(true), WithSubRange(true), WithRange(Range{Min: 5, Max: -5})}, ErrRange},
		{"start offset", []Option{func(c *Config) { c.StartOffset = 3 }}, ErrReservedHook},
		{"jitter", []Option{func(c *Config) { c.Jitter = 1 }}, ErrReservedHook},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.opts...)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRangeCovers(t *testing.T) {
	r := DefaultRange()
	require.True(t, r.Covers(-272, -257))
	require.True(t, r.Covers(-432, -417))
	require.False(t, r.Covers(-448, -433), "below min")
	require.False(t, r.Covers(-256, -241), "above max")
	require.False(t, r.Covers(-336, -321), "gap")
	require.False(t, r.Covers(-340, -330), "straddles gap")
	require.True(t, r.Covers(-320, -305))
}
