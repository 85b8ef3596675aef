package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faanross/simulacra_pdf/internal/numerals"
)

type scripted struct {
	vals []float64
	pos  int
}

func (s *scripted) Next() float64 {
	v := s.vals[s.pos]
	s.pos++
	return v
}

func TestNonZeroSkipsZeros(t *testing.T) {
	g := &scripted{vals: []float64{0, 0, 0.25, 0.5}}
	require.Equal(t, 0.25, NonZero(g))
	require.Equal(t, 0.5, NonZero(g))
}

func TestLogisticSeedAndRecurrence(t *testing.T) {
	l, err := NewLogistic(3.8, numerals.Sequence{1, 12, 5})
	require.NoError(t, err)
	require.Equal(t, 0.1125, l.x)

	x := 0.1125
	for i := 0; i < 50; i++ {
		x = 3.8 * x * (1 - x)
		require.Equal(t, x, l.Next())
	}
}

func TestLogisticRejectsZeroSeed(t *testing.T) {
	_, err := NewLogistic(3.7, make(numerals.Sequence, 20))
	require.ErrorIs(t, err, ErrDegenerateSeed)

	_, err = NewLogistic(3.7, nil)
	require.ErrorIs(t, err, ErrDegenerateSeed)
}

func TestKeystreamDeterministic(t *testing.T) {
	a, err := NewKeystream([]byte("secret"), "label")
	require.NoError(t, err)
	b, err := NewKeystream([]byte("secret"), "label")
	require.NoError(t, err)
	c, err := NewKeystream([]byte("secret"), "other label")
	require.NoError(t, err)

	same := true
	for i := 0; i < 100; i++ {
		x := a.Next()
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 1.0)
		require.Equal(t, x, b.Next())
		if x != c.Next() {
			same = false
		}
	}
	require.False(t, same, "distinct labels must give distinct streams")
}

func TestKeystreamNoiseFractionConverges(t *testing.T) {
	k, err := NewKeystream([]byte("redundancy"), "selector")
	require.NoError(t, err)

	const draws = 200000
	const r = 0.1
	below := 0
	for i := 0; i < draws; i++ {
		if NonZero(k) < r {
			below++
		}
	}
	frac := float64(below) / draws
	require.InDelta(t, r, frac, 0.005)
}

func TestLogisticSelectorNeverBelowFloor(t *testing.T) {
	// Once inside [mu*(mu/4)*(1-mu/4), mu/4] the map never leaves it.
	codec, _ := numerals.NewCodec(4)
	g, err := NewSelector(StrategyLogistic, codec, []byte("key"))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		g.Next()
	}
	floor := 3.8 * 0.95 * 0.05
	for i := 0; i < 10000; i++ {
		require.GreaterOrEqual(t, g.Next(), floor-1e-12)
	}
}

func TestNewPairStreamsInLockStep(t *testing.T) {
	codec, _ := numerals.NewCodec(4)
	for _, s := range []Strategy{StrategyLogistic, StrategyKeystream} {
		pair, err := NewPair(s, codec, []byte("key"), []byte("payload"))
		require.NoError(t, err, s.String())
		sel, err := NewSelector(s, codec, []byte("key"))
		require.NoError(t, err, s.String())

		for i := 0; i < 100; i++ {
			pair.Filler.Next()
			require.Equal(t, sel.Next(), pair.Selector.Next(), s.String())
		}
	}
}

func TestStrategyFor(t *testing.T) {
	require.Equal(t, StrategyLogistic, StrategyFor(false))
	require.Equal(t, StrategyKeystream, StrategyFor(true))
	require.Equal(t, "Strategy(9)", Strategy(9).String())
}
