package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/numerals"
)

func seq(n, start int) numerals.Sequence {
	s := make(numerals.Sequence, n)
	for i := range s {
		s[i] = (start + i) % 16
	}
	return s
}

func TestFindMarkerAfterPayload(t *testing.T) {
	marker := seq(20, 3)
	r := append(append(make(numerals.Sequence, 20), 9, 9, 9, 9), marker...)

	k, ok := FindMarker(r, marker)
	require.True(t, ok)
	require.Equal(t, 24, k)
}

func TestFindMarkerIgnoresLeadingWindow(t *testing.T) {
	marker := seq(20, 3)
	r := append(append(numerals.Sequence{}, marker...), make(numerals.Sequence, 25)...)

	// The copy at index 0 is only reachable through the wrap-around read.
	k, ok := FindMarker(r, marker)
	require.True(t, ok)
	require.Equal(t, len(r), k)
}

func TestFindMarkerWrapsAround(t *testing.T) {
	marker := seq(20, 1)
	r := make(numerals.Sequence, 30)
	copy(r[25:], marker[:5])
	copy(r[0:], marker[5:])

	k, ok := FindMarker(r, marker)
	require.True(t, ok)
	require.Equal(t, 25, k)
}

func TestFindMarkerMissing(t *testing.T) {
	marker := seq(20, 1)
	_, ok := FindMarker(nil, marker)
	require.False(t, ok)
	_, ok = FindMarker(seq(19, 1), marker)
	require.False(t, ok)
	_, ok = FindMarker(make(numerals.Sequence, 500), marker)
	require.False(t, ok)
}

func newTestDecoder(t *testing.T, key string) *KernDecoder {
	t.Helper()
	cfg, err := config.New()
	require.NoError(t, err)
	kd, err := NewKernDecoder(cfg, []byte(key))
	require.NoError(t, err)
	return kd
}

func TestDecodeVerifiesChecksum(t *testing.T) {
	kd := newTestDecoder(t, "key")
	plan := kd.codec.Plan([]byte("hello"), []byte("key"))

	msg, err := kd.decode(plan.Sequence())
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), msg.Message)
	require.Equal(t, 30, msg.MarkerAt)
	require.True(t, msg.Checksum.Equal(plan.Checksum))

	for i := range plan.Payload {
		r := plan.Sequence()
		r[20+i] = (r[20+i] + 1) % 16
		_, err := kd.decode(r)
		require.ErrorIs(t, err, ErrChecksumMismatch, "flipped numeral %d", i)
	}
}

func TestDecodeCorruptTail(t *testing.T) {
	cfg, err := config.New(config.WithBitDepth(3))
	require.NoError(t, err)
	kd, err := NewKernDecoder(cfg, []byte("key"))
	require.NoError(t, err)

	// 14 numerals of 3 bits for "hello"; 13 leave 39 bits, trim 7 > 3
	plan := kd.codec.Plan([]byte("hello"), []byte("key"))
	plan.Payload = plan.Payload[:len(plan.Payload)-1]

	_, err = kd.decode(plan.Sequence())
	require.ErrorIs(t, err, numerals.ErrCorruptTail)
}

func TestDecodeMissingNumeralFailsChecksum(t *testing.T) {
	kd := newTestDecoder(t, "key")
	plan := kd.codec.Plan([]byte("hello"), []byte("key"))
	plan.Payload = plan.Payload[:len(plan.Payload)-1]

	// 9 numerals of 4 bits unpack to "hell"
	_, err := kd.decode(plan.Sequence())
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecodeMarkerNotFound(t *testing.T) {
	kd := newTestDecoder(t, "other key")
	plan := kd.codec.Plan([]byte("hello"), []byte("key"))

	_, err := kd.decode(plan.Sequence())
	require.ErrorIs(t, err, ErrMarkerNotFound)
}

func TestExtractOne(t *testing.T) {
	kd := newTestDecoder(t, "key")

	n, ok := kd.extractOne(-7, 0.5)
	require.True(t, ok)
	require.Equal(t, 6, n)

	n, ok = kd.extractOne(16, 0.5)
	require.True(t, ok)
	require.Equal(t, 15, n)

	_, ok = kd.extractOne(5, 0.05)
	require.False(t, ok, "selector below redundancy")
	_, ok = kd.extractOne(17, 0.5)
	require.False(t, ok, "not eligible")
	_, ok = kd.extractOne(0, 0.5)
	require.False(t, ok)

	require.Equal(t, 3, kd.totalCandidates)
	require.Equal(t, 2, kd.validCandidates)
}
