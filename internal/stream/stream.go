package stream

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/faanross/simulacra_pdf/internal/numerals"
	"github.com/faanross/simulacra_pdf/internal/spec"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

var ErrDegenerateSeed = errors.New("stream seed is a fixed point of the map")

// Generator yields reals in [0,1). Draws are never reseeded mid-run.
type Generator interface {
	Next() float64
}

// NonZero draws from g until the value is not exactly zero.
func NonZero(g Generator) float64 {
	for {
		if x := g.Next(); x != 0 {
			return x
		}
	}
}

// Strategy picks the generator family for a run.
type Strategy int

const (
	StrategyLogistic  Strategy = iota // original algorithm
	StrategyKeystream                 // enhanced mode
)

func (s Strategy) String() string {
	switch s {
	case StrategyLogistic:
		return "logistic"
	case StrategyKeystream:
		return "keystream"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// StrategyFor maps the enhanced-mode flag to a strategy.
func StrategyFor(enhanced bool) Strategy {
	if enhanced {
		return StrategyKeystream
	}
	return StrategyLogistic
}

// ================================================================================
// LOGISTIC RECURRENCE
// x <- mu*x*(1-x), chaotic for mu in ]3.57,4[
// ================================================================================

// Logistic is the chaotic map used by the original algorithm.
type Logistic struct {
	mu float64
	x  float64
}

// NewLogistic seeds the map with the numerals read as the decimal fraction
// 0.<n0><n1>...
func NewLogistic(mu float64, seed numerals.Sequence) (*Logistic, error) {
	var sb strings.Builder
	sb.WriteString("0.")
	for _, n := range seed {
		sb.WriteString(strconv.Itoa(n))
	}
	if len(seed) == 0 {
		sb.WriteString("0")
	}

	x, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return nil, fmt.Errorf("logistic seed: %w", err)
	}
	if x == 0 {
		return nil, ErrDegenerateSeed
	}
	return &Logistic{mu: mu, x: x}, nil
}

func (l *Logistic) Next() float64 {
	l.x = l.mu * l.x * (1 - l.x)
	return l.x
}

// ================================================================================
// KEYSTREAM
// ChaCha20 keystream keyed through HKDF-SHA256, 53 bits per draw
// ================================================================================

// Keystream is the cryptographically seeded generator of enhanced mode.
type Keystream struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

// NewKeystream derives a ChaCha20 key from secret and a domain label.
func NewKeystream(secret []byte, info string) (*Keystream, error) {
	key := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("keystream key derivation failed: %w", err)
	}

	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("keystream cipher creation failed: %w", err)
	}
	return &Keystream{cipher: c}, nil
}

func (k *Keystream) Next() float64 {
	clear(k.buf[:])
	k.cipher.XORKeyStream(k.buf[:], k.buf[:])
	return float64(binary.BigEndian.Uint64(k.buf[:])>>11) / (1 << 53)
}

// ================================================================================
// STREAM PAIRS
// ================================================================================

// Pair holds the selector (carry or noise) and filler (noise value) streams.
type Pair struct {
	Selector Generator
	Filler   Generator
}

// NewSelector builds the selector stream alone; extraction needs nothing else.
func NewSelector(s Strategy, codec *numerals.Codec, key []byte) (Generator, error) {
	switch s {
	case StrategyLogistic:
		return NewLogistic(spec.MU_SELECTOR, codec.DigestNumerals(key))
	case StrategyKeystream:
		return NewKeystream(key, spec.HKDF_SELECTOR_INFO)
	}
	return nil, fmt.Errorf("unknown stream strategy %v", s)
}

// NewPair builds both streams for embedding.
func NewPair(s Strategy, codec *numerals.Codec, key, payload []byte) (*Pair, error) {
	selector, err := NewSelector(s, codec, key)
	if err != nil {
		return nil, err
	}

	var filler Generator
	switch s {
	case StrategyLogistic:
		filler, err = NewLogistic(spec.MU_FILLER, codec.DigestNumerals(key))
	case StrategyKeystream:
		sum := sha1.Sum(payload)
		filler, err = NewKeystream([]byte(hex.EncodeToString(sum[:])), spec.HKDF_FILLER_INFO)
	}
	if err != nil {
		return nil, err
	}
	return &Pair{Selector: selector, Filler: filler}, nil
}
