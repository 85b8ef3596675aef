package decoder

import (
	"errors"
	"fmt"

	"github.com/faanross/simulacra_pdf/internal/carrier"
	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/numerals"
	"github.com/faanross/simulacra_pdf/internal/spec"
	"github.com/faanross/simulacra_pdf/internal/stream"
)

var (
	ErrMarkerNotFound   = errors.New("end marker not found")
	ErrChecksumMismatch = errors.New("checksum does not match embedded data")
)

// KernDecoder recovers a message from the TJ kerning values of normalized
// PDF text
type KernDecoder struct {
	cfg      config.Config
	codec    *numerals.Codec
	strategy stream.Strategy
	key      []byte
	marker   numerals.Sequence

	// per-run state
	selector        stream.Generator
	recovered       numerals.Sequence
	totalCandidates int
	validCandidates int
}

// ExtractedMessage contains the payload and run diagnostics
type ExtractedMessage struct {
	Message         []byte
	Checksum        numerals.Sequence
	Embedded        numerals.Sequence // payload numerals between checksum and marker
	MarkerAt        int               // index of the end marker in the recovered stream
	Literals        int
	TotalCandidates int
	ValidCandidates int
}

// NewKernDecoder validates cfg and derives the end marker from key.
func NewKernDecoder(cfg config.Config, key []byte) (*KernDecoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := numerals.NewCodec(cfg.BitDepth)
	if err != nil {
		return nil, err
	}

	kd := &KernDecoder{
		cfg:      cfg,
		codec:    codec,
		strategy: stream.StrategyFor(cfg.Enhanced),
		key:      key,
		marker:   codec.DigestNumerals(key),
	}
	if err := kd.reset(); err != nil {
		return nil, err
	}
	return kd, nil
}

func (kd *KernDecoder) reset() error {
	sel, err := stream.NewSelector(kd.strategy, kd.codec, kd.key)
	if err != nil {
		return fmt.Errorf("stream setup failed: %w", err)
	}
	kd.selector = sel
	kd.recovered = nil
	kd.totalCandidates = 0
	kd.validCandidates = 0
	return nil
}

// ExtractNumerals walks text in document order and returns every numeral
// held by a data carrier.
func (kd *KernDecoder) ExtractNumerals(text string) (numerals.Sequence, int, error) {
	if err := kd.reset(); err != nil {
		return nil, 0, err
	}
	cands := carrier.Scan(text)
	for _, c := range cands {
		if n, ok := kd.extractOne(c.Value, stream.NonZero(kd.selector)); ok {
			kd.recovered = append(kd.recovered, n)
		}
	}
	return kd.recovered, len(cands), nil
}

// extractOne returns the numeral held by v, if v is a data carrier.
func (kd *KernDecoder) extractOne(v int, selector float64) (int, bool) {
	if !carrier.Eligible(kd.cfg, v) {
		return 0, false
	}
	kd.totalCandidates++
	if selector < kd.cfg.Redundancy || !carrier.InSubRange(kd.cfg, v) {
		return 0, false
	}
	kd.validCandidates++
	return carrier.Split(v).Residue(kd.cfg.BitDepth), true
}

// Extract recovers and verifies the hidden message.
func (kd *KernDecoder) Extract(text string) (*ExtractedMessage, error) {
	recovered, literals, err := kd.ExtractNumerals(text)
	if err != nil {
		return nil, err
	}

	msg, err := kd.decode(recovered)
	if err != nil {
		return nil, err
	}
	msg.Literals = literals
	msg.TotalCandidates = kd.totalCandidates
	msg.ValidCandidates = kd.validCandidates
	return msg, nil
}

// decode finds the end marker in the recovered numerals, unpacks the payload
// and checks it against the lead checksum.
func (kd *KernDecoder) decode(r numerals.Sequence) (*ExtractedMessage, error) {
	k, ok := FindMarker(r, kd.marker)
	if !ok {
		return nil, ErrMarkerNotFound
	}

	doubled := append(append(make(numerals.Sequence, 0, 2*len(r)), r...), r...)
	checksum := doubled[:spec.DIGEST_NUMERALS]
	embedded := doubled[spec.DIGEST_NUMERALS:k]

	payload, err := kd.codec.Unpack(embedded)
	if err != nil {
		return nil, fmt.Errorf("payload decoding failed: %w", err)
	}
	if !kd.codec.DigestNumerals(payload).Equal(checksum) {
		return nil, ErrChecksumMismatch
	}

	return &ExtractedMessage{
		Message:  payload,
		Checksum: checksum,
		Embedded: embedded,
		MarkerAt: k,
	}, nil
}

// FindMarker returns the first k >= 20 with r[k:k+20] == marker, reading r
// as if it were followed by a second copy of itself. At most len(r)
// positions are tried.
func FindMarker(r, marker numerals.Sequence) (int, bool) {
	n := len(r)
	at := func(i int) int { return r[i%n] }

	for c := 0; c < n; c++ {
		k := spec.DIGEST_NUMERALS + c
		if k+len(marker) > 2*n {
			break
		}
		match := true
		for j, m := range marker {
			if at(k+j) != m {
				match = false
				break
			}
		}
		if match {
			return k, true
		}
	}
	return 0, false
}

// Extract is the one-shot form of NewKernDecoder followed by Extract.
func Extract(text string, key []byte, cfg config.Config) ([]byte, error) {
	kd, err := NewKernDecoder(cfg, key)
	if err != nil {
		return nil, err
	}
	msg, err := kd.Extract(text)
	if err != nil {
		return nil, err
	}
	return msg.Message, nil
}
