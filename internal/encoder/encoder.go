package encoder

import (
	"errors"
	"fmt"

	"github.com/faanross/simulacra_pdf/internal/carrier"
	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/numerals"
	"github.com/faanross/simulacra_pdf/internal/stream"
)

var ErrInsufficientCapacity = errors.New("not enough carriers in document")

// CapacityError reports how many carriers held data against how many the
// embedding plan needed.
type CapacityError struct {
	Available int
	Required  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough space available (only %d available, %d needed)", e.Available, e.Required)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// KernEncoder hides a message in the TJ kerning values of normalized PDF text
type KernEncoder struct {
	cfg      config.Config
	codec    *numerals.Codec
	strategy stream.Strategy
	message  []byte
	key      []byte
	plan     numerals.Plan
	ind      numerals.Sequence

	// per-run state
	streams         *stream.Pair
	cursor          int
	totalCandidates int
	validCandidates int
}

// EmbedResult is the rewritten text plus run diagnostics
type EmbedResult struct {
	Text            string
	Plan            numerals.Plan
	Literals        int   // kerning numbers seen
	TotalCandidates int   // eligible carriers seen
	ValidCandidates int   // carriers holding plan numerals
	SignFlips       []int // carriers whose sign changed, always empty unless broken
}

// NewKernEncoder validates cfg and prepares the numeral plan for message.
func NewKernEncoder(cfg config.Config, message, key []byte) (*KernEncoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := numerals.NewCodec(cfg.BitDepth)
	if err != nil {
		return nil, err
	}

	ke := &KernEncoder{
		cfg:      cfg,
		codec:    codec,
		strategy: stream.StrategyFor(cfg.Enhanced),
		message:  message,
		key:      key,
		plan:     codec.Plan(message, key),
	}
	ke.ind = ke.plan.Sequence()

	// Fail on a degenerate seed before any document is read.
	if err := ke.reset(); err != nil {
		return nil, err
	}
	return ke, nil
}

// Plan returns the numerals the encoder will write.
func (ke *KernEncoder) Plan() numerals.Plan { return ke.plan }

func (ke *KernEncoder) reset() error {
	pair, err := stream.NewPair(ke.strategy, ke.codec, ke.key, ke.message)
	if err != nil {
		return fmt.Errorf("stream setup failed: %w", err)
	}
	ke.streams = pair
	ke.cursor = 0
	ke.totalCandidates = 0
	ke.validCandidates = 0
	return nil
}

// Embed rewrites the kerning values of text to carry the plan. Nothing is
// returned unless the whole plan fits.
func (ke *KernEncoder) Embed(text string) (*EmbedResult, error) {
	if err := ke.reset(); err != nil {
		return nil, err
	}

	cands := carrier.Scan(text)
	values := make([]int, len(cands))
	for i, c := range cands {
		selector := stream.NonZero(ke.streams.Selector)
		filler := stream.NonZero(ke.streams.Filler)

		num, ok := 0, false
		if ke.cursor < len(ke.ind) {
			num, ok = ke.ind[ke.cursor], true
		}

		v, carried := ke.embedOne(c.Value, selector, filler, num, ok)
		if carried {
			ke.cursor++
		}
		values[i] = v
	}

	if ke.cursor < len(ke.ind) {
		return nil, &CapacityError{Available: ke.validCandidates, Required: len(ke.ind)}
	}

	out := carrier.Rewrite(text, cands, values)
	return &EmbedResult{
		Text:            out,
		Plan:            ke.plan,
		Literals:        len(cands),
		TotalCandidates: ke.totalCandidates,
		ValidCandidates: ke.validCandidates,
		SignFlips:       carrier.SignFlips(cands, carrier.Scan(out)),
	}, nil
}

// embedOne decides whether v carries num (ok) or noise, and returns the new
// value. carried is true when num was written.
func (ke *KernEncoder) embedOne(v int, selector, filler float64, num int, ok bool) (int, bool) {
	if !carrier.Eligible(ke.cfg, v) {
		return v, false
	}
	ke.totalCandidates++

	if selector < ke.cfg.Redundancy || !ok || !carrier.InSubRange(ke.cfg, v) {
		if ke.cfg.KeepOriginalNoise {
			return v, false
		}
		return carrier.Set(ke.cfg, v, NoiseLow(ke.cfg.BitDepth, filler)), false
	}

	ke.validCandidates++
	return carrier.Set(ke.cfg, v, num+1), true
}

// NoiseLow maps a filler draw in (0,1) to a plausible low part in [1, 2^n-1].
func NoiseLow(bits int, filler float64) int {
	top := 1<<bits - 1
	return int(float64(top)*filler) + 1
}

// Embed is the one-shot form of NewKernEncoder followed by Embed.
func Embed(text string, payload, key []byte, cfg config.Config) (string, error) {
	ke, err := NewKernEncoder(cfg, payload, key)
	if err != nil {
		return "", err
	}
	res, err := ke.Embed(text)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
