package carrier

import (
	"context"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/spec"
)

// ScanConcurrent scans line-aligned chunks of text in parallel and returns
// the same candidates, in the same order, as Scan.
func ScanConcurrent(ctx context.Context, text string, workers int) ([]Candidate, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunks := splitLines(text, workers)
	results := make([][]Candidate, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ch := range chunks {
		i, ch := i, ch // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = scanFrom(text[ch.start:ch.end], ch.start, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]Candidate, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

type span struct{ start, end int }

// splitLines cuts text into at most n pieces, each ending after a newline
// (or at the end of the text).
func splitLines(text string, n int) []span {
	if len(text) == 0 {
		return nil
	}
	size := max(len(text)/n, 1)

	var spans []span
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else if nl := strings.IndexByte(text[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(text)
		}
		spans = append(spans, span{start, end})
		start = end
	}
	return spans
}

// ================================================================================
// CARRIER ANALYSIS
// How much a document can hold and how its kerning low bits look
// ================================================================================

// Analysis summarises the carriers of a normalized document.
type Analysis struct {
	Literals         int     // kerning numbers found in TJ arrays
	Eligible         int     // usable as carriers in this mode
	InSubRange       int     // eligible and accepted by the sub-range filter
	Negative         int     // eligible carriers with a negative value
	ResidueHistogram []int   // counts of each n-bit residue over usable carriers
	ResidueEntropy   float64 // Shannon entropy of the residues, in bits
	ExpectedCapacity int     // usable carriers expected to hold data at this redundancy
	MaxPayloadBytes  int     // largest payload the expected capacity fits
}

// Analyze counts the carriers of text under cfg.
func Analyze(ctx context.Context, text string, cfg config.Config) (*Analysis, error) {
	cands, err := ScanConcurrent(ctx, text, 0)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Literals:         len(cands),
		ResidueHistogram: make([]int, cfg.Modulus()),
	}
	for _, c := range cands {
		if !Eligible(cfg, c.Value) {
			continue
		}
		a.Eligible++
		if c.Value < 0 {
			a.Negative++
		}
		if !InSubRange(cfg, c.Value) {
			continue
		}
		a.InSubRange++
		a.ResidueHistogram[Split(c.Value).Residue(cfg.BitDepth)]++
	}

	a.ResidueEntropy = entropy(a.ResidueHistogram, a.InSubRange)
	a.ExpectedCapacity = int(float64(a.InSubRange) * (1 - cfg.Redundancy))
	if free := a.ExpectedCapacity - spec.FRAME_NUMERALS; free > 0 {
		a.MaxPayloadBytes = free * cfg.BitDepth / spec.BITS_PER_BYTE
	}
	return a, nil
}

func entropy(freq []int, total int) float64 {
	if total == 0 {
		return 0
	}
	e := 0.0
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}

// SignFlips returns the indices where before and after carry opposite signs.
// Both slices must come from scanning the same document before and after a
// rewrite.
func SignFlips(before, after []Candidate) []int {
	var flips []int
	for i, n := 0, min(len(before), len(after)); i < n; i++ {
		if before[i].Value*after[i].Value < 0 {
			flips = append(flips, i)
		}
	}
	return flips
}
