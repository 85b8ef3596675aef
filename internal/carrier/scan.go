package carrier

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A text-positioning array followed by the TJ operator, one optional space.
	blockPattern = regexp.MustCompile(`\[(.*?)\] ?TJ`)
	// A kerning number sits between the end of one string and the start of
	// the next: ")-250(" or ">12<".
	kernPattern = regexp.MustCompile(`[>)](-?[0-9]+)[<(]`)
)

// Candidate is one kerning number of a TJ array.
// Start and End are byte offsets of the numeral in the scanned text.
type Candidate struct {
	Start int
	End   int
	Value int
}

// Scan returns every kerning number of every TJ block in document order.
// Blocks never span lines.
func Scan(text string) []Candidate {
	return scanFrom(text, 0, nil)
}

func scanFrom(text string, base int, out []Candidate) []Candidate {
	offset := 0
	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += offset
		}
		out = scanLine(text[offset:end], base+offset, out)
		offset = end + 1
	}
	return out
}

func scanLine(line string, base int, out []Candidate) []Candidate {
	for _, block := range blockPattern.FindAllStringSubmatchIndex(line, -1) {
		inner := line[block[2]:block[3]]
		for _, m := range kernPattern.FindAllStringSubmatchIndex(inner, -1) {
			v, err := strconv.Atoi(inner[m[2]:m[3]])
			if err != nil {
				// Out of int range, never a usable carrier.
				continue
			}
			out = append(out, Candidate{
				Start: base + block[2] + m[2],
				End:   base + block[2] + m[3],
				Value: v,
			})
		}
	}
	return out
}

// Rewrite replaces the numeral of each candidate with the matching value.
// cands must come from Scan on the same text.
func Rewrite(text string, cands []Candidate, values []int) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(cands))

	prev := 0
	for i, c := range cands {
		sb.WriteString(text[prev:c.Start])
		sb.WriteString(strconv.Itoa(values[i]))
		prev = c.End
	}
	sb.WriteString(text[prev:])
	return sb.String()
}
