package labels

import (
	"os"
	"strings"
	"unicode"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Codec encodes transcripts with an Alphabet.
type Codec struct {
	alpha *Alphabet
}

// NewCodec returns a Codec for alpha.
func NewCodec(alpha *Alphabet) *Codec {
	return &Codec{alpha: alpha}
}

// Alphabet returns the codec's alphabet.
func (c *Codec) Alphabet() *Alphabet {
	return c.alpha
}

// EncodeText lowercases text and maps every character to its class id.
func (c *Codec) EncodeText(text string) ([]int32, error) {
	out := make([]int32, 0, len(text))
	pos := 0
	for _, r := range text {
		i, ok := c.alpha.Index(unicode.ToLower(r))
		if !ok {
			return nil, errs.Encoding("labels: character %q at position %d is not in the alphabet", r, pos)
		}
		out = append(out, i)
		pos++
	}
	return out, nil
}

// DecodeIndices maps class ids back to text. The blank decodes to nothing,
// which lets raw CTC output decode to its collapsed form once repeats are
// merged.
func (c *Codec) DecodeIndices(seq []int32) (string, error) {
	var b strings.Builder
	blank := c.alpha.Blank()
	for pos, i := range seq {
		if i == blank {
			continue
		}
		r, ok := c.alpha.Rune(i)
		if !ok {
			return "", errs.Encoding("labels: class id %d at position %d out of range [0, %d]", i, pos, blank)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// DecodeSparse decodes every row of s to text.
func (c *Codec) DecodeSparse(s *Sparse) ([]string, error) {
	rows, err := FromSparse(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		if out[i], err = c.DecodeIndices(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeFile reads the transcript at path and encodes it.
func (c *Codec) EncodeFile(path string) ([]int32, error) {
	text, err := ReadTranscript(path)
	if err != nil {
		return nil, err
	}
	return c.EncodeText(text)
}

// ReadTranscript returns the contents of a transcript file with
// surrounding whitespace removed.
func ReadTranscript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errs.IO(err, "read transcript %s", path)
	}
	return strings.TrimSpace(string(b)), nil
}

// CollapseCTC merges runs of repeated ids and then removes blanks, turning a
// best-path frame sequence into a label sequence.
func CollapseCTC(seq []int32, blank int32) []int32 {
	out := make([]int32, 0, len(seq))
	prev := int32(-1)
	for _, i := range seq {
		if i != prev && i != blank {
			out = append(out, i)
		}
		prev = i
	}
	return out
}

// ErrorRate returns the Levenshtein distance between ref and hyp divided by
// len(ref). An empty reference yields 0 for an empty hypothesis and 1
// otherwise.
func ErrorRate(ref, hyp []int32) float64 {
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	prev := make([]int, len(hyp)+1)
	cur := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		cur[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return float64(prev[len(hyp)]) / float64(len(ref))
}
