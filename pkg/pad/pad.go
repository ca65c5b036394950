// Package pad packs variable-length feature sequences into one dense,
// uniformly shaped batch.
//
// A sequence is a [T][W] matrix. Pad truncates sequences longer than the
// target length and fills shorter ones with a constant value, either at the
// front (Pre) or at the back (Post), and records each sequence's retained
// length.
package pad

import (
	"github.com/haivivi/speechbatch/pkg/errs"
)

// Mode selects which end of a sequence is padded or truncated.
type Mode string

// Modes.
const (
	Pre  Mode = "pre"
	Post Mode = "post"
)

func (m Mode) valid() bool {
	return m == Pre || m == Post
}

// Options controls Pad.
type Options struct {
	// MaxLen is the time length of the batch. Zero or negative means the
	// length of the longest sequence.
	MaxLen int `yaml:"maxlen"`

	// Padding is where fill rows go.
	Padding Mode `yaml:"padding"`

	// Truncating is where excess rows are dropped.
	Truncating Mode `yaml:"truncating"`

	// Value fills padded positions.
	Value float32 `yaml:"value"`
}

// DefaultOptions pads and truncates at the back with zeros.
func DefaultOptions() Options {
	return Options{Padding: Post, Truncating: Post}
}

// Validate reports an unknown padding or truncating mode.
func (o Options) Validate() error {
	if !o.Padding.valid() {
		return errs.Config("pad: unknown padding mode %q", o.Padding)
	}
	if !o.Truncating.valid() {
		return errs.Config("pad: unknown truncating mode %q", o.Truncating)
	}
	return nil
}

// Batch is a dense (Size, Time, Width) array in row-major order.
type Batch struct {
	Data  []float32
	Size  int
	Time  int
	Width int

	// Lengths[i] is the number of real rows of sequence i.
	Lengths []int
}

// Shape returns (Size, Time, Width).
func (b *Batch) Shape() [3]int {
	return [3]int{b.Size, b.Time, b.Width}
}

// Row returns the feature row at time t of sequence i. The slice aliases
// b.Data.
func (b *Batch) Row(i, t int) []float32 {
	off := (i*b.Time + t) * b.Width
	return b.Data[off : off+b.Width : off+b.Width]
}

// Sequences returns the batch as Size sequences of Time rows, padding
// included. Rows alias b.Data.
func (b *Batch) Sequences() [][][]float32 {
	out := make([][][]float32, b.Size)
	for i := range out {
		seq := make([][]float32, b.Time)
		for t := range seq {
			seq[t] = b.Row(i, t)
		}
		out[i] = seq
	}
	return out
}

// Pad packs seqs into a Batch.
//
// The width is taken from the first non-empty sequence; every other
// non-empty sequence must match it or Pad fails with an *errs.ShapeError.
// Empty sequences become all-Value rows with length 0. When every sequence
// is empty the width is 0.
func Pad(seqs [][][]float32, opts Options) (*Batch, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 0
		for _, s := range seqs {
			maxLen = max(maxLen, len(s))
		}
	}

	trunc := make([][][]float32, len(seqs))
	width := -1
	for i, s := range seqs {
		kept := s
		if len(kept) > maxLen {
			if opts.Truncating == Pre {
				kept = kept[len(kept)-maxLen:]
			} else {
				kept = kept[:maxLen]
			}
		}
		trunc[i] = kept
		if len(kept) == 0 {
			continue
		}
		if width < 0 {
			width = len(kept[0])
		}
		for _, row := range kept {
			if len(row) != width {
				return nil, &errs.ShapeError{Index: i, Got: []int{len(row)}, Want: []int{width}}
			}
		}
	}
	if width < 0 {
		width = 0
	}

	b := &Batch{
		Data:    make([]float32, len(seqs)*maxLen*width),
		Size:    len(seqs),
		Time:    maxLen,
		Width:   width,
		Lengths: make([]int, len(seqs)),
	}
	if opts.Value != 0 {
		for i := range b.Data {
			b.Data[i] = opts.Value
		}
	}

	for i, kept := range trunc {
		offset := 0
		if opts.Padding == Pre {
			offset = maxLen - len(kept)
		}
		for t, row := range kept {
			copy(b.Row(i, offset+t), row)
		}
		b.Lengths[i] = len(kept)
	}
	return b, nil
}
