package pad

import (
	"errors"
	"reflect"
	"testing"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// seq builds a [n][w] sequence whose row t is filled with base+t.
func seq(n, w int, base float32) [][]float32 {
	s := make([][]float32, n)
	for t := range s {
		row := make([]float32, w)
		for j := range row {
			row[j] = base + float32(t)
		}
		s[t] = row
	}
	return s
}

func TestPadPostDefault(t *testing.T) {
	b, err := Pad([][][]float32{seq(5, 2, 1), seq(3, 2, 10), seq(2, 2, 20)}, DefaultOptions())
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if b.Shape() != [3]int{3, 5, 2} {
		t.Fatalf("Shape = %v, want [3 5 2]", b.Shape())
	}
	if !reflect.DeepEqual(b.Lengths, []int{5, 3, 2}) {
		t.Fatalf("Lengths = %v, want [5 3 2]", b.Lengths)
	}
	for tt := 2; tt < 5; tt++ {
		if r := b.Row(2, tt); r[0] != 0 || r[1] != 0 {
			t.Fatalf("sequence 2 row %d = %v, want zeros", tt, r)
		}
	}
	if r := b.Row(2, 1); r[0] != 21 {
		t.Fatalf("sequence 2 row 1 = %v, want 21", r)
	}
}

func TestPadModes(t *testing.T) {
	in := [][][]float32{seq(4, 1, 1), seq(1, 1, 9)}
	tests := []struct {
		name    string
		opts    Options
		want    [][]float32 // first feature per (sequence, time)
		lengths []int
	}{
		{
			"post/post maxlen 2",
			Options{MaxLen: 2, Padding: Post, Truncating: Post, Value: -1},
			[][]float32{{1, 2}, {9, -1}},
			[]int{2, 1},
		},
		{
			"pre/pre maxlen 2",
			Options{MaxLen: 2, Padding: Pre, Truncating: Pre, Value: -1},
			[][]float32{{3, 4}, {-1, 9}},
			[]int{2, 1},
		},
		{
			"pre padding post truncating maxlen 3",
			Options{MaxLen: 3, Padding: Pre, Truncating: Post},
			[][]float32{{1, 2, 3}, {0, 0, 9}},
			[]int{3, 1},
		},
		{
			"longest",
			Options{Padding: Post, Truncating: Pre, Value: 7},
			[][]float32{{1, 2, 3, 4}, {9, 7, 7, 7}},
			[]int{4, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Pad(in, tt.opts)
			if err != nil {
				t.Fatalf("Pad: %v", err)
			}
			for i, want := range tt.want {
				for ti, v := range want {
					if got := b.Row(i, ti)[0]; got != v {
						t.Fatalf("seq %d t %d = %v, want %v", i, ti, got, v)
					}
				}
			}
			if !reflect.DeepEqual(b.Lengths, tt.lengths) {
				t.Fatalf("Lengths = %v, want %v", b.Lengths, tt.lengths)
			}
		})
	}
}

func TestPadUnknownMode(t *testing.T) {
	for _, opts := range []Options{
		{Padding: "middle", Truncating: Post},
		{Padding: Post, Truncating: ""},
	} {
		if _, err := Pad(nil, opts); !errors.Is(err, errs.ErrConfig) {
			t.Errorf("Pad(%+v): expected ErrConfig, got %v", opts, err)
		}
	}
}

func TestPadShapeMismatch(t *testing.T) {
	_, err := Pad([][][]float32{nil, seq(2, 3, 0), seq(2, 3, 0), seq(1, 2, 0)}, DefaultOptions())
	if !errors.Is(err, errs.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	var se *errs.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ShapeError, got %T", err)
	}
	if se.Index != 3 || se.Got[0] != 2 || se.Want[0] != 3 {
		t.Fatalf("ShapeError = %+v", se)
	}
}

func TestPadWidthCheckedAfterTruncation(t *testing.T) {
	// Frame 0 has the wrong width but pre-truncation drops it.
	s := append([][]float32{{9}}, seq(2, 3, 1)...)
	b, err := Pad([][][]float32{s, seq(1, 3, 0)}, Options{MaxLen: 2, Padding: Post, Truncating: Pre})
	if err != nil {
		t.Fatal(err)
	}
	if b.Width != 3 || b.Lengths[0] != 2 {
		t.Fatalf("Width = %d, Lengths = %v", b.Width, b.Lengths)
	}
	if got := b.Row(0, 0); got[0] != 1 {
		t.Fatalf("Row(0, 0) = %v", got)
	}

	// Post-truncation keeps the bad frame.
	_, err = Pad([][][]float32{s, seq(1, 3, 0)}, Options{MaxLen: 2, Padding: Post, Truncating: Post})
	var se *errs.ShapeError
	if !errors.As(err, &se) || se.Index != 0 {
		t.Fatalf("expected ShapeError at 0, got %v", err)
	}
}

func TestPadEmptySequences(t *testing.T) {
	b, err := Pad([][][]float32{{}, seq(2, 3, 1), nil}, Options{Padding: Post, Truncating: Post, Value: 5})
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if b.Shape() != [3]int{3, 2, 3} {
		t.Fatalf("Shape = %v", b.Shape())
	}
	if !reflect.DeepEqual(b.Lengths, []int{0, 2, 0}) {
		t.Fatalf("Lengths = %v", b.Lengths)
	}
	for _, i := range []int{0, 2} {
		for tt := 0; tt < 2; tt++ {
			for _, v := range b.Row(i, tt) {
				if v != 5 {
					t.Fatalf("empty sequence %d row %d = %v", i, tt, b.Row(i, tt))
				}
			}
		}
	}

	all, err := Pad([][][]float32{{}, {}}, DefaultOptions())
	if err != nil {
		t.Fatalf("Pad all empty: %v", err)
	}
	if all.Shape() != [3]int{2, 0, 0} {
		t.Fatalf("all-empty Shape = %v", all.Shape())
	}
}

func TestPadIdempotent(t *testing.T) {
	in := [][][]float32{seq(6, 2, 1), seq(2, 2, 10), seq(4, 2, 20)}
	for _, opts := range []Options{
		{MaxLen: 4, Padding: Post, Truncating: Post},
		{MaxLen: 4, Padding: Pre, Truncating: Pre},
		{MaxLen: 3, Padding: Pre, Truncating: Post, Value: 2},
	} {
		once, err := Pad(in, opts)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Pad(once.Sequences(), opts)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(once.Data, twice.Data) || once.Shape() != twice.Shape() {
			t.Errorf("%+v: padding not idempotent", opts)
		}
	}
}

func TestPadLengthFidelity(t *testing.T) {
	lens := []int{1, 3, 5, 7, 9}
	var in [][][]float32
	for _, n := range lens {
		in = append(in, seq(n, 1, 0))
	}
	const maxLen = 5
	b, err := Pad(in, Options{MaxLen: maxLen, Padding: Post, Truncating: Pre})
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range lens {
		want := min(n, maxLen)
		if b.Lengths[i] != want {
			t.Errorf("Lengths[%d] = %d, want %d", i, b.Lengths[i], want)
		}
	}
}
