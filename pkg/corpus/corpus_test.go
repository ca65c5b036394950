package corpus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// numbered returns a corpus whose audio i is "a<i>" and label i is "l<i>".
func numbered(n int) *Corpus {
	audios := make([]Audio, n)
	labels := make([]Label, n)
	for i := 0; i < n; i++ {
		audios[i] = Audio{Path: fmt.Sprintf("a%d", i)}
		labels[i] = Label{Text: fmt.Sprintf("l%d", i)}
	}
	c, _ := New(audios, labels)
	return c
}

func aligned(t *testing.T, c *Corpus) {
	t.Helper()
	for i := range c.Audios {
		if c.Audios[i].Path[1:] != c.Labels[i].Text[1:] {
			t.Fatalf("position %d misaligned: %s / %s", i, c.Audios[i].Path, c.Labels[i].Text)
		}
	}
}

func TestNewLengthMismatch(t *testing.T) {
	if _, err := New(make([]Audio, 2), make([]Label, 3)); !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestPermute(t *testing.T) {
	c := numbered(4)
	if err := c.Permute([]int{2, 0, 3, 1}); err != nil {
		t.Fatal(err)
	}
	want := []string{"a2", "a0", "a3", "a1"}
	for i, w := range want {
		if c.Audios[i].Path != w {
			t.Fatalf("Audios[%d] = %s, want %s", i, c.Audios[i].Path, w)
		}
	}
	aligned(t, c)
}

func TestPermuteRejects(t *testing.T) {
	c := numbered(3)
	for _, perm := range [][]int{{0, 1}, {0, 0, 1}, {0, 1, 3}, {-1, 0, 1}} {
		if err := c.Permute(perm); !errors.Is(err, errs.ErrConfig) {
			t.Errorf("Permute(%v): expected ErrConfig, got %v", perm, err)
		}
	}
	// A rejected permutation leaves the corpus untouched.
	for i := 0; i < 3; i++ {
		if c.Audios[i].Path != fmt.Sprintf("a%d", i) {
			t.Fatalf("corpus modified by rejected Permute: %v", c.Audios)
		}
	}
}

func TestSwap(t *testing.T) {
	c := numbered(3)
	c.Swap(0, 2)
	if c.Audios[0].Path != "a2" || c.Labels[0].Text != "l2" {
		t.Fatalf("Swap: %v %v", c.Audios[0], c.Labels[0])
	}
	aligned(t, c)
}

func TestSliceIndependent(t *testing.T) {
	c := numbered(5)
	s := c.Slice(1, 4)
	if s.Len() != 3 || s.Audios[0].Path != "a1" {
		t.Fatalf("Slice = %v", s.Audios)
	}
	s.Swap(0, 2)
	if c.Audios[1].Path != "a1" {
		t.Fatal("reordering a slice changed the parent corpus")
	}
}

func TestSplit(t *testing.T) {
	head, tail, err := numbered(10).Split(0.8)
	if err != nil {
		t.Fatal(err)
	}
	if head.Len() != 8 || tail.Len() != 2 {
		t.Fatalf("split sizes = %d/%d, want 8/2", head.Len(), tail.Len())
	}
	if tail.Audios[0].Path != "a8" {
		t.Fatalf("tail starts at %s, want a8", tail.Audios[0].Path)
	}
	for _, r := range []float64{0, 1, -0.5, 2} {
		if _, _, err := numbered(4).Split(r); !errors.Is(err, errs.ErrConfig) {
			t.Errorf("Split(%g): expected ErrConfig, got %v", r, err)
		}
	}
}

func TestResolved(t *testing.T) {
	if (Audio{Path: "x"}).Resolved() || !(Audio{Features: [][]float32{}}).Resolved() {
		t.Fatal("Audio.Resolved wrong")
	}
	if (Label{Text: "x"}).Resolved() || !(Label{Indices: []int32{}}).Resolved() {
		t.Fatal("Label.Resolved wrong")
	}
}
