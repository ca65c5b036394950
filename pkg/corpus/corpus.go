// Package corpus holds the paired audio and transcript collections a
// dataset cursor draws from, and persists them to a blob store.
//
// A Corpus is two index-aligned slices: Audios[i] and Labels[i] always
// describe the same utterance. Every operation that reorders one slice
// reorders the other with the same permutation.
//
// Each entry is either resolved (features or class ids are present) or a
// reference to a file that still has to be decoded:
//
//	Audio{Features: m}           // resolved
//	Audio{Path: "a.wav"}         // extract on demand
//	Label{Indices: []int32{...}} // resolved
//	Label{Text: "cat"}           // encode on demand
//	Label{Path: "a.txt"}         // read and encode on demand
package corpus

import (
	"math"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Audio is the audio side of one utterance.
type Audio struct {
	Path     string      `msgpack:"path,omitempty"`
	Features [][]float32 `msgpack:"features"`
}

// Resolved reports whether the features are present.
func (a Audio) Resolved() bool {
	return a.Features != nil
}

// Label is the transcript side of one utterance.
type Label struct {
	Path    string  `msgpack:"path,omitempty"`
	Text    string  `msgpack:"text,omitempty"`
	Indices []int32 `msgpack:"indices"`
}

// Resolved reports whether the class ids are present.
func (l Label) Resolved() bool {
	return l.Indices != nil
}

// Corpus is an ordered collection of utterances.
type Corpus struct {
	Audios []Audio
	Labels []Label
}

// New pairs audios with labels. The slices are used as given, not copied.
func New(audios []Audio, labels []Label) (*Corpus, error) {
	if len(audios) != len(labels) {
		return nil, errs.Config("corpus: %d audios but %d labels", len(audios), len(labels))
	}
	return &Corpus{Audios: audios, Labels: labels}, nil
}

// Len returns the number of utterances.
func (c *Corpus) Len() int {
	return len(c.Audios)
}

// Swap exchanges utterances i and j.
func (c *Corpus) Swap(i, j int) {
	c.Audios[i], c.Audios[j] = c.Audios[j], c.Audios[i]
	c.Labels[i], c.Labels[j] = c.Labels[j], c.Labels[i]
}

// Slice returns utterances [i, j) as a new corpus. The entries are shared
// but the new corpus can be reordered independently.
func (c *Corpus) Slice(i, j int) *Corpus {
	return &Corpus{
		Audios: append([]Audio(nil), c.Audios[i:j]...),
		Labels: append([]Label(nil), c.Labels[i:j]...),
	}
}

// Permute reorders the corpus in place so that position k holds what was at
// perm[k]. perm must be a permutation of [0, Len()).
func (c *Corpus) Permute(perm []int) error {
	n := c.Len()
	if len(perm) != n {
		return errs.Config("corpus: permutation of length %d for %d utterances", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return errs.Config("corpus: %v is not a permutation", perm)
		}
		seen[p] = true
	}
	audios := make([]Audio, n)
	labels := make([]Label, n)
	for k, p := range perm {
		audios[k] = c.Audios[p]
		labels[k] = c.Labels[p]
	}
	copy(c.Audios, audios)
	copy(c.Labels, labels)
	return nil
}

// Split divides the corpus in order: the first round(ratio*Len()) utterances
// go to head, the rest to tail. Shuffle beforehand for a random split.
func (c *Corpus) Split(ratio float64) (head, tail *Corpus, err error) {
	if !(ratio > 0 && ratio < 1) {
		return nil, nil, errs.Config("corpus: split ratio %g outside (0, 1)", ratio)
	}
	k := int(math.Round(ratio * float64(c.Len())))
	return c.Slice(0, k), c.Slice(k, c.Len()), nil
}
