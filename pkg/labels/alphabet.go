// Package labels converts transcripts to integer class sequences and packs
// batches of them into the sparse layout a CTC loss consumes.
//
// Class ids are assigned as follows:
//
//	space      -> 0
//	chars[i]   -> i + 1
//	blank      -> len(chars) + 1
//
// so the English alphabet maps a..z to 1..26 with blank 27, and the digit
// alphabet maps 0..9 to 1..10 with blank 11.
package labels

import (
	"unicode"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Space is the class id of the space character in every alphabet.
const Space int32 = 0

// Alphabet is an immutable character-to-class mapping.
type Alphabet struct {
	chars []rune
	index map[rune]int32
}

// NewAlphabet builds an alphabet from chars. Characters must be unique,
// lowercase where case applies, and must not include the space.
func NewAlphabet(chars string) (*Alphabet, error) {
	rs := []rune(chars)
	if len(rs) == 0 {
		return nil, errs.Config("labels: empty alphabet")
	}
	a := &Alphabet{chars: rs, index: make(map[rune]int32, len(rs))}
	for i, r := range rs {
		switch {
		case r == ' ':
			return nil, errs.Config("labels: alphabet must not contain space, it is always class 0")
		case unicode.ToLower(r) != r:
			return nil, errs.Config("labels: alphabet character %q is not lowercase", r)
		}
		if _, dup := a.index[r]; dup {
			return nil, errs.Config("labels: duplicate alphabet character %q", r)
		}
		a.index[r] = int32(i + 1)
	}
	return a, nil
}

func mustAlphabet(chars string) *Alphabet {
	a, err := NewAlphabet(chars)
	if err != nil {
		panic(err)
	}
	return a
}

var (
	english = mustAlphabet("abcdefghijklmnopqrstuvwxyz")
	digits  = mustAlphabet("0123456789")
)

// English returns the a..z alphabet.
func English() *Alphabet { return english }

// Digits returns the 0..9 alphabet used in digit mode.
func Digits() *Alphabet { return digits }

// Blank returns the class id reserved for the CTC blank.
func (a *Alphabet) Blank() int32 {
	return int32(len(a.chars) + 1)
}

// NumClasses returns the number of distinct class ids, blank included.
func (a *Alphabet) NumClasses() int {
	return len(a.chars) + 2
}

// Chars returns the alphabet characters in class order, space and blank
// excluded.
func (a *Alphabet) Chars() string {
	return string(a.chars)
}

// Index returns the class id of r.
func (a *Alphabet) Index(r rune) (int32, bool) {
	if r == ' ' {
		return Space, true
	}
	i, ok := a.index[r]
	return i, ok
}

// Rune returns the character of class id i. The blank has no character and
// reports ok=false, as does any out-of-range id.
func (a *Alphabet) Rune(i int32) (rune, bool) {
	switch {
	case i == Space:
		return ' ', true
	case i >= 1 && int(i) <= len(a.chars):
		return a.chars[i-1], true
	}
	return 0, false
}
