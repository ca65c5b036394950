package errs

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestSentinelWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"config", Config("batch size %d", 5), ErrConfig},
		{"encoding", Encoding("bad rune %q", '#'), ErrEncoding},
		{"input", Input("empty waveform"), ErrInput},
		{"io", IO(os.ErrNotExist, "read %s", "x_audios"), ErrIO},
		{"io without cause", IO(nil, "truncated"), ErrIO},
		{"shape", &ShapeError{Index: 2, Got: []int{3}, Want: []int{2}}, ErrShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Fatalf("errors.Is(%v, %v) = false", tt.err, tt.want)
			}
		})
	}
}

func TestIOKeepsCause(t *testing.T) {
	err := IO(os.ErrNotExist, "read %s", "corpus_labeles")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause lost: %v", err)
	}
	if !strings.Contains(err.Error(), "corpus_labeles") {
		t.Fatalf("message missing path: %v", err)
	}
}

func TestShapeErrorMessage(t *testing.T) {
	err := &ShapeError{Index: 4, Got: []int{13}, Want: []int{26}}
	msg := err.Error()
	for _, part := range []string{"position 4", "[13]", "[26]"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q does not contain %q", msg, part)
		}
	}
	var se *ShapeError
	if !errors.As(error(err), &se) || se.Index != 4 {
		t.Fatalf("errors.As failed: %v", se)
	}
}
