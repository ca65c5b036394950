package wavfile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/speechbatch/pkg/errs"
)

func sine(n, rate int, freq, amp float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := Waveform{Samples: sine(8000, 8000, 440, 0.5), SampleRate: 8000}
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if out.SampleRate != 8000 {
		t.Fatalf("SampleRate = %d, want 8000", out.SampleRate)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("len = %d, want %d", len(out.Samples), len(in.Samples))
	}
	for i := range in.Samples {
		if d := math.Abs(float64(in.Samples[i] - out.Samples[i])); d > 1e-3 {
			t.Fatalf("sample %d: got %f, want %f", i, out.Samples[i], in.Samples[i])
		}
	}
	if got := out.Duration(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Duration = %f, want 1.0", got)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, errs.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist cause, got %v", err)
	}
}

func TestReadFileNotWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff header, just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestEncodeRejectsBadRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	err := WriteFile(path, Waveform{Samples: []float32{0}, SampleRate: 0})
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}
