// Package wavfile reads and writes RIFF/WAVE files as mono float32
// waveforms.
//
// Decoding accepts integer PCM at any sample rate, bit depth and channel
// count. Channels are averaged into a single mono channel and samples are
// scaled to [-1, 1]. Encoding always writes 16-bit mono PCM.
package wavfile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Waveform is a mono audio signal.
type Waveform struct {
	// Samples are normalized to [-1, 1].
	Samples []float32

	// SampleRate is the sample rate in Hz.
	SampleRate int
}

// Duration returns the length of the waveform in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Decode reads a complete WAV stream.
func Decode(r io.ReadSeeker) (Waveform, error) {
	d := gowav.NewDecoder(r)
	if !d.IsValidFile() {
		return Waveform{}, errs.Input("not a valid PCM WAV stream")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Waveform{}, errs.Input("decode wav: %v", err)
	}
	channels := int(d.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels <= 0 {
		return Waveform{}, errs.Input("wav has %d channels", channels)
	}
	depth := int(d.BitDepth)
	if depth != 8 && depth != 16 && depth != 24 && depth != 32 {
		return Waveform{}, errs.Input("unsupported bit depth %d", depth)
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	scale := float64(int64(1) << (depth - 1))
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			v := float64(buf.Data[i*channels+c])
			if depth == 8 {
				// 8-bit WAV is unsigned.
				v -= 128
			}
			sum += v
		}
		samples[i] = float32(sum / float64(channels) / scale)
	}
	return Waveform{Samples: samples, SampleRate: int(d.SampleRate)}, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, errs.IO(err, "open %s", path)
	}
	defer f.Close()

	w, err := Decode(f)
	if err != nil {
		return Waveform{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Encode writes w as 16-bit mono PCM.
func Encode(ws io.WriteSeeker, w Waveform) error {
	if w.SampleRate <= 0 {
		return errs.Input("sample rate must be positive, got %d", w.SampleRate)
	}
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		v := float64(s) * 32767
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = int(v)
	}
	enc := gowav.NewEncoder(ws, w.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

// WriteFile writes w to path as a 16-bit mono WAV file.
func WriteFile(path string, w Waveform) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.IO(err, "create %s", path)
	}
	if err := Encode(f, w); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
