// Package mfcc computes mel-frequency cepstral coefficients from mono PCM
// audio.
//
// The pipeline is the classic short-time cepstral analysis:
//
//	pre-emphasis -> framing -> window -> |FFT|^2 / N -> mel filterbank
//	-> log -> DCT-II (orthonormal) -> lifter -> c0 := log frame energy
//
// DefaultConfig matches the widely used python_speech_features defaults:
//
//	WindowSize:   25 ms
//	HopSize:      10 ms
//	FFTSize:      512 (grown to the next power of two above WindowSize)
//	NumFilters:   26
//	NumCep:       13
//	LowFreq:      0
//	HighFreq:     SampleRate / 2
//	PreEmphasis:  0.97
//	CepLifter:    22
//	AppendEnergy: true
//	Window:       rectangular
//
// The output is a [T][NumCep] float32 matrix. Normalize applies
// per-utterance mean/variance normalization to such a matrix.
package mfcc

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Window selects the analysis window applied to every frame.
type Window string

// Supported windows.
const (
	WindowRect    Window = "rect"
	WindowHamming Window = "hamming"
	WindowHann    Window = "hann"
)

// Config controls MFCC extraction parameters.
type Config struct {
	SampleRate   int     `yaml:"sample_rate" msgpack:"sample_rate"`     // audio sample rate in Hz
	WindowSize   int     `yaml:"window_size" msgpack:"window_size"`     // frame length in samples
	HopSize      int     `yaml:"hop_size" msgpack:"hop_size"`           // frame step in samples
	FFTSize      int     `yaml:"fft_size" msgpack:"fft_size"`           // FFT size, power of two
	NumFilters   int     `yaml:"num_filters" msgpack:"num_filters"`     // mel filters
	NumCep       int     `yaml:"num_cep" msgpack:"num_cep"`             // cepstra kept per frame
	LowFreq      float64 `yaml:"low_freq" msgpack:"low_freq"`           // lowest filter edge in Hz
	HighFreq     float64 `yaml:"high_freq" msgpack:"high_freq"`         // highest filter edge in Hz
	PreEmphasis  float64 `yaml:"pre_emphasis" msgpack:"pre_emphasis"`   // 0 disables
	CepLifter    int     `yaml:"cep_lifter" msgpack:"cep_lifter"`       // 0 disables
	AppendEnergy bool    `yaml:"append_energy" msgpack:"append_energy"` // replace c0 with log energy
	Window       Window  `yaml:"window" msgpack:"window"`
}

// DefaultConfig returns the conventional MFCC parameters for sampleRate.
func DefaultConfig(sampleRate int) Config {
	win := int(math.Round(0.025 * float64(sampleRate)))
	fftSize := 512
	for fftSize < win {
		fftSize <<= 1
	}
	return Config{
		SampleRate:   sampleRate,
		WindowSize:   win,
		HopSize:      int(math.Round(0.010 * float64(sampleRate))),
		FFTSize:      fftSize,
		NumFilters:   26,
		NumCep:       13,
		LowFreq:      0,
		HighFreq:     float64(sampleRate) / 2,
		PreEmphasis:  0.97,
		CepLifter:    22,
		AppendEnergy: true,
		Window:       WindowRect,
	}
}

// Validate checks that the configuration describes a computable transform.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return errs.Config("mfcc: sample rate must be positive, got %d", c.SampleRate)
	case c.WindowSize <= 0 || c.HopSize <= 0:
		return errs.Config("mfcc: window %d and hop %d must be positive", c.WindowSize, c.HopSize)
	case c.FFTSize < c.WindowSize || c.FFTSize&(c.FFTSize-1) != 0:
		return errs.Config("mfcc: fft size %d must be a power of two >= window size %d", c.FFTSize, c.WindowSize)
	case c.NumFilters <= 0:
		return errs.Config("mfcc: num filters must be positive, got %d", c.NumFilters)
	case c.NumCep <= 0 || c.NumCep > c.NumFilters:
		return errs.Config("mfcc: num cep %d must be in [1, %d]", c.NumCep, c.NumFilters)
	case c.LowFreq < 0 || c.HighFreq <= c.LowFreq || c.HighFreq > float64(c.SampleRate)/2:
		return errs.Config("mfcc: frequency range [%g, %g] invalid for rate %d", c.LowFreq, c.HighFreq, c.SampleRate)
	}
	switch c.Window {
	case "", WindowRect, WindowHamming, WindowHann:
	default:
		return errs.Config("mfcc: unknown window %q", c.Window)
	}
	return nil
}

// Extractor computes MFCC features from PCM samples. An Extractor is safe
// for concurrent use; FFT plans are pooled and working buffers are
// allocated per call.
type Extractor struct {
	cfg     Config
	ffts    sync.Pool
	window  []float64
	melBank [][]float64
	dct     [][]float64
	lift    []float64
}

// New creates a new Extractor with the given config.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Extractor{
		cfg:     cfg,
		window:  window(cfg.Window, cfg.WindowSize),
		melBank: melFilterBank(cfg.NumFilters, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
		dct:     dctMatrix(cfg.NumCep, cfg.NumFilters),
		lift:    lifter(cfg.NumCep, cfg.CepLifter),
	}
	e.ffts.New = func() any { return fourier.NewFFT(cfg.FFTSize) }
	return e, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Width returns the number of coefficients per frame.
func (e *Extractor) Width() int {
	return e.cfg.NumCep
}

// NumFrames returns the number of frames produced for n samples. Any
// non-empty signal yields at least one frame; the last frame is
// zero-padded.
func (e *Extractor) NumFrames(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= e.cfg.WindowSize {
		return 1
	}
	return 1 + (n-e.cfg.WindowSize+e.cfg.HopSize-1)/e.cfg.HopSize
}

// Extract computes MFCC features from normalized float32 samples.
// Output: [T][NumCep] where T = NumFrames(len(pcm)).
func (e *Extractor) Extract(pcm []float32) ([][]float32, error) {
	if len(pcm) == 0 {
		return nil, errs.Input("mfcc: empty waveform")
	}
	cfg := e.cfg
	numFrames := e.NumFrames(len(pcm))
	nfft := cfg.FFTSize
	halfFFT := nfft/2 + 1

	// Pre-emphasized signal, zero-padded to cover the last frame.
	padded := make([]float64, (numFrames-1)*cfg.HopSize+cfg.WindowSize)
	for i, s := range pcm {
		v := float64(s)
		if i > 0 {
			v -= cfg.PreEmphasis * float64(pcm[i-1])
		}
		padded[i] = v
	}

	features := make([][]float32, numFrames)
	frame := make([]float64, nfft)
	coeffs := make([]complex128, halfFFT)
	power := make([]float64, halfFFT)
	logMel := make([]float64, cfg.NumFilters)
	fft := e.ffts.Get().(*fourier.FFT)
	defer e.ffts.Put(fft)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize
		for i := 0; i < cfg.WindowSize; i++ {
			frame[i] = padded[start+i] * e.window[i]
		}
		for i := cfg.WindowSize; i < nfft; i++ {
			frame[i] = 0
		}

		coeffs = fft.Coefficients(coeffs, frame)
		energy := 0.0
		for k, c := range coeffs {
			p := (real(c)*real(c) + imag(c)*imag(c)) / float64(nfft)
			power[k] = p
			energy += p
		}

		for m, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				if w != 0 {
					sum += w * power[k]
				}
			}
			logMel[m] = safeLog(sum)
		}

		row := make([]float32, cfg.NumCep)
		for k, basis := range e.dct {
			sum := 0.0
			for j, b := range basis {
				sum += b * logMel[j]
			}
			row[k] = float32(sum * e.lift[k])
		}
		if cfg.AppendEnergy {
			row[0] = float32(safeLog(energy))
		}
		features[t] = row
	}
	return features, nil
}

// safeLog returns log(x) with zero replaced by the float64 machine epsilon.
func safeLog(x float64) float64 {
	if x <= 0 {
		x = 2.220446049250313e-16
	}
	return math.Log(x)
}
