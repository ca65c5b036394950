// Package features turns waveforms into normalized cepstral feature
// matrices of a fixed width.
//
// An Extractor resamples its input to the configured rate, runs MFCC
// analysis and applies per-utterance mean/variance normalization, so every
// column of the result has zero mean and unit variance over the frames of
// that one utterance.
package features

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/speechbatch/pkg/audio/mfcc"
	"github.com/haivivi/speechbatch/pkg/audio/resampler"
	"github.com/haivivi/speechbatch/pkg/audio/wavfile"
	"github.com/haivivi/speechbatch/pkg/errs"
)

// Config configures an Extractor. There are no implicit defaults: every
// field must be set by the caller, typically from mfcc.DefaultConfig.
type Config struct {
	// SampleRate is the rate every waveform is resampled to before analysis.
	SampleRate int `yaml:"sample_rate" msgpack:"sample_rate"`

	// NumFeatures is the expected width of every feature row.
	NumFeatures int `yaml:"num_features" msgpack:"num_features"`

	// MFCC holds the cepstral analysis parameters. MFCC.SampleRate must
	// equal SampleRate.
	MFCC mfcc.Config `yaml:"mfcc" msgpack:"mfcc"`
}

// Extractor converts waveforms to feature matrices. It is safe for
// concurrent use.
type Extractor struct {
	cfg  Config
	mfcc *mfcc.Extractor
	fp   string
}

// New validates cfg and builds an Extractor.
func New(cfg Config) (*Extractor, error) {
	if cfg.SampleRate <= 0 {
		return nil, errs.Config("features: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.NumFeatures <= 0 {
		return nil, errs.Config("features: feature dimension must be positive, got %d", cfg.NumFeatures)
	}
	if cfg.MFCC.SampleRate != cfg.SampleRate {
		return nil, errs.Config("features: mfcc sample rate %d differs from target rate %d",
			cfg.MFCC.SampleRate, cfg.SampleRate)
	}
	m, err := mfcc.New(cfg.MFCC)
	if err != nil {
		return nil, err
	}
	if m.Width() != cfg.NumFeatures {
		return nil, errs.Input("features: configured dimension %d does not match extractor width %d",
			cfg.NumFeatures, m.Width())
	}
	fp, err := fingerprint(cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, mfcc: m, fp: fp}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Width returns the number of features per frame.
func (e *Extractor) Width() int {
	return e.cfg.NumFeatures
}

// Fingerprint identifies the configuration. Two extractors with the same
// fingerprint produce identical features for identical input.
func (e *Extractor) Fingerprint() string {
	return e.fp
}

// Extract computes the normalized feature matrix of w. The result has
// shape [T][Width()].
func (e *Extractor) Extract(w wavfile.Waveform) ([][]float32, error) {
	if len(w.Samples) == 0 {
		return nil, errs.Input("features: empty waveform")
	}
	samples := w.Samples
	if w.SampleRate != e.cfg.SampleRate {
		var err error
		samples, err = resampler.Resample(w.Samples, w.SampleRate, e.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("features: resample %d -> %d: %w", w.SampleRate, e.cfg.SampleRate, err)
		}
		if len(samples) == 0 {
			return nil, errs.Input("features: waveform too short to resample")
		}
	}
	m, err := e.mfcc.Extract(samples)
	if err != nil {
		return nil, err
	}
	mfcc.Normalize(m)
	return m, nil
}

// ExtractFile decodes the WAV file at path and extracts its features.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := wavfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := e.Extract(w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func fingerprint(cfg Config) (string, error) {
	b, err := msgpack.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("features: fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8]), nil
}
