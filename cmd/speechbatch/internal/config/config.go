// Package config loads the speechbatch YAML configuration.
//
// Example:
//
//	features:
//	  sample_rate: 16000
//	  num_features: 13
//	labels:
//	  alphabet: english        # english | digits | custom
//	pad:
//	  padding: post
//	  truncating: post
//	  value: 0
//	batch:
//	  size: 32
//	  workers: 8
//	  seed: 1
//	cache:
//	  dir: ./cache             # empty disables the feature cache
//	store:
//	  kind: local              # local | s3
//	  dir: ./corpora
//
// The pipeline packages take every value explicitly; Default supplies the
// values a missing file or section falls back to.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/speechbatch/pkg/audio/mfcc"
	"github.com/haivivi/speechbatch/pkg/corpus"
	"github.com/haivivi/speechbatch/pkg/errs"
	"github.com/haivivi/speechbatch/pkg/featcache"
	"github.com/haivivi/speechbatch/pkg/features"
	"github.com/haivivi/speechbatch/pkg/labels"
	"github.com/haivivi/speechbatch/pkg/pad"
)

// Alphabet names.
const (
	AlphabetEnglish = "english"
	AlphabetDigits  = "digits"
	AlphabetCustom  = "custom"
)

// Store kinds.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
)

// Config is the root configuration.
type Config struct {
	Features Features    `yaml:"features"`
	Labels   Labels      `yaml:"labels"`
	Pad      pad.Options `yaml:"pad"`
	Batch    Batch       `yaml:"batch"`
	Cache    Cache       `yaml:"cache"`
	Store    Store       `yaml:"store"`
}

// Features configures the feature extractor.
type Features struct {
	SampleRate  int `yaml:"sample_rate"`
	NumFeatures int `yaml:"num_features"`
	// MFCC overrides the analysis parameters. When nil the conventional
	// parameters for SampleRate are used.
	MFCC *mfcc.Config `yaml:"mfcc,omitempty"`
}

// Labels configures the label codec.
type Labels struct {
	Alphabet string `yaml:"alphabet"`
	// Chars lists the characters of a custom alphabet in class order.
	Chars string `yaml:"chars,omitempty"`
}

// Batch configures the dataset cursor.
type Batch struct {
	Size    int    `yaml:"size"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
}

// Cache configures the on-disk feature cache.
type Cache struct {
	Dir string `yaml:"dir,omitempty"`
}

// Store configures where corpora are saved.
type Store struct {
	Kind string `yaml:"kind"`

	// Local.
	Dir string `yaml:"dir,omitempty"`

	// S3.
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Features: Features{SampleRate: 16000, NumFeatures: 13},
		Labels:   Labels{Alphabet: AlphabetEnglish},
		Pad:      pad.DefaultOptions(),
		Batch:    Batch{Size: 32, Seed: 1},
		Store:    Store{Kind: StoreLocal, Dir: "corpora"},
	}
}

// Load reads the YAML file at path on top of Default and validates the
// result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Config("parse %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	if c.Features.SampleRate <= 0 {
		return errs.Config("features.sample_rate must be positive")
	}
	if c.Features.NumFeatures <= 0 {
		return errs.Config("features.num_features must be positive")
	}
	switch c.Labels.Alphabet {
	case AlphabetEnglish, AlphabetDigits:
	case AlphabetCustom:
		if c.Labels.Chars == "" {
			return errs.Config("labels.chars is required for a custom alphabet")
		}
	default:
		return errs.Config("unknown labels.alphabet %q", c.Labels.Alphabet)
	}
	if err := c.Pad.Validate(); err != nil {
		return err
	}
	if c.Batch.Size <= 0 {
		return errs.Config("batch.size must be positive, got %d", c.Batch.Size)
	}
	switch c.Store.Kind {
	case StoreLocal:
		if c.Store.Dir == "" {
			return errs.Config("store.dir is required for a local store")
		}
	case StoreS3:
		if c.Store.Bucket == "" || c.Store.Region == "" {
			return errs.Config("store.bucket and store.region are required for an s3 store")
		}
	default:
		return errs.Config("unknown store.kind %q", c.Store.Kind)
	}
	return nil
}

// ExtractorConfig returns the feature extractor configuration.
func (c *Config) ExtractorConfig() features.Config {
	m := mfcc.DefaultConfig(c.Features.SampleRate)
	if c.Features.MFCC != nil {
		m = *c.Features.MFCC
	}
	return features.Config{
		SampleRate:  c.Features.SampleRate,
		NumFeatures: c.Features.NumFeatures,
		MFCC:        m,
	}
}

// Extractor builds the feature extractor. When a cache directory is
// configured the extractor is wrapped with a badger-backed cache; the
// returned close function releases it.
func (c *Config) Extractor(logger *slog.Logger) (features.FileExtractor, func() error, error) {
	e, err := features.New(c.ExtractorConfig())
	if err != nil {
		return nil, nil, err
	}
	if c.Cache.Dir == "" {
		return e, func() error { return nil }, nil
	}
	store, err := featcache.NewBadger(featcache.BadgerOptions{Dir: c.Cache.Dir, Logger: logger})
	if err != nil {
		return nil, nil, errs.IO(err, "open feature cache %s", c.Cache.Dir)
	}
	return features.NewCached(e, store), store.Close, nil
}

// Alphabet builds the configured alphabet.
func (c *Config) Alphabet() (*labels.Alphabet, error) {
	switch c.Labels.Alphabet {
	case AlphabetDigits:
		return labels.Digits(), nil
	case AlphabetCustom:
		return labels.NewAlphabet(c.Labels.Chars)
	default:
		return labels.English(), nil
	}
}

// Codec builds the label codec.
func (c *Config) Codec() (*labels.Codec, error) {
	a, err := c.Alphabet()
	if err != nil {
		return nil, err
	}
	return labels.NewCodec(a), nil
}

// BlobStore opens the configured corpus store.
func (c *Config) BlobStore(_ context.Context) (corpus.BlobStore, error) {
	switch c.Store.Kind {
	case StoreS3:
		client := corpus.NewS3Client(corpus.S3Options{
			Region:    c.Store.Region,
			Endpoint:  c.Store.Endpoint,
			PathStyle: c.Store.PathStyle,
		})
		return corpus.NewS3(client, c.Store.Bucket, c.Store.Prefix), nil
	default:
		s, err := corpus.NewLocal(c.Store.Dir)
		if err != nil {
			return nil, errs.IO(err, "open store %s", c.Store.Dir)
		}
		return s, nil
	}
}
