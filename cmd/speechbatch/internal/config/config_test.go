package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/speechbatch/pkg/corpus"
	"github.com/haivivi/speechbatch/pkg/errs"
	"github.com/haivivi/speechbatch/pkg/features"
	"github.com/haivivi/speechbatch/pkg/pad"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speechbatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeYAML(t, `
features:
  sample_rate: 8000
  num_features: 13
labels:
  alphabet: digits
pad:
  padding: pre
  truncating: post
  value: -1
batch:
  size: 4
  seed: 9
store:
  kind: s3
  bucket: corpora
  region: us-west-2
  prefix: asr
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Features.SampleRate != 8000 || cfg.Batch.Size != 4 || cfg.Batch.Seed != 9 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Pad.Padding != pad.Pre || cfg.Pad.Value != -1 {
		t.Fatalf("pad = %+v", cfg.Pad)
	}
	a, err := cfg.Alphabet()
	if err != nil || a.Blank() != 11 {
		t.Fatalf("Alphabet = %v, %v", a, err)
	}
	store, err := cfg.BlobStore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*corpus.S3); !ok {
		t.Fatalf("store = %T, want *corpus.S3", store)
	}
	if got := cfg.ExtractorConfig().MFCC.SampleRate; got != 8000 {
		t.Fatalf("mfcc sample rate = %d, want 8000", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad alphabet", "labels:\n  alphabet: greek\n"},
		{"custom without chars", "labels:\n  alphabet: custom\n"},
		{"bad padding", "pad:\n  padding: middle\n  truncating: post\n"},
		{"zero batch", "batch:\n  size: 0\n"},
		{"bad store", "store:\n  kind: ftp\n"},
		{"s3 without bucket", "store:\n  kind: s3\n  region: eu-west-1\n"},
		{"not yaml", "features: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, tt.content))
			if !errors.Is(err, errs.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, errs.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestExtractorCache(t *testing.T) {
	cfg := Default()
	e, closeFn, err := cfg.Extractor(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*features.Extractor); !ok {
		t.Fatalf("extractor = %T, want *features.Extractor", e)
	}
	closeFn()

	cfg.Cache.Dir = t.TempDir()
	e, closeFn, err = cfg.Extractor(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := e.(*features.Cached); !ok {
		t.Fatalf("extractor = %T, want *features.Cached", e)
	}
}

func TestCustomAlphabet(t *testing.T) {
	cfg := Default()
	cfg.Labels = Labels{Alphabet: AlphabetCustom, Chars: "abc'"}
	codec, err := cfg.Codec()
	if err != nil {
		t.Fatal(err)
	}
	ids, err := codec.EncodeText("a'c")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[1] != 4 {
		t.Fatalf("ids = %v", ids)
	}
}
