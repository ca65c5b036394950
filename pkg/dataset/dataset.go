// Package dataset draws padded training batches from a corpus.
//
// A Cursor walks the corpus in fixed windows of batch-size utterances.
// When the next window would run past the end, the epoch counter advances,
// the corpus is shuffled in place and the window restarts at 0; the
// remainder of the previous epoch is dropped. Every batch therefore holds
// exactly the requested number of utterances.
//
// A Cursor is owned by a single consumer and is not safe for concurrent
// use. Independent cursors (for example train and test) may run side by
// side.
package dataset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/speechbatch/pkg/corpus"
	"github.com/haivivi/speechbatch/pkg/errs"
	"github.com/haivivi/speechbatch/pkg/features"
	"github.com/haivivi/speechbatch/pkg/labels"
	"github.com/haivivi/speechbatch/pkg/pad"
)

// Config configures a Cursor.
type Config struct {
	// Extractor computes features for audio entries that are file
	// references. It may be nil when every audio is already resolved.
	Extractor features.FileExtractor

	// Codec encodes label entries that are text or file references. It
	// may be nil when every label is already resolved.
	Codec *labels.Codec

	// Pad controls how feature sequences are padded.
	Pad pad.Options

	// Workers bounds concurrent feature extraction within one batch.
	// Zero or negative means GOMAXPROCS.
	Workers int

	// Seed seeds the epoch-boundary shuffles.
	Seed uint64
}

// Batch is one training step's input.
type Batch struct {
	// Features is the padded (batch, time, feature) array.
	Features *pad.Batch
	// Labels holds the class ids in sparse form.
	Labels *labels.Sparse
	// Lengths[i] is the number of real frames of row i.
	Lengths []int
}

// Size returns the number of utterances in the batch.
func (b *Batch) Size() int {
	return len(b.Lengths)
}

// Cursor hands out consecutive batches of a corpus.
type Cursor struct {
	corpus *corpus.Corpus
	cfg    Config
	rng    *rand.Rand

	indexInEpoch    int
	epochsCompleted int
}

// New creates a cursor positioned at the start of epoch 0. The corpus is
// shuffled in place at every epoch boundary.
func New(c *corpus.Corpus, cfg Config) (*Cursor, error) {
	if err := checkCorpus(c); err != nil {
		return nil, err
	}
	if err := cfg.Pad.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Cursor{
		corpus: c,
		cfg:    cfg,
		rng:    newRand(cfg.Seed),
	}, nil
}

// checkCorpus reports a corpus whose audio and label sides are not aligned.
func checkCorpus(c *corpus.Corpus) error {
	if c == nil {
		return errs.Config("dataset: nil corpus")
	}
	if len(c.Audios) != len(c.Labels) {
		return errs.Config("dataset: %d audios but %d labels", len(c.Audios), len(c.Labels))
	}
	return nil
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// NumExamples returns the corpus size.
func (c *Cursor) NumExamples() int {
	return c.corpus.Len()
}

// IndexInEpoch returns the end of the last window handed out.
func (c *Cursor) IndexInEpoch() int {
	return c.indexInEpoch
}

// EpochsCompleted returns how many epoch boundaries have been crossed.
func (c *Cursor) EpochsCompleted() int {
	return c.epochsCompleted
}

// Corpus returns the corpus in its current order.
func (c *Cursor) Corpus() *corpus.Corpus {
	return c.corpus
}

// NextBatch returns the next batchSize utterances.
//
// The cursor advances before any utterance is resolved, so when NextBatch
// fails the caller may call it again to move past the failing window.
func (c *Cursor) NextBatch(ctx context.Context, batchSize int) (*Batch, error) {
	if err := checkCorpus(c.corpus); err != nil {
		return nil, err
	}
	n := c.corpus.Len()
	if batchSize <= 0 {
		return nil, errs.Config("dataset: batch size must be positive, got %d", batchSize)
	}
	if batchSize > n {
		return nil, errs.Config("dataset: batch size cannot exceed corpus size (%d > %d)", batchSize, n)
	}

	start := c.indexInEpoch
	c.indexInEpoch += batchSize
	if c.indexInEpoch > n {
		c.epochsCompleted++
		c.shuffle(c.rng)
		start = 0
		c.indexInEpoch = batchSize
	}
	return build(ctx, c.corpus, start, c.indexInEpoch, c.cfg)
}

// Shuffle applies a permutation derived only from seed to the corpus. The
// epoch counters are left unchanged.
func (c *Cursor) Shuffle(seed uint64) {
	c.shuffle(newRand(seed))
}

func (c *Cursor) shuffle(rng *rand.Rand) {
	// rng.Perm always yields a valid permutation.
	_ = c.corpus.Permute(rng.Perm(c.corpus.Len()))
}

// Targets transforms the whole corpus into a single batch without
// touching any cursor state. Use it for evaluation sets.
func Targets(ctx context.Context, c *corpus.Corpus, cfg Config) (*Batch, error) {
	if err := checkCorpus(c); err != nil {
		return nil, err
	}
	if err := cfg.Pad.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return build(ctx, c, 0, c.Len(), cfg)
}

// build resolves utterances [start, end) and packs them.
func build(ctx context.Context, c *corpus.Corpus, start, end int, cfg Config) (*Batch, error) {
	feats, ids, err := resolve(ctx, c, start, end, cfg)
	if err != nil {
		return nil, err
	}
	padded, err := pad.Pad(feats, cfg.Pad)
	if err != nil {
		return nil, err
	}
	return &Batch{
		Features: padded,
		Labels:   labels.ToSparse(ids),
		Lengths:  padded.Lengths,
	}, nil
}

// resolve extracts and encodes utterances [start, end) in parallel.
// Results keep corpus order.
func resolve(ctx context.Context, c *corpus.Corpus, start, end int, cfg Config) ([][][]float32, [][]int32, error) {
	feats := make([][][]float32, end-start)
	ids := make([][]int32, end-start)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := start; i < end; i++ {
		k := i - start
		g.Go(func() error {
			var err error
			if feats[k], err = audioFeatures(ctx, c.Audios[i], cfg.Extractor); err != nil {
				return fmt.Errorf("example %d: %w", i, err)
			}
			if ids[k], err = labelIndices(c.Labels[i], cfg.Codec); err != nil {
				return fmt.Errorf("example %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return feats, ids, nil
}

func audioFeatures(ctx context.Context, a corpus.Audio, e features.FileExtractor) ([][]float32, error) {
	if a.Resolved() {
		return a.Features, nil
	}
	if a.Path == "" {
		return nil, errs.Input("audio entry has neither features nor path")
	}
	if e == nil {
		return nil, errs.Config("no feature extractor configured for %s", a.Path)
	}
	return e.ExtractFile(ctx, a.Path)
}

func labelIndices(l corpus.Label, codec *labels.Codec) ([]int32, error) {
	if l.Resolved() {
		return l.Indices, nil
	}
	if codec == nil {
		return nil, errs.Config("no label codec configured")
	}
	if l.Path != "" {
		return codec.EncodeFile(l.Path)
	}
	return codec.EncodeText(l.Text)
}

// Prepare resolves every entry of c in place, so the corpus can be saved
// with features and class ids instead of file references.
func Prepare(ctx context.Context, c *corpus.Corpus, e features.FileExtractor, codec *labels.Codec, workers int) error {
	if err := checkCorpus(c); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	feats, ids, err := resolve(ctx, c, 0, c.Len(), Config{Extractor: e, Codec: codec, Workers: workers})
	if err != nil {
		return err
	}
	for i := range feats {
		c.Audios[i] = corpus.Audio{Path: c.Audios[i].Path, Features: feats[i]}
		c.Labels[i] = corpus.Label{Path: c.Labels[i].Path, Text: c.Labels[i].Text, Indices: ids[i]}
	}
	return nil
}
