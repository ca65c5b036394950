package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/pkg/corpus"
	"github.com/haivivi/speechbatch/pkg/dataset"
)

var (
	batchName  string
	batchSize  int
	batchCount int
	batchSeed  uint64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Draw padded batches from a saved corpus",
	Long: `Load a corpus and draw batches exactly as a trainer would.

Each line reports the padded shape, the frame lengths, the cursor
position and the first transcript of the batch, decoded back to text.
Unprepared corpora are extracted on the fly.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchName, "name", "", "corpus name (required)")
	batchCmd.Flags().IntVar(&batchSize, "size", 0, "batch size (default from config)")
	batchCmd.Flags().IntVar(&batchCount, "count", 1, "number of batches to draw")
	batchCmd.Flags().Uint64Var(&batchSeed, "seed", 0, "shuffle seed (default from config)")
	batchCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(batchCmd)
}

type batchLine struct {
	Batch           int      `json:"batch" yaml:"batch"`
	Shape           [3]int   `json:"shape" yaml:"shape"`
	Lengths         []int    `json:"lengths" yaml:"lengths"`
	LabelShape      [2]int64 `json:"label_shape" yaml:"label_shape"`
	IndexInEpoch    int      `json:"index_in_epoch" yaml:"index_in_epoch"`
	EpochsCompleted int      `json:"epochs_completed" yaml:"epochs_completed"`
	First           string   `json:"first" yaml:"first"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("size") {
		cfg.Batch.Size = batchSize
	}
	if cmd.Flags().Changed("seed") {
		cfg.Batch.Seed = batchSeed
	}
	if batchCount <= 0 {
		return fmt.Errorf("--count must be positive, got %d", batchCount)
	}

	store, err := cfg.BlobStore(ctx)
	if err != nil {
		return err
	}
	c, err := corpus.Load(ctx, store, batchName)
	if err != nil {
		return err
	}
	extractor, closeCache, err := cfg.Extractor(logger)
	if err != nil {
		return err
	}
	defer closeCache()
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	cur, err := dataset.New(c, dataset.Config{
		Extractor: extractor,
		Codec:     codec,
		Pad:       cfg.Pad,
		Workers:   cfg.Batch.Workers,
		Seed:      cfg.Batch.Seed,
	})
	if err != nil {
		return err
	}

	header(cmd.ErrOrStderr(), "batches", fmt.Sprintf("%s size=%d", batchName, cfg.Batch.Size))
	lines := make([]batchLine, 0, batchCount)
	for i := 0; i < batchCount; i++ {
		b, err := cur.NextBatch(ctx, cfg.Batch.Size)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		texts, err := codec.DecodeSparse(b.Labels)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		logger.Debug("batch drawn", "batch", i+1, "shape", b.Features.Shape())
		lines = append(lines, batchLine{
			Batch:           i + 1,
			Shape:           b.Features.Shape(),
			Lengths:         b.Lengths,
			LabelShape:      b.Labels.Shape,
			IndexInEpoch:    cur.IndexInEpoch(),
			EpochsCompleted: cur.EpochsCompleted(),
			First:           texts[0],
		})
	}
	return output(cmd.OutOrStdout(), lines)
}
