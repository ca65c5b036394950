package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/pkg/corpus"
	"github.com/haivivi/speechbatch/pkg/dataset"
)

var (
	buildName        string
	buildLibriSpeech bool
	buildRaw         bool
)

var buildCmd = &cobra.Command{
	Use:   "build <dir>",
	Short: "Build a corpus from audio/transcript pairs",
	Long: `Scan a directory for audio/transcript pairs and save the corpus.

By default every x.wav is paired with x.txt. With --librispeech the
directory is read as a LibriSpeech tree (*.trans.txt per chapter, audio
converted to WAV next to it).

Features are extracted and transcripts encoded before saving, so batches
can be drawn without the source files. --raw saves file references
instead and defers the work to batch time.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildName, "name", "", "corpus name (required)")
	buildCmd.Flags().BoolVar(&buildLibriSpeech, "librispeech", false, "read a LibriSpeech directory tree")
	buildCmd.Flags().BoolVar(&buildRaw, "raw", false, "save file references without extracting")
	buildCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(buildCmd)
}

type buildResult struct {
	Name       string `json:"name" yaml:"name"`
	Utterances int    `json:"utterances" yaml:"utterances"`
	Prepared   bool   `json:"prepared" yaml:"prepared"`
	Elapsed    string `json:"elapsed" yaml:"elapsed"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	var c *corpus.Corpus
	if buildLibriSpeech {
		c, err = corpus.ScanLibriSpeech(args[0])
	} else {
		c, err = corpus.ScanDir(args[0])
	}
	if err != nil {
		return err
	}
	if c.Len() == 0 {
		return fmt.Errorf("no utterances found in %s", args[0])
	}
	logger.Info("corpus scanned", "dir", args[0], "utterances", c.Len())

	if !buildRaw {
		extractor, closeCache, err := cfg.Extractor(logger)
		if err != nil {
			return err
		}
		defer closeCache()
		codec, err := cfg.Codec()
		if err != nil {
			return err
		}
		if err := dataset.Prepare(ctx, c, extractor, codec, cfg.Batch.Workers); err != nil {
			return err
		}
		logger.Info("features extracted", "utterances", c.Len(), "elapsed", time.Since(start))
	}

	store, err := cfg.BlobStore(ctx)
	if err != nil {
		return err
	}
	if err := corpus.Save(ctx, store, buildName, c); err != nil {
		return err
	}
	logger.Info("corpus saved", "name", buildName)

	header(cmd.ErrOrStderr(), "built", buildName)
	return output(cmd.OutOrStdout(), buildResult{
		Name:       buildName,
		Utterances: c.Len(),
		Prepared:   !buildRaw,
		Elapsed:    time.Since(start).Round(time.Millisecond).String(),
	})
}
