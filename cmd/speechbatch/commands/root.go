package commands

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/cmd/speechbatch/internal/config"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	formatOutput string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "speechbatch",
	Short: "Prepare speech corpora for CTC training",
	Long: `speechbatch - build, inspect and batch speech corpora.

A corpus pairs audio files with transcripts. 'build' extracts MFCC
features and encodes transcripts, then saves the corpus as two blobs
(<name>_audios and <name>_labeles) in the configured store. 'batch'
replays the epoch/batch cursor a trainer would use.

Configuration is read from speechbatch.yaml in the working directory,
or from the file given with -c. Without a file, defaults are used.

Examples:
  speechbatch build ./data/train --name train
  speechbatch build ./LibriSpeech/dev-clean --name dev --librispeech
  speechbatch inspect --name train
  speechbatch batch --name train --size 8 --count 3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
		logger = slog.New(h).With("run_id", uuid.NewString())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./speechbatch.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&formatOutput, "format", "f", "yaml", "output format: yaml or json")
}

const defaultConfigFile = "speechbatch.yaml"

// loadConfig reads the configuration named by -c, falling back to
// ./speechbatch.yaml and then to the built-in defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults")
			return config.Default(), nil
		}
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "path", path)
	return cfg, nil
}
