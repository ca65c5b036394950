package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/pkg/featcache"
	"github.com/haivivi/speechbatch/pkg/features"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the feature cache",
	Long: `Inspect or purge the on-disk feature cache (cache.dir in the config).

Entries are grouped by a fingerprint of the feature configuration;
these commands act on the fingerprint of the current configuration.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached entries for the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store featcache.Store, fp string) error {
			n, err := store.Count(cmd.Context(), fp)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), map[string]any{"fingerprint": fp, "entries": n})
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cached entries for the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store featcache.Store, fp string) error {
			if err := store.Purge(cmd.Context(), fp); err != nil {
				return err
			}
			logger.Info("feature cache purged", "fingerprint", fp)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func withCache(cmd *cobra.Command, fn func(store featcache.Store, fingerprint string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.Dir == "" {
		return fmt.Errorf("no cache.dir configured")
	}
	e, err := features.New(cfg.ExtractorConfig())
	if err != nil {
		return err
	}
	store, err := featcache.NewBadger(featcache.BadgerOptions{Dir: cfg.Cache.Dir, Logger: logger})
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store, e.Fingerprint())
}
