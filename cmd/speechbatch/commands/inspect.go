package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/speechbatch/pkg/corpus"
)

var inspectName string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a saved corpus",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectName, "name", "", "corpus name (required)")
	inspectCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(inspectCmd)
}

type rangeStat struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (r *rangeStat) add(v int, first bool) {
	if first || v < r.Min {
		r.Min = v
	}
	if first || v > r.Max {
		r.Max = v
	}
}

type inspectResult struct {
	Name       string     `json:"name" yaml:"name"`
	Utterances int        `json:"utterances" yaml:"utterances"`
	Resolved   int        `json:"resolved" yaml:"resolved"`
	Width      int        `json:"width,omitempty" yaml:"width,omitempty"`
	Frames     *rangeStat `json:"frames,omitempty" yaml:"frames,omitempty"`
	LabelLen   *rangeStat `json:"label_length,omitempty" yaml:"label_length,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := cfg.BlobStore(ctx)
	if err != nil {
		return err
	}
	c, err := corpus.Load(ctx, store, inspectName)
	if err != nil {
		return err
	}
	header(cmd.ErrOrStderr(), "corpus", inspectName)
	return output(cmd.OutOrStdout(), summarize(inspectName, c))
}

func summarize(name string, c *corpus.Corpus) inspectResult {
	res := inspectResult{Name: name, Utterances: c.Len()}
	var frames, lens rangeStat
	for i := range c.Audios {
		a, l := c.Audios[i], c.Labels[i]
		if !a.Resolved() || !l.Resolved() {
			continue
		}
		first := res.Resolved == 0
		if first && len(a.Features) > 0 {
			res.Width = len(a.Features[0])
		}
		frames.add(len(a.Features), first)
		lens.add(len(l.Indices), first)
		res.Resolved++
	}
	if res.Resolved > 0 {
		res.Frames, res.LabelLen = &frames, &lens
	}
	return res
}
