package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/pipeline"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "probe <video>",
		Short:        l10n.T("Print frame rate, frame count, size and duration"),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			info, err := pipeline.Frames(cfg.FFmpegPath, cfg.FFprobePath).Probe(ctx, args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s:\t%s\n", l10n.T("Video"), info.Path)
			fmt.Fprintf(tw, "%s:\t%dx%d\n", l10n.T("Size"), info.Width, info.Height)
			if info.FPS > 0 {
				fmt.Fprintf(tw, "%s:\t%.3f\n", l10n.T("Frame rate"), info.FPS)
			} else {
				fmt.Fprintf(tw, "%s:\t%.3f (%s)\n", l10n.T("Frame rate"), info.EffectiveFPS(), l10n.T("assumed"))
			}
			fmt.Fprintf(tw, "%s:\t%d\n", l10n.T("Frames"), info.TotalFrames)
			fmt.Fprintf(tw, "%s:\t%s\n", l10n.T("Duration"), info.Duration().Round(time.Millisecond))
			return tw.Flush()
		},
	}
}
