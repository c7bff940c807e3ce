package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/store"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "jobs",
		Short:        l10n.T("List recent extraction jobs"),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("job history needs --database-url or SUBEXTRACT_DATABASE_URL")
			}
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := store.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer st.Close(context.Background())

			jobs, err := st.ListJobs(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l10n.T("Started"), l10n.T("Status"), l10n.T("Frames"), l10n.T("Entries"), l10n.T("Video"), l10n.T("Job"))
			for _, j := range jobs {
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%s\t%s\n",
					j.StartedAt.Local().Format(reportTimeLayout), l10n.T(string(j.Status)),
					j.FramesProcessed, j.TotalFrames, j.EntryCount, j.Video, j.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "Number of jobs to show")
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	return cmd
}
