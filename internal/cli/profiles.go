package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/config"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "profiles",
		Short:        l10n.T("List recognizer profiles and prompt presets"),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

			fmt.Fprintln(tw, l10n.T("Profiles")+":")
			if len(cfg.Profiles) == 0 {
				fmt.Fprintln(tw, "  -")
			}
			for _, p := range cfg.Profiles {
				mark := " "
				if p.Name == cfg.SelectedProfile {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\n", mark, p.Name, p.Model, p.Endpoint, p.Group, p.Note)
			}

			fmt.Fprintln(tw, l10n.T("Prompt presets")+":")
			for _, name := range config.PresetNames() {
				text, _ := config.Preset(name)
				fmt.Fprintf(tw, "  %s\t%s\n", name, text)
			}
			return tw.Flush()
		},
	}
}
