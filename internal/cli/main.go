package cli

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("error: %s", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "subextract <video>",
		Short:        l10n.T("Extract burned-in subtitles from a video"),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "debug, info, warn, error or quiet")
	root.PersistentFlags().String("log-format", "", "console or json")

	f := root.Flags()
	f.String("out", "", "Output path without extension (default: next to the video)")
	f.String("report", "", "Write the run report as JSON to this file")
	f.String("region", "", "Crop region x,y,w,h in source pixels")
	f.Int("sample-ms", 0, "Sampling interval in milliseconds")
	f.Int("min-duration-ms", 0, "Minimum subtitle duration in milliseconds")
	f.Int("max-image-width", 0, "Downscale crops wider than this before recognition")
	f.String("engine", "", "Recognition engine: openai or dummy")
	f.String("endpoint", "", "Recognizer base URL")
	f.String("api-path", "", "Recognizer API path")
	f.String("model", "", "Recognizer model")
	f.String("prompt", "", "Recognition prompt")
	f.String("prompt-preset", "", "Built-in prompt: default, strict or json_format")
	f.String("profile", "", "Recognizer profile from the config file")
	f.Int("timeout", 0, "Recognizer call timeout in seconds")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	f.String("database-url", "", "Record job history in this PostgreSQL database")

	// Hidden tuning flags (internal)
	f.String("ffmpeg", "", "ffmpeg binary")
	f.String("ffprobe", "", "ffprobe binary")
	_ = f.MarkHidden("ffmpeg")
	_ = f.MarkHidden("ffprobe")

	root.AddCommand(newProbeCmd(), newPreviewCmd(), newJobsCmd(), newProfilesCmd())
	return root
}
