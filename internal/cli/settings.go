package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/config"
	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/ports/adapters/logger"
)

// loadConfig layers flags over the config file and environment, then applies
// the selected profile and prompt preset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("profile", &cfg.SelectedProfile)
	if err := cfg.ApplyProfile(""); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	str("region", &cfg.Region)
	num("sample-ms", &cfg.SampleIntervalMs)
	num("min-duration-ms", &cfg.MinDurationMs)
	num("max-image-width", &cfg.MaxImageWidth)
	str("engine", &cfg.Engine)
	str("endpoint", &cfg.Endpoint)
	str("api-path", &cfg.APIPath)
	str("model", &cfg.Model)
	str("prompt", &cfg.Prompt)
	str("prompt-preset", &cfg.PromptPreset)
	num("timeout", &cfg.TimeoutSec)
	str("out", &cfg.Output)
	str("metrics-addr", &cfg.MetricsAddr)
	str("database-url", &cfg.DatabaseURL)
	str("ffmpeg", &cfg.FFmpegPath)
	str("ffprobe", &cfg.FFprobePath)

	// An explicit --prompt wins over a preset named in the file.
	if flags.Lookup("prompt") != nil && flags.Changed("prompt") && !flags.Changed("prompt-preset") {
		cfg.PromptPreset = ""
	}
	if err := cfg.ApplyPreset(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (ports.Logger, func(), error) {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop(), func() {}, nil
	}
	if cfg.LogFormat == config.LogFormatJSON {
		z, err := logger.NewZap(level)
		if err != nil {
			return nil, nil, err
		}
		return z, func() { _ = z.Sync() }, nil
	}
	return logger.NewConsole(level), func() {}, nil
}
