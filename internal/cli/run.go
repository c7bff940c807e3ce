package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/config"
	"github.com/forPelevin/subextract/internal/metrics"
	"github.com/forPelevin/subextract/internal/pipeline"
	"github.com/forPelevin/subextract/internal/ports"
	"github.com/forPelevin/subextract/internal/store"
	"github.com/forPelevin/subextract/internal/types"
)

func runExtract(cmd *cobra.Command, input string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	region, err := config.ParseRegion(cfg.Region)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	reportPath, _ := cmd.Flags().GetString("report")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	log, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, writing partial results...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, cfg.MetricsAddr, log.WithComponent("metrics"))
	}

	var recorder ports.JobRecorder
	if cfg.DatabaseURL != "" {
		st, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer st.Close(context.Background())
		recorder = st
	}

	pcfg := pipeline.Config{
		Video:            absIn,
		Output:           cfg.Output,
		ReportPath:       reportPath,
		Region:           region,
		SampleIntervalMs: cfg.SampleIntervalMs,
		MinDurationMs:    cfg.MinDurationMs,
		MaxImageWidth:    cfg.MaxImageWidth,
		Engine:           cfg.Engine,
		Endpoint:         cfg.Endpoint,
		APIPath:          cfg.APIPath,
		APIKey:           cfg.APIKey,
		Model:            cfg.Model,
		Prompt:           cfg.Prompt,
		SystemPrompt:     cfg.SystemPrompt,
		Timeout:          cfg.Timeout(),
		AllowedHosts:     cfg.AllowedHosts,
		FFmpegPath:       cfg.FFmpegPath,
		FFprobePath:      cfg.FFprobePath,
		Logger:           log,
		Recorder:         recorder,
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	bar := newProgress(ports.ParseLogLevel(cfg.LogLevel))
	if bar != nil {
		pcfg.OnProgress = func(s types.Snapshot) { _ = bar.Set(s.Progress) }
	}

	rep, err := pipeline.Run(ctx, pcfg)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if rep.JobID != "" {
		printReport(cmd.OutOrStdout(), rep)
	}
	if err != nil {
		return err
	}
	if rep.WriteErr != nil {
		return rep.WriteErr
	}
	return nil
}

// newProgress returns a percentage bar on interactive terminals only.
func newProgress(level ports.LogLevel) *progressbar.ProgressBar {
	fd := os.Stderr.Fd()
	if level == ports.LevelQuiet || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return nil
	}
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription(l10n.T("Extracting subtitles")),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}
