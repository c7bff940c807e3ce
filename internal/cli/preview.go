package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/ideamans/go-l10n"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subextract/internal/config"
	"github.com/forPelevin/subextract/internal/domain/roi"
	"github.com/forPelevin/subextract/internal/pipeline"
	"github.com/forPelevin/subextract/internal/types"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "preview <video>",
		Short:        l10n.T("Save one frame with the crop region outlined"),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0])
		},
	}
	cmd.Flags().String("at", "0", "Position: milliseconds (1500, 1500ms) or frame index (37f)")
	cmd.Flags().String("region", "", "Crop region x,y,w,h in source pixels")
	cmd.Flags().String("out", "preview.png", "Output PNG")
	cmd.Flags().Bool("crop", false, "Save only the region as sent to the recognizer")
	cmd.Flags().Int("max-image-width", 0, "Downscale the crop like extraction does")
	return cmd
}

func runPreview(cmd *cobra.Command, input string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	region, err := config.ParseRegion(cfg.Region)
	if err != nil {
		return err
	}
	at, _ := cmd.Flags().GetString("at")
	out, _ := cmd.Flags().GetString("out")
	cropOnly, _ := cmd.Flags().GetBool("crop")

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	stream, err := pipeline.Frames(cfg.FFmpegPath, cfg.FFprobePath).Open(ctx, input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer stream.Close()

	info := stream.Info()
	index, err := parsePosition(at, info.EffectiveFPS())
	if err != nil {
		return err
	}
	if info.TotalFrames > 0 && index >= info.TotalFrames {
		index = info.TotalFrames - 1
	}
	stream.SetStride(1)
	if err := stream.Seek(ctx, index); err != nil {
		return err
	}
	frame, err := stream.Next(ctx)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("no frame at %s", at)
	}
	if err != nil {
		return err
	}

	if cropOnly {
		img := roi.Fit(roi.Crop(frame.Image, region), cfg.MaxImageWidth)
		if err := gg.SavePNG(out, img); err != nil {
			return err
		}
	} else {
		dc := gg.NewContextForImage(frame.Image)
		if region != nil {
			b := frame.Image.Bounds()
			r := roi.Clamp(*region, b.Dx(), b.Dy())
			dc.SetRGB(1, 0.2, 0.2)
			dc.SetLineWidth(3)
			dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
			dc.Stroke()
		}
		if err := dc.SavePNG(out); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), l10n.F("Frame %d (%d ms) saved to %s", frame.Index, types.TimestampMs(frame.Index, info.EffectiveFPS()), out))
	return nil
}

// parsePosition turns "1500", "1500ms" or "37f" into a frame index.
func parsePosition(s string, fps float64) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}
	if n, ok := strings.CutSuffix(s, "f"); ok {
		idx, err := strconv.Atoi(n)
		if err != nil || idx < 0 {
			return 0, fmt.Errorf("invalid frame index %q", s)
		}
		return idx, nil
	}
	s = strings.TrimSuffix(s, "ms")
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	if fps <= 0 {
		fps = types.DefaultFPS
	}
	return int(math.Round(float64(ms) * fps / 1000)), nil
}
