package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/forPelevin/subextract/internal/types"
)

const reportTimeLayout = "2006-01-02 15:04:05"

func printReport(w io.Writer, r types.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label string, value any) {
		fmt.Fprintf(tw, "%s:\t%v\n", l10n.T(label), value)
	}

	row("Status", l10n.T(string(r.Status)))
	row("Job", r.JobID)
	row("Video", r.Video)
	row("Started", r.StartedAt.Format(reportTimeLayout))
	if !r.FinishedAt.IsZero() {
		row("Finished", r.FinishedAt.Format(reportTimeLayout))
	}
	row("Elapsed", r.Elapsed.Round(10*time.Millisecond))
	row("Frames", fmt.Sprintf("%d / %d", r.FramesProcessed, r.TotalFrames))
	if r.Region != nil {
		row("Region", fmt.Sprintf("%d,%d %dx%d", r.Region.X, r.Region.Y, r.Region.Width, r.Region.Height))
	} else {
		row("Region", l10n.T("full frame"))
	}
	row("Sample interval", fmt.Sprintf("%d ms", r.SampleIntervalMs))
	row("Min duration", fmt.Sprintf("%d ms", r.MinDurationMs))
	row("Entries", len(r.Entries))
	row("Model", r.Model)
	if r.Endpoint != "" {
		row("Endpoint", r.Endpoint)
	}
	if len(r.OutputPaths) > 0 {
		row("Output", strings.Join(r.OutputPaths, ", "))
	} else if r.Status != types.StatusErrored {
		row("Output", l10n.T("nothing written (no subtitles found)"))
	}
	if r.WriteErr != nil {
		row("Write error", r.WriteErr)
	}
	if r.Err != nil {
		row("Error", r.Err)
	}
	_ = tw.Flush()
}
