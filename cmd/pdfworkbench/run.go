package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Lllllllleong/pdfworkbench/internal/download"
	"github.com/Lllllllleong/pdfworkbench/internal/intake"
	"github.com/Lllllllleong/pdfworkbench/internal/models"
	"github.com/Lllllllleong/pdfworkbench/internal/services"
)

func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func newWorkbench() *services.Workbench {
	return services.NewDefault(services.Options{
		Workers:       cfg.Workers,
		RenderScale:   cfg.RenderScale,
		RasterFormat:  cfg.RenderFormat,
		JPEGQuality:   cfg.JPEGQuality,
		PageSeparator: cfg.PageSeparator,
	}, slog.Default())
}

// gather runs intake over the command arguments and prints the summary.
// It fails when nothing was accepted.
func gather(cmd *cobra.Command, paths []string, policy intake.Policy) ([]models.UploadedFile, error) {
	out := cmd.OutOrStdout()
	var raws []intake.RawFile
	var missing int
	for _, p := range paths {
		raw, err := intake.DescribeLocal(p)
		if err != nil {
			fmt.Fprintln(out, "skipped:", err)
			missing++
			continue
		}
		raws = append(raws, raw)
	}

	res := intake.Accept(raws, policy)
	for _, r := range res.Rejected {
		fmt.Fprintln(out, "rejected:", models.Notification(r.Err))
	}
	fmt.Fprintln(out, res.Summary())
	slog.Info("Intake complete.", "tool", policy.Tool, "accepted", len(res.Accepted),
		"rejected", len(res.Rejected), "missing", missing)

	if len(res.Accepted) == 0 {
		if len(res.Rejected) > 0 {
			return nil, res.Rejected[0].Err
		}
		return nil, models.NewOpError(models.ErrInsufficientInput, policy.Tool, "", "No files to process", nil)
	}
	return res.Accepted, nil
}

// deliver saves results to the configured target with a progress bar.
func deliver(ctx context.Context, cmd *cobra.Command, results []*models.ConversionResult) error {
	if len(results) == 0 {
		return nil
	}
	sink, err := download.ParseTarget(ctx, cfg.OutputTarget)
	if err != nil {
		return err
	}
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}

	bar := pb.New(len(results)).
		SetTemplateString(`{{ bar . " " "━" "━" " " " "}} {{counters .}} {{percent .}}`).
		SetWriter(cmd.ErrOrStderr()).
		Start()
	p := download.NewPackager(sink, cfg.DownloadDelay)
	p.OnDelivered = func(download.Handle) { bar.Increment() }

	handles, err := p.DownloadAll(ctx, results)
	bar.Finish()

	out := cmd.OutOrStdout()
	for _, h := range handles {
		if h.Skipped {
			fmt.Fprintf(out, "exists:  %s (%s)\n", h.Location, download.FormatSize(h.Size))
			continue
		}
		fmt.Fprintf(out, "saved:   %s (%s)\n", h.Location, download.FormatSize(h.Size))
	}
	if err != nil {
		return fmt.Errorf("delivered %d of %d files: %w", len(handles), len(results), err)
	}
	return nil
}
