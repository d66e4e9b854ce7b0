package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

const invalidRangesMessage = "Invalid page ranges. Use format like: 1-3, 5, 7-9"

// SplitRequest describes one split. In SplitRanges mode PageRanges wins over
// Ranges when both are set.
type SplitRequest struct {
	File       models.UploadedFile
	Mode       models.SplitMode
	Ranges     string
	PageRanges []models.PageRange
}

// Split extracts pages of one document into new documents. A failure to
// produce one output is recorded on that output and does not stop the
// others. Once ranges are resolved, Split fails as a whole only when no
// output could be produced or ctx is cancelled.
func (w *Workbench) Split(ctx context.Context, req SplitRequest) (*models.SplitResult, error) {
	const op = "split"
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	logCtx := w.log.With("op", op, "file", req.File.Name, "mode", req.Mode.String())
	logCtx.Info("Starting split.")

	data, pageCount, err := w.load(ctx, op, req.File)
	if err != nil {
		logCtx.Error("Failed to load source PDF.", "error", err)
		return nil, err
	}

	ranges, err := resolveRanges(req, pageCount)
	if err != nil {
		logCtx.Warn("Rejected split request.", "ranges", req.Ranges, "pageCount", pageCount)
		return nil, err
	}
	logCtx.Info("Resolved page ranges.", "pageCount", pageCount, "outputCount", len(ranges))

	base := stem(req.File.Name)
	outputs := make([]models.SplitOutput, len(ranges))
	var eg errgroup.Group
	eg.SetLimit(w.opts.Workers)
	for i, r := range ranges {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outputs[i] = w.extractRange(ctx, op, req.File.Name, base, data, r)
			return ctx.Err()
		})
	}
	// Per-output failures live on outputs; only cancellation reaches Wait.
	if err := eg.Wait(); err != nil {
		logCtx.Warn("Split cancelled.", "error", err)
		return nil, classify(op, req.File.Name, err)
	}

	res := &models.SplitResult{Source: req.File.Name, Mode: req.Mode, Outputs: outputs}
	failed := res.Failed()
	for _, o := range failed {
		logCtx.Error("Failed to extract pages.", "range", o.Range.String(), "error", o.Err)
	}
	if len(failed) == len(outputs) {
		return nil, models.NewOpError(models.ErrOperationFailed, op, req.File.Name,
			"no pages could be extracted", failed[0].Err)
	}
	logCtx.Info("Split complete.", "succeeded", len(outputs)-len(failed), "failed", len(failed))
	return res, nil
}

func resolveRanges(req SplitRequest, pageCount int) ([]models.PageRange, error) {
	const op = "split"
	switch req.Mode {
	case models.SplitIndividual:
		if pageCount == 0 {
			return nil, models.NewOpError(models.ErrCorruptInput, op, req.File.Name, "has no pages", nil)
		}
		ranges := make([]models.PageRange, pageCount)
		for p := 1; p <= pageCount; p++ {
			ranges[p-1] = models.SinglePage(p)
		}
		return ranges, nil
	case models.SplitRanges:
		var ranges []models.PageRange
		if len(req.PageRanges) > 0 {
			for _, r := range req.PageRanges {
				if r.Within(pageCount) {
					ranges = append(ranges, r)
				}
			}
		} else {
			if strings.TrimSpace(req.Ranges) == "" {
				return nil, models.NewOpError(models.ErrInvalidRange, op, req.File.Name, "Please enter page ranges", nil)
			}
			ranges = ParseRanges(req.Ranges, pageCount)
		}
		if len(ranges) == 0 {
			return nil, models.NewOpError(models.ErrInvalidRange, op, "", invalidRangesMessage, nil)
		}
		return ranges, nil
	default:
		return nil, models.NewOpError(models.ErrInvalidParameter, op, "", fmt.Sprintf("unknown split mode %d", req.Mode), nil)
	}
}

func (w *Workbench) extractRange(ctx context.Context, op, source, base string, data []byte, r models.PageRange) models.SplitOutput {
	out, err := w.engine.ExtractPages(ctx, data, r.Start, r.End)
	if err != nil {
		return models.SplitOutput{Range: r, Err: classify(op, source, fmt.Errorf("pages %s: %w", r, err))}
	}
	return models.SplitOutput{
		Range:  r,
		Result: &models.ConversionResult{Name: splitOutputName(base, r), Data: out, MIMEType: models.MIMEPDF},
	}
}

// splitOutputName: report_page_3.pdf for one page, report_pages_2-5.pdf otherwise.
func splitOutputName(base string, r models.PageRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("%s_page_%d.pdf", base, r.Start)
	}
	return fmt.Sprintf("%s_pages_%d-%d.pdf", base, r.Start, r.End)
}
