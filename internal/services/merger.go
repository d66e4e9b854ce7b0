package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/Lllllllleong/pdfworkbench/internal/collection"
	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// MergedFileName is the name of every merge output.
const MergedFileName = "merged.pdf"

// Merge concatenates the collection in its current order. The order is
// captured when Merge is called; later reorders do not affect this run.
func (w *Workbench) Merge(ctx context.Context, c *collection.Collection) (*models.MergeResult, error) {
	return w.MergeFiles(ctx, c.Snapshot())
}

// MergeFiles concatenates files in order. Fewer than two files is rejected
// before anything is read.
func (w *Workbench) MergeFiles(ctx context.Context, files []models.UploadedFile) (*models.MergeResult, error) {
	const op = "merge"
	if len(files) < 2 {
		return nil, models.NewOpError(models.ErrInsufficientInput, op, "", "Please add at least 2 PDF files to merge", nil)
	}
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	files = slices.Clone(files)
	logCtx := w.log.With("op", op, "fileCount", len(files))
	logCtx.Info("Starting merge.")

	docs := make([][]byte, len(files))
	names := make([]string, len(files))
	total := 0
	for i, f := range files {
		data, n, err := w.load(ctx, op, f)
		if err != nil {
			logCtx.Error("Failed to load input.", "file", f.Name, "position", i, "error", err)
			return nil, err
		}
		logCtx.Info("Appending document.", "file", f.Name, "pageCount", n)
		docs[i], names[i] = data, f.Name
		total += n
	}

	out, err := w.engine.Merge(ctx, docs)
	if err != nil {
		logCtx.Error("Failed to merge documents.", "error", err)
		return nil, classify(op, "", err)
	}
	got, err := w.engine.PageCount(ctx, out)
	if err != nil {
		logCtx.Error("Merged document could not be reopened.", "error", err)
		return nil, models.NewOpError(models.ErrOperationFailed, op, "", "", err)
	}
	if got != total {
		logCtx.Error("Merged page count mismatch.", "want", total, "got", got)
		return nil, models.NewOpError(models.ErrOperationFailed, op, "", "",
			fmt.Errorf("merged document has %d pages, want %d", got, total))
	}

	logCtx.Info("Merge complete.", "pageCount", total, "bytes", len(out))
	return &models.MergeResult{
		Output:    models.ConversionResult{Name: MergedFileName, Data: out, MIMEType: models.MIMEPDF},
		Inputs:    names,
		PageCount: total,
	}, nil
}
