package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// NormalizeRotation maps any multiple of 90 onto 0, 90, 180 or 270.
func NormalizeRotation(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, models.NewOpError(models.ErrInvalidParameter, "rotate", "",
			fmt.Sprintf("Rotation must be a multiple of 90 degrees, got %d", degrees), nil)
	}
	return ((degrees % 360) + 360) % 360, nil
}

func requireFiles(op string, files []models.UploadedFile) error {
	if len(files) == 0 {
		return models.NewOpError(models.ErrInsufficientInput, op, "", "Please add at least one file", nil)
	}
	return nil
}

// Rotate turns every page of every file clockwise by degrees. A rotation that
// normalises to 0 re-emits each input unchanged once it has loaded.
func (w *Workbench) Rotate(ctx context.Context, files []models.UploadedFile, degrees int) ([]models.TransformResult, error) {
	const op = "rotate"
	deg, err := NormalizeRotation(degrees)
	if err != nil {
		return nil, err
	}
	if err := requireFiles(op, files); err != nil {
		return nil, err
	}
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	logCtx := w.log.With("op", op, "fileCount", len(files), "degrees", deg)
	logCtx.Info("Starting rotation.")
	results, err := w.batch(ctx, files, func(ctx context.Context, _ int, f models.UploadedFile) (models.TransformResult, error) {
		data, pageCount, err := w.load(ctx, op, f)
		if err != nil {
			return models.TransformResult{}, err
		}
		out := data
		if deg != 0 {
			if out, err = w.engine.Rotate(ctx, data, deg); err != nil {
				return models.TransformResult{}, classify(op, f.Name, err)
			}
			n, err := w.engine.PageCount(ctx, out)
			if err != nil {
				return models.TransformResult{}, models.NewOpError(models.ErrOperationFailed, op, f.Name, "", err)
			}
			if n != pageCount {
				return models.TransformResult{}, models.NewOpError(models.ErrOperationFailed, op, f.Name, "",
					fmt.Errorf("rotated document has %d pages, want %d", n, pageCount))
			}
		}
		logCtx.Info("Rotated document.", "file", f.Name, "pageCount", pageCount)
		return models.TransformResult{
			Kind:       models.TransformRotate,
			Source:     f.Name,
			Outputs:    []models.ConversionResult{{Name: "rotated-" + f.Name, Data: out, MIMEType: models.MIMEPDF}},
			InputSize:  int64(len(data)),
			OutputSize: int64(len(out)),
		}, nil
	})
	if err != nil {
		logCtx.Error("Rotation failed.", "error", err)
		return nil, err
	}
	logCtx.Info("Rotation complete.")
	return results, nil
}

// Compress re-encodes every file with stream and object optimisations and
// reports the size change. An output no smaller than its input is still
// returned; the caller decides how to present it.
func (w *Workbench) Compress(ctx context.Context, files []models.UploadedFile) ([]models.TransformResult, error) {
	const op = "compress"
	if err := requireFiles(op, files); err != nil {
		return nil, err
	}
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	logCtx := w.log.With("op", op, "fileCount", len(files))
	logCtx.Info("Starting compression.")
	results, err := w.batch(ctx, files, func(ctx context.Context, _ int, f models.UploadedFile) (models.TransformResult, error) {
		data, _, err := w.load(ctx, op, f)
		if err != nil {
			return models.TransformResult{}, err
		}
		out, err := w.engine.Optimize(ctx, data)
		if err != nil {
			return models.TransformResult{}, classify(op, f.Name, err)
		}
		res := models.TransformResult{
			Kind:       models.TransformCompress,
			Source:     f.Name,
			Outputs:    []models.ConversionResult{{Name: "compressed-" + f.Name, Data: out, MIMEType: models.MIMEPDF}},
			InputSize:  int64(len(data)),
			OutputSize: int64(len(out)),
		}
		if res.SizeDelta() <= 0 {
			logCtx.Info("Output is not smaller than input.", "file", f.Name, "inputBytes", res.InputSize, "outputBytes", res.OutputSize)
		} else {
			logCtx.Info("Compressed document.", "file", f.Name, "inputBytes", res.InputSize,
				"outputBytes", res.OutputSize, "reductionPercent", fmt.Sprintf("%.1f", res.ReductionPercent()))
		}
		return res, nil
	})
	if err != nil {
		logCtx.Error("Compression failed.", "error", err)
		return nil, err
	}
	logCtx.Info("Compression complete.")
	return results, nil
}
