package services

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// CombinedImagesName is the output name when all images go into one document.
const CombinedImagesName = "images.pdf"

// ImageOptions controls image-to-PDF conversion.
type ImageOptions struct {
	// Combine puts every image, in order, into a single document instead of
	// one document per image.
	Combine bool
}

// ImagesToPDF places each JPEG or PNG on its own A4 page, scaled to fit and
// centred.
func (w *Workbench) ImagesToPDF(ctx context.Context, files []models.UploadedFile, opts ImageOptions) ([]models.TransformResult, error) {
	const op = "from-images"
	if err := requireFiles(op, files); err != nil {
		return nil, err
	}
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	logCtx := w.log.With("op", op, "fileCount", len(files), "combine", opts.Combine)
	logCtx.Info("Starting image conversion.")

	var results []models.TransformResult
	if opts.Combine {
		results, err = w.combineImages(ctx, op, files)
	} else {
		results, err = w.batch(ctx, files, func(ctx context.Context, _ int, f models.UploadedFile) (models.TransformResult, error) {
			img, err := w.loadImage(op, f)
			if err != nil {
				return models.TransformResult{}, err
			}
			out, err := w.engine.ImagesToPDF(ctx, [][]byte{img})
			if err != nil {
				return models.TransformResult{}, classify(op, f.Name, err)
			}
			return models.TransformResult{
				Kind:       models.TransformImageToPDF,
				Source:     f.Name,
				Outputs:    []models.ConversionResult{{Name: stem(f.Name) + ".pdf", Data: out, MIMEType: models.MIMEPDF}},
				InputSize:  int64(len(img)),
				OutputSize: int64(len(out)),
			}, nil
		})
	}
	if err != nil {
		logCtx.Error("Image conversion failed.", "error", err)
		return nil, err
	}
	logCtx.Info("Image conversion complete.")
	return results, nil
}

func (w *Workbench) combineImages(ctx context.Context, op string, files []models.UploadedFile) ([]models.TransformResult, error) {
	imgs := make([][]byte, len(files))
	var size int64
	for i, f := range files {
		img, err := w.loadImage(op, f)
		if err != nil {
			return nil, err
		}
		imgs[i] = img
		size += int64(len(img))
	}
	out, err := w.engine.ImagesToPDF(ctx, imgs)
	if err != nil {
		return nil, classify(op, "", err)
	}
	return []models.TransformResult{{
		Kind:       models.TransformImageToPDF,
		Source:     fmt.Sprintf("%d images", len(files)),
		Outputs:    []models.ConversionResult{{Name: CombinedImagesName, Data: out, MIMEType: models.MIMEPDF}},
		InputSize:  size,
		OutputSize: int64(len(out)),
	}}, nil
}

// loadImage reads f and checks that it decodes as a supported image.
func (w *Workbench) loadImage(op string, f models.UploadedFile) ([]byte, error) {
	data, err := w.read(op, f)
	if err != nil {
		return nil, err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, models.NewOpError(models.ErrCorruptInput, op, f.Name, "is not a readable JPEG or PNG image", err)
	}
	return data, nil
}
