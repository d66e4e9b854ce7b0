package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// Raster output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// RasterOptions overrides the workbench defaults for one call.
// Zero fields fall back to Options.
type RasterOptions struct {
	Scale   float64
	Format  string
	Quality int
}

type rasterFormat struct {
	ext  string
	mime string
}

func resolveRasterFormat(name string) (rasterFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg", "jpg":
		return rasterFormat{ext: "jpg", mime: models.MIMEJPEG}, nil
	case "png":
		return rasterFormat{ext: "png", mime: models.MIMEPNG}, nil
	default:
		return rasterFormat{}, models.NewOpError(models.ErrInvalidParameter, "to-image", "",
			fmt.Sprintf("Unsupported image format %q, use jpeg or png", name), nil)
	}
}

// Rasterize renders every page of every file to an image, in page order.
func (w *Workbench) Rasterize(ctx context.Context, files []models.UploadedFile, opts RasterOptions) ([]models.TransformResult, error) {
	const op = "to-image"
	if opts.Scale <= 0 {
		opts.Scale = w.opts.RenderScale
	}
	if opts.Format == "" {
		opts.Format = w.opts.RasterFormat
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = w.opts.JPEGQuality
	}
	format, err := resolveRasterFormat(opts.Format)
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

	dpi := opts.Scale * pointsPerInch
	logCtx := w.log.With("op", op, "fileCount", len(files), "dpi", dpi, "format", format.ext)
	logCtx.Info("Starting rasterization.")
	results, err := w.batch(ctx, files, func(ctx context.Context, _ int, f models.UploadedFile) (models.TransformResult, error) {
		data, pageCount, err := w.load(ctx, op, f)
		if err != nil {
			return models.TransformResult{}, err
		}
		base := stem(f.Name)
		res := models.TransformResult{
			Kind:      models.TransformRasterize,
			Source:    f.Name,
			Outputs:   make([]models.ConversionResult, 0, pageCount),
			InputSize: int64(len(data)),
		}
		_, err = w.raster.Render(ctx, data, dpi, func(i int, img image.Image) error {
			encoded, err := encodeImage(img, format, opts.Quality)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			res.Outputs = append(res.Outputs, models.ConversionResult{
				Name:     fmt.Sprintf("%s_page_%d.%s", base, i+1, format.ext),
				Data:     encoded,
				MIMEType: format.mime,
			})
			res.OutputSize += int64(len(encoded))
			return nil
		})
		if err != nil {
			return models.TransformResult{}, classify(op, f.Name, err)
		}
		logCtx.Info("Rendered document.", "file", f.Name, "pages", len(res.Outputs))
		return res, nil
	})
	if err != nil {
		logCtx.Error("Rasterization failed.", "error", err)
		return nil, err
	}
	logCtx.Info("Rasterization complete.")
	return results, nil
}

func encodeImage(img image.Image, format rasterFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format.mime == models.MIMEPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format.ext, err)
	}
	return buf.Bytes(), nil
}
