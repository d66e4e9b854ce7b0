package pdfengine

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// MuPDF implements Rasterizer with go-fitz.
type MuPDF struct{}

func (MuPDF) Render(ctx context.Context, data []byte, dpi float64, fn PageFunc) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, &LoadError{Err: err}
	}
	defer doc.Close()

	n := doc.NumPage()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return i, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		if err := fn(i, img); err != nil {
			return i, err
		}
	}
	return n, nil
}
