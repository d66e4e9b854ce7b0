// Package pdfengine adapts the third-party PDF libraries to the small surface
// the tools need: load/count, page copy, rotation, optimisation, image
// embedding, rasterisation and text extraction.
package pdfengine

import (
	"context"
	"fmt"
	"image"
)

// Engine manipulates whole documents held in memory. Page numbers are 1-based.
type Engine interface {
	// PageCount loads data and returns its page count. A document that cannot
	// be loaded yields a *LoadError.
	PageCount(ctx context.Context, data []byte) (int, error)
	// Merge concatenates docs in order into one document.
	Merge(ctx context.Context, docs [][]byte) ([]byte, error)
	// ExtractPages returns a new document holding pages first..last.
	ExtractPages(ctx context.Context, data []byte, first, last int) ([]byte, error)
	// Rotate turns every page clockwise by degrees, a multiple of 90.
	Rotate(ctx context.Context, data []byte, degrees int) ([]byte, error)
	// Optimize re-serialises data with stream and object optimisations.
	Optimize(ctx context.Context, data []byte) ([]byte, error)
	// ImagesToPDF embeds each image on its own A4 page, scaled to fit and centred.
	ImagesToPDF(ctx context.Context, images [][]byte) ([]byte, error)
}

// PageFunc receives one rendered page; pageIndex is 0-based.
type PageFunc func(pageIndex int, img image.Image) error

// Rasterizer renders pages to bitmaps.
type Rasterizer interface {
	// Render calls fn for every page in order, rendered at dpi.
	Render(ctx context.Context, data []byte, dpi float64, fn PageFunc) (int, error)
}

// TextExtractor pulls plain text out of a document, one entry per page.
type TextExtractor interface {
	PageTexts(ctx context.Context, data []byte) ([]string, error)
}

// LoadError means the library could not open the document at all
// (not a PDF, truncated, encrypted).
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load document: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
