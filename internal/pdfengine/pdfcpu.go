package pdfengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// imageImportDetails puts each image on an A4 page, scaled to fit and centred.
const imageImportDetails = "form:A4, pos:c, sc:1.0"

var disableConfigDir sync.Once

// PDFCPU implements Engine on top of pdfcpu.
type PDFCPU struct{}

// NewPDFCPU returns the pdfcpu engine. pdfcpu's on-disk configuration
// directory is disabled so the built-in defaults apply.
func NewPDFCPU() *PDFCPU {
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFCPU{}
}

// newConfiguration returns a fresh configuration per call: pdfcpu writes the
// current command into it, so it cannot be shared between goroutines.
func newConfiguration() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

func (e *PDFCPU) PageCount(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCount(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return 0, &LoadError{Err: err}
	}
	return n, nil
}

func (e *PDFCPU) Merge(ctx context.Context, docs [][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rsc := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		rsc[i] = bytes.NewReader(d)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(rsc, &buf, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge %d documents: %w", len(docs), err)
	}
	return buf.Bytes(), nil
}

func (e *PDFCPU) ExtractPages(ctx context.Context, data []byte, first, last int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid page span %d-%d", first, last)
	}
	selection := strconv.Itoa(first)
	if last != first {
		selection = fmt.Sprintf("%d-%d", first, last)
	}
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &buf, []string{selection}, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract pages %s: %w", selection, err)
	}
	return buf.Bytes(), nil
}

func (e *PDFCPU) Rotate(ctx context.Context, data []byte, degrees int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if degrees%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90, got %d", degrees)
	}
	var buf bytes.Buffer
	if err := api.Rotate(bytes.NewReader(data), &buf, degrees, nil, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to rotate by %d: %w", degrees, err)
	}
	return buf.Bytes(), nil
}

func (e *PDFCPU) Optimize(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to optimize: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFCPU) ImagesToPDF(ctx context.Context, images [][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to embed")
	}
	imp, err := api.Import(imageImportDetails, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse import details: %w", err)
	}
	readers := make([]io.Reader, len(images))
	for i, img := range images {
		readers[i] = bytes.NewReader(img)
	}
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, imp, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to embed %d images: %w", len(images), err)
	}
	return buf.Bytes(), nil
}
