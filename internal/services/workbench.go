package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
	"github.com/Lllllllleong/pdfworkbench/internal/pdfengine"
)

// Options tunes the workbench. Zero values are replaced by defaults.
type Options struct {
	Workers       int     // per-file / per-page fan-out limit
	RenderScale   float64 // raster scale factor, 1.0 = 72 dpi
	RasterFormat  string  // "jpeg" or "png"
	JPEGQuality   int
	PageSeparator string // between pages in extracted text
}

const (
	defaultRenderScale   = 2.0
	defaultRasterFormat  = FormatJPEG
	defaultJPEGQuality   = 92
	defaultPageSeparator = "\n"
	pointsPerInch        = 72.0
)

func applyDefaultOptions(opts *Options) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.RenderScale <= 0 {
		opts.RenderScale = defaultRenderScale
	}
	if opts.RasterFormat == "" {
		opts.RasterFormat = defaultRasterFormat
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = defaultJPEGQuality
	}
	if opts.PageSeparator == "" {
		opts.PageSeparator = defaultPageSeparator
	}
}

// Workbench runs the tools. It runs one operation at a time; starting a second
// while one is pending fails with models.ErrBusy.
type Workbench struct {
	engine pdfengine.Engine
	raster pdfengine.Rasterizer
	text   pdfengine.TextExtractor
	opts   Options
	log    *slog.Logger
	busy   atomic.Bool
}

// New wires a workbench over the given library adapters.
func New(engine pdfengine.Engine, raster pdfengine.Rasterizer, text pdfengine.TextExtractor, opts Options, log *slog.Logger) *Workbench {
	applyDefaultOptions(&opts)
	if log == nil {
		log = slog.Default()
	}
	return &Workbench{engine: engine, raster: raster, text: text, opts: opts, log: log}
}

// NewDefault wires pdfcpu, MuPDF and ledongthuc/pdf.
func NewDefault(opts Options, log *slog.Logger) *Workbench {
	return New(pdfengine.NewPDFCPU(), pdfengine.MuPDF{}, pdfengine.PlainText{}, opts, log)
}

// Options returns the effective options.
func (w *Workbench) Options() Options {
	return w.opts
}

func (w *Workbench) begin(op string) (func(), error) {
	if !w.busy.CompareAndSwap(false, true) {
		return nil, models.NewOpError(models.ErrBusy, op, "", "", nil)
	}
	return func() { w.busy.Store(false) }, nil
}

// read is the first stage of every pipeline.
func (w *Workbench) read(op string, f models.UploadedFile) ([]byte, error) {
	data, err := f.ReadAll()
	if err != nil {
		return nil, models.NewOpError(models.ErrOperationFailed, op, f.Name, "could not be read", err)
	}
	return data, nil
}

// load reads f and confirms the engine can open it.
func (w *Workbench) load(ctx context.Context, op string, f models.UploadedFile) ([]byte, int, error) {
	data, err := w.read(op, f)
	if err != nil {
		return nil, 0, err
	}
	n, err := w.engine.PageCount(ctx, data)
	if err != nil {
		return nil, 0, classify(op, f.Name, err)
	}
	return data, n, nil
}

// classify converts a library or context error into the error taxonomy.
func classify(op, file string, err error) error {
	var opErr *models.OpError
	if errors.As(err, &opErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return models.NewOpError(models.ErrOperationFailed, op, file, "was cancelled", err)
	}
	var loadErr *pdfengine.LoadError
	if errors.As(err, &loadErr) {
		return models.NewOpError(models.ErrCorruptInput, op, file,
			"could not be opened. It may be corrupt or password protected", err)
	}
	return models.NewOpError(models.ErrOperationFailed, op, file, "", err)
}

// batch runs fn over files with bounded fan-out. Results keep input order; the
// first failure cancels the rest and nothing is returned.
func (w *Workbench) batch(
	ctx context.Context,
	files []models.UploadedFile,
	fn func(ctx context.Context, index int, f models.UploadedFile) (models.TransformResult, error),
) ([]models.TransformResult, error) {
	results := make([]models.TransformResult, len(files))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.opts.Workers)
	for i, f := range files {
		eg.Go(func() error {
			res, err := fn(gctx, i, f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// stem strips the extension from a file name: "report.pdf" -> "report".
func stem(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
