// Package download turns conversion results into delivered files.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// DefaultDelay spaces consecutive deliveries.
const DefaultDelay = 100 * time.Millisecond

// Handle describes one delivered artifact.
type Handle struct {
	Name     string
	MIMEType string
	Size     int64
	Location string
	Skipped  bool // destination already had it
}

// Packager delivers results to a Sink.
type Packager struct {
	Sink        Sink
	Delay       time.Duration
	OnDelivered func(Handle)
	Log         *slog.Logger
}

func NewPackager(sink Sink, delay time.Duration) *Packager {
	if delay < 0 {
		delay = 0
	}
	return &Packager{Sink: sink, Delay: delay, Log: slog.Default()}
}

// ToDownloadable hands r to the sink. On success the payload of r is released.
func (p *Packager) ToDownloadable(ctx context.Context, r *models.ConversionResult) (Handle, error) {
	if r == nil || r.Data == nil {
		return Handle{}, errors.New("result has no payload")
	}
	h := Handle{Name: r.Name, MIMEType: r.MIMEType, Size: r.Size()}
	loc, err := p.Sink.Put(ctx, r.Name, r.MIMEType, r.Data)
	switch {
	case errors.Is(err, ErrAlreadyExists):
		h.Skipped = true
		p.logger().Warn("Destination already exists. Skipping.", "name", r.Name, "location", loc)
	case err != nil:
		return Handle{}, fmt.Errorf("failed to deliver %s: %w", r.Name, err)
	}
	h.Location = loc
	r.Release()
	if p.OnDelivered != nil {
		p.OnDelivered(h)
	}
	return h, nil
}

// DownloadAll delivers results one at a time in order. On failure it returns
// what was delivered so far.
func (p *Packager) DownloadAll(ctx context.Context, results []*models.ConversionResult) ([]Handle, error) {
	handles := make([]Handle, 0, len(results))
	for i, r := range results {
		if i > 0 && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return handles, ctx.Err()
			}
		}
		h, err := p.ToDownloadable(ctx, r)
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	p.logger().Info("Delivery complete.", "count", len(handles))
	return handles, nil
}

func (p *Packager) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

// FromMerge, FromSplit and FromTransforms list the artifacts of a run in the
// order they were produced.
func FromMerge(r *models.MergeResult) []*models.ConversionResult {
	return []*models.ConversionResult{&r.Output}
}

func FromSplit(r *models.SplitResult) []*models.ConversionResult {
	return r.Succeeded()
}

func FromTransforms(rs []models.TransformResult) []*models.ConversionResult {
	var out []*models.ConversionResult
	for i := range rs {
		for j := range rs[i].Outputs {
			out = append(out, &rs[i].Outputs[j])
		}
	}
	return out
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count in 1024 steps with at most two decimals:
// 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)
	v := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return humanize.FtoaWithDigits(v, 2) + " " + sizeUnits[i]
}
