package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
	"github.com/Lllllllleong/pdfworkbench/internal/pdfengine"
)

// Fake documents are "FAKE:" followed by comma-separated page labels. A label
// may carry its rotation as "p1@90".
const fakeMagic = "FAKE:"

func fakePDF(labels ...string) []byte {
	return []byte(fakeMagic + strings.Join(labels, ","))
}

func parseFake(data []byte) ([]string, error) {
	rest, ok := strings.CutPrefix(string(data), fakeMagic)
	if !ok {
		return nil, &pdfengine.LoadError{Err: errors.New("not a fake pdf")}
	}
	if rest == "" {
		return nil, nil
	}
	return strings.Split(rest, ","), nil
}

func mustLabels(t *testing.T, data []byte) []string {
	t.Helper()
	labels, err := parseFake(data)
	require.NoError(t, err)
	return labels
}

type fakeEngine struct {
	mu          sync.Mutex
	calls       []string
	failExtract map[int]bool
	optimize    func([]byte) []byte
	onPageCount func()
}

func (e *fakeEngine) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) PageCount(ctx context.Context, data []byte) (int, error) {
	e.record("count")
	if e.onPageCount != nil {
		e.onPageCount()
	}
	labels, err := parseFake(data)
	if err != nil {
		return 0, err
	}
	return len(labels), nil
}

func (e *fakeEngine) Merge(ctx context.Context, docs [][]byte) ([]byte, error) {
	e.record("merge")
	var all []string
	for _, d := range docs {
		labels, err := parseFake(d)
		if err != nil {
			return nil, err
		}
		all = append(all, labels...)
	}
	return fakePDF(all...), nil
}

func (e *fakeEngine) ExtractPages(ctx context.Context, data []byte, first, last int) ([]byte, error) {
	e.record(fmt.Sprintf("extract %d-%d", first, last))
	if e.failExtract[first] {
		return nil, errors.New("boom")
	}
	labels, err := parseFake(data)
	if err != nil {
		return nil, err
	}
	if first < 1 || last > len(labels) || first > last {
		return nil, fmt.Errorf("bad range %d-%d", first, last)
	}
	return fakePDF(labels[first-1 : last]...), nil
}

func (e *fakeEngine) Rotate(ctx context.Context, data []byte, degrees int) ([]byte, error) {
	e.record("rotate " + strconv.Itoa(degrees))
	labels, err := parseFake(data)
	if err != nil {
		return nil, err
	}
	for i, l := range labels {
		name, rot, _ := strings.Cut(l, "@")
		cur, _ := strconv.Atoi(rot)
		next := (cur + degrees) % 360
		if next == 0 {
			labels[i] = name
		} else {
			labels[i] = name + "@" + strconv.Itoa(next)
		}
	}
	return fakePDF(labels...), nil
}

func (e *fakeEngine) Optimize(ctx context.Context, data []byte) ([]byte, error) {
	e.record("optimize")
	if e.optimize == nil {
		return append([]byte(nil), data...), nil
	}
	return e.optimize(data), nil
}

func (e *fakeEngine) ImagesToPDF(ctx context.Context, images [][]byte) ([]byte, error) {
	e.record("images " + strconv.Itoa(len(images)))
	labels := make([]string, len(images))
	for i, img := range images {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
		if err != nil {
			return nil, err
		}
		labels[i] = "img" + strconv.Itoa(cfg.Width)
	}
	return fakePDF(labels...), nil
}

type fakeRaster struct {
	mu   sync.Mutex
	dpis []float64
}

func (r *fakeRaster) Render(ctx context.Context, data []byte, dpi float64, fn pdfengine.PageFunc) (int, error) {
	r.mu.Lock()
	r.dpis = append(r.dpis, dpi)
	r.mu.Unlock()
	labels, err := parseFake(data)
	if err != nil {
		return 0, err
	}
	for i := range labels {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.Set(0, 0, color.White)
		if err := fn(i, img); err != nil {
			return i, err
		}
	}
	return len(labels), nil
}

// fakeText maps page labels to their text; unknown labels have none.
type fakeText map[string]string

func (ft fakeText) PageTexts(ctx context.Context, data []byte) ([]string, error) {
	labels, err := parseFake(data)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = ft[l]
	}
	return out, nil
}

func newTestWorkbench(e *fakeEngine, r *fakeRaster, txt fakeText) *Workbench {
	if r == nil {
		r = &fakeRaster{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(e, r, txt, Options{Workers: 4}, log)
}

func upload(name string, data []byte) models.UploadedFile {
	return models.UploadedFile{
		ID:       "id-" + name,
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: models.MIMEPDF,
		Source:   models.BytesSource(data),
	}
}

func pngUpload(t *testing.T, name string, width int) models.UploadedFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, 8))))
	f := upload(name, buf.Bytes())
	f.MIMEType = models.MIMEPNG
	return f
}
