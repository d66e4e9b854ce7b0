package services

import (
	"bytes"
	"context"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

func TestNormalizeRotation(t *testing.T) {
	for in, want := range map[int]int{0: 0, 90: 90, 180: 180, 270: 270, 360: 0, 450: 90, -90: 270, -360: 0} {
		got, err := NormalizeRotation(in)
		require.NoError(t, err, "degrees %d", in)
		assert.Equal(t, want, got, "degrees %d", in)
	}
	for _, in := range []int{45, 1, -30, 91} {
		_, err := NormalizeRotation(in)
		assert.ErrorIs(t, err, models.ErrInvalidParameter, "degrees %d", in)
	}
}

func TestRotateKeepsPagesAndNames(t *testing.T) {
	w := newTestWorkbench(&fakeEngine{}, nil, nil)

	res, err := w.Rotate(context.Background(), []models.UploadedFile{
		upload("a.pdf", fakePDF("a1", "a2")),
		upload("b.pdf", fakePDF("b1")),
	}, 90)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "rotated-a.pdf", res[0].Outputs[0].Name)
	assert.Equal(t, []string{"a1@90", "a2@90"}, mustLabels(t, res[0].Outputs[0].Data))
	assert.Equal(t, "rotated-b.pdf", res[1].Outputs[0].Name)
	assert.Equal(t, models.TransformRotate, res[1].Kind)
}

func TestRotateFourQuarterTurnsRestoresOrientation(t *testing.T) {
	w := newTestWorkbench(&fakeEngine{}, nil, nil)
	file := upload("doc.pdf", fakePDF("p1", "p2"))

	for i := 0; i < 4; i++ {
		res, err := w.Rotate(context.Background(), []models.UploadedFile{file}, 90)
		require.NoError(t, err)
		file = upload("doc.pdf", res[0].Outputs[0].Data)
	}
	assert.Equal(t, []string{"p1", "p2"}, mustLabels(t, mustRead(t, file)))
}

func TestRotateByZeroReEmitsInput(t *testing.T) {
	e := &fakeEngine{}
	w := newTestWorkbench(e, nil, nil)
	data := fakePDF("p1")

	res, err := w.Rotate(context.Background(), []models.UploadedFile{upload("doc.pdf", data)}, 360)
	require.NoError(t, err)
	assert.Equal(t, data, res[0].Outputs[0].Data)
	assert.Equal(t, []string{"count"}, e.Calls())
}

func TestRotateRejectsBadAngleBeforeIO(t *testing.T) {
	e := &fakeEngine{}
	w := newTestWorkbench(e, nil, nil)
	_, err := w.Rotate(context.Background(), []models.UploadedFile{upload("doc.pdf", fakePDF("p1"))}, 45)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.Empty(t, e.Calls())
}

func TestCompressReportsSizes(t *testing.T) {
	e := &fakeEngine{optimize: func(b []byte) []byte { return b[:len(b)-2] }}
	w := newTestWorkbench(e, nil, nil)
	data := fakePDF("p1", "p2", "p3")

	res, err := w.Compress(context.Background(), []models.UploadedFile{upload("big.pdf", data)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "compressed-big.pdf", res[0].Outputs[0].Name)
	assert.Equal(t, int64(len(data)), res[0].InputSize)
	assert.Equal(t, int64(2), res[0].SizeDelta())
	assert.Greater(t, res[0].ReductionPercent(), 0.0)
}

func TestCompressReturnsLargerOutput(t *testing.T) {
	e := &fakeEngine{optimize: func(b []byte) []byte { return append(append([]byte(nil), b...), ",pad"...) }}
	w := newTestWorkbench(e, nil, nil)

	res, err := w.Compress(context.Background(), []models.UploadedFile{upload("tiny.pdf", fakePDF("p1"))})
	require.NoError(t, err)
	assert.Negative(t, res[0].SizeDelta())
	assert.LessOrEqual(t, res[0].ReductionPercent(), 0.0)
}

func TestBatchIsAllOrNothing(t *testing.T) {
	w := newTestWorkbench(&fakeEngine{}, nil, nil)

	res, err := w.Compress(context.Background(), []models.UploadedFile{
		upload("good.pdf", fakePDF("p1")),
		upload("bad.pdf", []byte("junk")),
	})
	assert.ErrorIs(t, err, models.ErrCorruptInput)
	assert.Nil(t, res)

	_, err = w.Compress(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInsufficientInput)
}

func TestRasterizeRendersEveryPage(t *testing.T) {
	r := &fakeRaster{}
	w := newTestWorkbench(&fakeEngine{}, r, nil)

	res, err := w.Rasterize(context.Background(), []models.UploadedFile{upload("slides.pdf", fakePDF("p1", "p2", "p3"))}, RasterOptions{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	outs := res[0].Outputs
	require.Len(t, outs, 3)
	assert.Equal(t, []float64{144}, r.dpis)
	for i, name := range []string{"slides_page_1.jpg", "slides_page_2.jpg", "slides_page_3.jpg"} {
		assert.Equal(t, name, outs[i].Name)
		assert.Equal(t, models.MIMEJPEG, outs[i].MIMEType)
		_, err := jpeg.Decode(bytes.NewReader(outs[i].Data))
		assert.NoError(t, err)
	}
}

func TestRasterizePNGAtCustomScale(t *testing.T) {
	r := &fakeRaster{}
	w := newTestWorkbench(&fakeEngine{}, r, nil)

	res, err := w.Rasterize(context.Background(), []models.UploadedFile{upload("a.pdf", fakePDF("p1"))}, RasterOptions{Scale: 1, Format: "PNG"})
	require.NoError(t, err)
	out := res[0].Outputs[0]
	assert.Equal(t, "a_page_1.png", out.Name)
	assert.Equal(t, []float64{72}, r.dpis)
	_, err = png.Decode(bytes.NewReader(out.Data))
	assert.NoError(t, err)

	_, err = w.Rasterize(context.Background(), []models.UploadedFile{upload("a.pdf", fakePDF("p1"))}, RasterOptions{Format: "tiff"})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestExtractTextJoinsPages(t *testing.T) {
	txt := fakeText{"p1": "Hello \n  world", "p2": "second\tpage"}
	w := newTestWorkbench(&fakeEngine{}, nil, txt)

	res, err := w.ExtractText(context.Background(), []models.UploadedFile{
		upload("a.pdf", fakePDF("p1", "p2")),
		upload("scan.pdf", fakePDF("s1")),
	})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "extracted_text_1.txt", res[0].Outputs[0].Name)
	assert.Equal(t, "Hello world\nsecond page", string(res[0].Outputs[0].Data))
	assert.True(t, res[0].TextFound)

	assert.Equal(t, "extracted_text_2.txt", res[1].Outputs[0].Name)
	assert.Equal(t, NoTextMessage, string(res[1].Outputs[0].Data))
	assert.False(t, res[1].TextFound)
}

func TestImagesToPDF(t *testing.T) {
	e := &fakeEngine{}
	w := newTestWorkbench(e, nil, nil)
	files := []models.UploadedFile{pngUpload(t, "front.png", 10), pngUpload(t, "back.scan.png", 20)}

	res, err := w.ImagesToPDF(context.Background(), files, ImageOptions{})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "front.pdf", res[0].Outputs[0].Name)
	assert.Equal(t, "back.scan.pdf", res[1].Outputs[0].Name)
	assert.Equal(t, []string{"img20"}, mustLabels(t, res[1].Outputs[0].Data))

	res, err = w.ImagesToPDF(context.Background(), files, ImageOptions{Combine: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, CombinedImagesName, res[0].Outputs[0].Name)
	assert.Equal(t, []string{"img10", "img20"}, mustLabels(t, res[0].Outputs[0].Data))
}

func TestImagesToPDFRejectsUndecodable(t *testing.T) {
	e := &fakeEngine{}
	w := newTestWorkbench(e, nil, nil)
	bad := upload("photo.jpg", []byte("not an image"))

	_, err := w.ImagesToPDF(context.Background(), []models.UploadedFile{bad}, ImageOptions{Combine: true})
	assert.ErrorIs(t, err, models.ErrCorruptInput)
	assert.Empty(t, e.Calls())
}

func mustRead(t *testing.T, f models.UploadedFile) []byte {
	t.Helper()
	data, err := f.ReadAll()
	require.NoError(t, err)
	return data
}
