package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, int64(50<<20), cfg.PDFMaxBytes)
	assert.Equal(t, int64(100<<20), cfg.CompressMaxBytes)
	assert.Equal(t, int64(50<<20), cfg.ImageMaxBytes)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, 2.0, cfg.RenderScale)
	assert.Equal(t, "jpeg", cfg.RenderFormat)
	assert.Equal(t, 92, cfg.JPEGQuality)
	assert.Equal(t, "\n", cfg.PageSeparator)
	assert.Equal(t, 100*time.Millisecond, cfg.DownloadDelay)
	assert.Equal(t, ".", cfg.OutputTarget)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PDFWB_WORKERS", "3")
	t.Setenv("PDFWB_LOG_LEVEL", "debug")
	t.Setenv("PDFWB_RENDER_FORMAT", "PNG")
	t.Setenv("PDFWB_DOWNLOAD_DELAY", "1s")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "png", cfg.RenderFormat)
	assert.Equal(t, time.Second, cfg.DownloadDelay)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := New()
	v.Set(KeyLogFormat, "xml")
	v.Set(KeyWorkers, 0)
	v.Set(KeyJPEGQuality, 101)
	v.Set(KeyRenderFormat, "gif")

	_, err := Load(v)
	require.Error(t, err)
	for _, key := range []string{KeyLogFormat, KeyWorkers, KeyJPEGQuality, KeyRenderFormat} {
		assert.ErrorContains(t, err, key)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  scale: 1.5\noutput:\n  target: gs://bucket/out\n"), 0o644))

	v := New()
	used, err := ReadFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.RenderScale)
	assert.Equal(t, "gs://bucket/out", cfg.OutputTarget)

	_, err = ReadFile(New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PDFWB_RENDER_JPEG_QUALITY=70\n"), 0o644))
	t.Setenv("PDFWB_RENDER_JPEG_QUALITY", "")
	require.NoError(t, os.Unsetenv("PDFWB_RENDER_JPEG_QUALITY"))

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.JPEGQuality)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))
}
