// Package config layers defaults, an optional YAML file, .env and PDFWB_*
// environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "PDFWB"
	fileName  = "pdfworkbench"
	mib       = 1 << 20
)

// Keys shared with flag bindings.
const (
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyPDFMaxBytes      = "limits.pdf_max_bytes"
	KeyCompressMaxBytes = "limits.compress_max_bytes"
	KeyImageMaxBytes    = "limits.image_max_bytes"
	KeyWorkers          = "workers"
	KeyRenderScale      = "render.scale"
	KeyRenderFormat     = "render.format"
	KeyJPEGQuality      = "render.jpeg_quality"
	KeyPageSeparator    = "text.page_separator"
	KeyDownloadDelay    = "download.delay"
	KeyOutputTarget     = "output.target"
)

type Config struct {
	LogLevel  slog.Level
	LogFormat string

	PDFMaxBytes      int64
	CompressMaxBytes int64
	ImageMaxBytes    int64

	Workers       int
	RenderScale   float64
	RenderFormat  string
	JPEGQuality   int
	PageSeparator string

	DownloadDelay time.Duration
	OutputTarget  string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyPDFMaxBytes, 50*mib)
	v.SetDefault(KeyCompressMaxBytes, 100*mib)
	v.SetDefault(KeyImageMaxBytes, 50*mib)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyRenderScale, 2.0)
	v.SetDefault(KeyRenderFormat, "jpeg")
	v.SetDefault(KeyJPEGQuality, 92)
	v.SetDefault(KeyPageSeparator, "\n")
	v.SetDefault(KeyDownloadDelay, 100*time.Millisecond)
	v.SetDefault(KeyOutputTarget, ".")
}

// New returns a viper instance with defaults and environment lookup wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are not an error. Variables already set win.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ReadFile reads cfgFile, or searches ./pdfworkbench.yaml and
// ~/.config/pdfworkbench/ when it is empty. It returns the file used, if any.
func ReadFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load resolves and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogFormat:        strings.ToLower(v.GetString(KeyLogFormat)),
		PDFMaxBytes:      v.GetInt64(KeyPDFMaxBytes),
		CompressMaxBytes: v.GetInt64(KeyCompressMaxBytes),
		ImageMaxBytes:    v.GetInt64(KeyImageMaxBytes),
		Workers:          v.GetInt(KeyWorkers),
		RenderScale:      v.GetFloat64(KeyRenderScale),
		RenderFormat:     strings.ToLower(v.GetString(KeyRenderFormat)),
		JPEGQuality:      v.GetInt(KeyJPEGQuality),
		PageSeparator:    v.GetString(KeyPageSeparator),
		DownloadDelay:    v.GetDuration(KeyDownloadDelay),
		OutputTarget:     v.GetString(KeyOutputTarget),
	}

	var errs []error
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("%s: must be json or text, got %q", KeyLogFormat, cfg.LogFormat))
	}
	for key, n := range map[string]int64{
		KeyPDFMaxBytes:      cfg.PDFMaxBytes,
		KeyCompressMaxBytes: cfg.CompressMaxBytes,
		KeyImageMaxBytes:    cfg.ImageMaxBytes,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", key, n))
		}
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("%s: must be at least 1, got %d", KeyWorkers, cfg.Workers))
	}
	if cfg.RenderScale <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", KeyRenderScale, cfg.RenderScale))
	}
	switch cfg.RenderFormat {
	case "jpeg", "jpg", "png":
	default:
		errs = append(errs, fmt.Errorf("%s: must be jpeg or png, got %q", KeyRenderFormat, cfg.RenderFormat))
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("%s: must be between 1 and 100, got %d", KeyJPEGQuality, cfg.JPEGQuality))
	}
	if cfg.DownloadDelay < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative, got %s", KeyDownloadDelay, cfg.DownloadDelay))
	}
	if cfg.OutputTarget == "" {
		cfg.OutputTarget = "."
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
