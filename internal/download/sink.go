package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrAlreadyExists is returned by a Sink that refuses to overwrite. The
// artifact counts as delivered but skipped.
var ErrAlreadyExists = errors.New("already exists at destination")

// Sink stores one artifact and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, mimeType string, data []byte) (string, error)
}

// DirSink saves into a local directory. A name that is taken gets a
// " (n)" suffix before the extension, the way a browser saves downloads.
type DirSink struct {
	Dir string
}

const maxNameAttempts = 1000

func (s DirSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(s.Dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, s.Dir)
}

// ParseTarget maps gs://bucket/prefix to a GCSSink and anything else to a
// DirSink. A GCSSink must be closed by the caller.
func ParseTarget(ctx context.Context, target string) (Sink, error) {
	rest, ok := strings.CutPrefix(target, "gs://")
	if !ok {
		if target == "" {
			target = "."
		}
		return DirSink{Dir: target}, nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid output target %q: missing bucket", target)
	}
	return NewGCSSink(ctx, bucket, strings.Trim(prefix, "/"))
}
