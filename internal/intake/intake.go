// Package intake filters host-provided files against a tool's accepted types
// and size ceiling and turns the survivors into UploadedFile records.
package intake

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// Rejection reasons.
const (
	ReasonUnsupportedType = "unsupported type"
	ReasonTooLarge        = "file too large"
)

// RawFile is a file handle as handed over by the host, before intake.
type RawFile struct {
	Name     string
	Size     int64
	MIMEType string
	Source   models.Source
}

// Policy describes what a tool accepts. MaxSize <= 0 disables the ceiling.
type Policy struct {
	Tool       string
	MIMETypes  []string
	Extensions []string
	MaxSize    int64
}

// PDFPolicy accepts PDF documents.
func PDFPolicy(tool string, maxSize int64) Policy {
	return Policy{
		Tool:       tool,
		MIMETypes:  []string{models.MIMEPDF},
		Extensions: []string{".pdf"},
		MaxSize:    maxSize,
	}
}

// ImagePolicy accepts JPEG and PNG images.
func ImagePolicy(tool string, maxSize int64) Policy {
	return Policy{
		Tool:       tool,
		MIMETypes:  []string{models.MIMEJPEG, "image/jpg", models.MIMEPNG},
		Extensions: []string{".jpg", ".jpeg", ".png"},
		MaxSize:    maxSize,
	}
}

// Rejection records why a file was not accepted.
type Rejection struct {
	Name   string
	Reason string
	Err    error
}

// Result is the outcome of one intake pass.
type Result struct {
	Accepted []models.UploadedFile
	Rejected []Rejection
}

// Summary is the aggregate notification for the pass, e.g. "3 files added, 1 rejected".
func (r Result) Summary() string {
	added := plural(len(r.Accepted), "file")
	if len(r.Rejected) == 0 {
		return added + " added"
	}
	return fmt.Sprintf("%s added, %d rejected", added, len(r.Rejected))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Accept filters raws against policy. It performs no I/O.
func Accept(raws []RawFile, policy Policy) Result {
	var res Result
	for _, raw := range raws {
		if !policy.allowsType(raw) {
			res.Rejected = append(res.Rejected, Rejection{
				Name:   raw.Name,
				Reason: ReasonUnsupportedType,
				Err:    models.NewOpError(models.ErrUnsupportedFileType, policy.Tool, raw.Name, "is not a supported file type", nil),
			})
			continue
		}
		if policy.MaxSize > 0 && raw.Size > policy.MaxSize {
			res.Rejected = append(res.Rejected, Rejection{
				Name:   raw.Name,
				Reason: ReasonTooLarge,
				Err: models.NewOpError(models.ErrFileTooLarge, policy.Tool, raw.Name,
					fmt.Sprintf("is too large. Maximum size is %s", formatLimit(policy.MaxSize)), nil),
			})
			continue
		}
		res.Accepted = append(res.Accepted, models.UploadedFile{
			ID:       uuid.NewString(),
			Name:     raw.Name,
			Size:     raw.Size,
			MIMEType: normalizeMIME(raw.MIMEType),
			Source:   raw.Source,
		})
	}
	return res
}

func (p Policy) allowsType(raw RawFile) bool {
	declared := normalizeMIME(raw.MIMEType)
	for _, m := range p.MIMETypes {
		if declared == m {
			return true
		}
	}
	// Hosts that cannot sniff a type hand over an empty or generic one;
	// fall back to the extension only then.
	if declared != "" && declared != models.MIMEOctet {
		return false
	}
	ext := strings.ToLower(filepath.Ext(raw.Name))
	for _, e := range p.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func normalizeMIME(m string) string {
	if m == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(m)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(m))
	}
	return mediaType
}

func formatLimit(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

// DescribeLocal builds a RawFile for a path on the local filesystem. The
// declared type comes from the extension, the way a browser file picker
// reports it.
func DescribeLocal(path string) (RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return RawFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return RawFile{}, fmt.Errorf("%s is a directory", path)
	}
	return RawFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Source:   models.FileSource(path),
	}, nil
}
