package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// MIME types produced and accepted by the tools.
const (
	MIMEPDF       = "application/pdf"
	MIMEJPEG      = "image/jpeg"
	MIMEPNG       = "image/png"
	MIMEPlainText = "text/plain"
	MIMEOctet     = "application/octet-stream"
)

// Source opens the payload behind an UploadedFile. Nothing is read until an
// operation actually needs the bytes.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads the payload from a local path.
type FileSource string

func (p FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesSource serves an in-memory payload.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// UploadedFile is a file accepted by intake. It is immutable once created.
type UploadedFile struct {
	ID       string
	Name     string
	Size     int64
	MIMEType string
	Source   Source
}

// ReadAll loads the whole payload into memory.
func (f UploadedFile) ReadAll() ([]byte, error) {
	if f.Source == nil {
		return nil, fmt.Errorf("file %q has no source", f.Name)
	}
	rc, err := f.Source.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", f.Name, err)
	}
	return data, nil
}

// ConversionResult is one downloadable artifact.
type ConversionResult struct {
	Name     string
	Data     []byte
	MIMEType string
}

// Size returns the payload length in bytes.
func (r *ConversionResult) Size() int64 {
	return int64(len(r.Data))
}

// Release drops the payload once it has been handed off.
func (r *ConversionResult) Release() {
	r.Data = nil
}
