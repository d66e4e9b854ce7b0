package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// NoTextMessage is written in place of the text when a document has none.
const NoTextMessage = "No text could be extracted from this document."

// ExtractText pulls the plain text of every file into a .txt output. Within a
// page, text runs are joined by single spaces; pages are joined by the
// configured separator.
func (w *Workbench) ExtractText(ctx context.Context, files []models.UploadedFile) ([]models.TransformResult, error) {
	const op = "to-text"
	if err := requireFiles(op, files); err != nil {
		return nil, err
	}
	done, err := w.begin(op)
	if err != nil {
		return nil, err
	}
	defer done()

	logCtx := w.log.With("op", op, "fileCount", len(files))
	logCtx.Info("Starting text extraction.")
	results, err := w.batch(ctx, files, func(ctx context.Context, i int, f models.UploadedFile) (models.TransformResult, error) {
		data, _, err := w.load(ctx, op, f)
		if err != nil {
			return models.TransformResult{}, err
		}
		pages, err := w.text.PageTexts(ctx, data)
		if err != nil {
			return models.TransformResult{}, classify(op, f.Name, err)
		}
		text, found := joinPages(pages, w.opts.PageSeparator)
		if !found {
			logCtx.Warn("No text found.", "file", f.Name, "pages", len(pages))
			text = NoTextMessage
		}
		body := []byte(text)
		return models.TransformResult{
			Kind:   models.TransformExtractText,
			Source: f.Name,
			Outputs: []models.ConversionResult{{
				Name:     fmt.Sprintf("extracted_text_%d.txt", i+1),
				Data:     body,
				MIMEType: models.MIMEPlainText,
			}},
			InputSize:  int64(len(data)),
			OutputSize: int64(len(body)),
			TextFound:  found,
		}, nil
	})
	if err != nil {
		logCtx.Error("Text extraction failed.", "error", err)
		return nil, err
	}
	logCtx.Info("Text extraction complete.")
	return results, nil
}

func joinPages(pages []string, sep string) (string, bool) {
	found := false
	cleaned := make([]string, len(pages))
	for i, p := range pages {
		cleaned[i] = strings.Join(strings.Fields(p), " ")
		if cleaned[i] != "" {
			found = true
		}
	}
	if !found {
		return "", false
	}
	return strings.Join(cleaned, sep), true
}
