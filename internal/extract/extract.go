// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns one scanned input file into raw text: OCR for
// images, content-stream text extraction for PDFs.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/textcompile/pkg/types"
)

var (
	// ErrUnsupportedKind is returned for a kind that is neither image nor
	// document.
	ErrUnsupportedKind = errors.New("unsupported file kind")

	// ErrIO is returned when a file cannot be opened, parsed, or recognised.
	ErrIO = errors.New("file extraction failed")
)

// OCR recognises the text in an image file.
type OCR interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// PDFReader returns the text of a PDF file, pages concatenated.
type PDFReader interface {
	ReadText(path string) (string, error)
}

// Extractor dispatches files to the OCR engine or the PDF reader by kind.
type Extractor struct {
	ocr OCR
	pdf PDFReader
}

// New returns an Extractor. A nil pdf reader selects PDFCPUReader.
func New(ocr OCR, pdf PDFReader) *Extractor {
	if pdf == nil {
		pdf = PDFCPUReader{}
	}
	return &Extractor{ocr: ocr, pdf: pdf}
}

// Extract returns the raw text of dir/filename. An image with no
// recognisable text yields "" and no error.
func (e *Extractor) Extract(ctx context.Context, dir, filename string, kind types.SourceKind) (string, error) {
	path := filepath.Join(dir, filename)

	switch kind {
	case types.KindImage:
		if e.ocr == nil {
			return "", fmt.Errorf("%s: no OCR engine configured: %w", filename, ErrIO)
		}
		text, err := e.ocr.Recognize(ctx, path)
		if err != nil {
			return "", fmt.Errorf("%s: %w: %w", filename, ErrIO, err)
		}
		return text, nil
	case types.KindDocument:
		text, err := e.pdf.ReadText(path)
		if err != nil {
			return "", fmt.Errorf("%s: %w: %w", filename, ErrIO, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%s: %w %q", filename, ErrUnsupportedKind, kind)
	}
}
