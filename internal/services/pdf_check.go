package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLimits bounds an uploaded document
type PDFLimits struct {
	MaxFileSizeMB    int
	MaxPages         int
	DocumentTypeName string
}

var (
	NotesPDFLimits = PDFLimits{
		MaxFileSizeMB:    100,
		MaxPages:         2000,
		DocumentTypeName: "notes",
	}

	SyllabusPDFLimits = PDFLimits{
		MaxFileSizeMB:    50,
		MaxPages:         50,
		DocumentTypeName: "syllabus",
	}
)

// CheckPDF validates content is a readable PDF within limits and returns its page count
func CheckPDF(fileName string, content []byte, limits PDFLimits) (int, error) {
	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if int64(len(content)) > maxSize {
		return 0, fmt.Errorf("%w: file size exceeds maximum allowed size of %dMB", ErrInvalidFile, limits.MaxFileSizeMB)
	}
	if fileName != "" && !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return 0, fmt.Errorf("%w: only PDF files are supported", ErrInvalidFile)
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: missing PDF header", ErrInvalidFile)
	}

	pages, err := pdfPageCount(content)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("%w: PDF has no pages", ErrInvalidFile)
	}
	if limits.MaxPages > 0 && pages > limits.MaxPages {
		return 0, fmt.Errorf("%w: PDF has %d pages, which exceeds the maximum of %d pages for %s",
			ErrInvalidFile, pages, limits.MaxPages, limits.DocumentTypeName)
	}
	return pages, nil
}

func pdfPageCount(content []byte) (n int, err error) {
	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return r.NumPage(), nil
}
