package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal well-formed PDF with the given number of blank pages
func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestCheckPDF(t *testing.T) {
	pages, err := CheckPDF("notes.pdf", buildPDF(3), NotesPDFLimits)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestCheckPDFRejects(t *testing.T) {
	small := PDFLimits{MaxFileSizeMB: 1, MaxPages: 2, DocumentTypeName: "syllabus"}

	cases := map[string]struct {
		name    string
		content []byte
	}{
		"not a pdf":      {"notes.pdf", []byte("PK\x03\x04 zip archive")},
		"wrong ext":      {"notes.docx", buildPDF(1)},
		"truncated":      {"notes.pdf", []byte("%PDF-1.4\n1 0 obj\n")},
		"too many pages": {"notes.pdf", buildPDF(3)},
		"too large":      {"notes.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 2*1024*1024)...)},
	}
	for name, tc := range cases {
		_, err := CheckPDF(tc.name, tc.content, small)
		assert.ErrorIs(t, err, ErrInvalidFile, name)
	}
}
