package api

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// readUpload reads the "file" part of a multipart admin form
func (h *Handlers) readUpload(c *gin.Context) (services.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return services.UploadedFile{}, fmt.Errorf("%w: no file uploaded", services.ErrMissingFields)
	}

	maxMB := h.MaxUploadMB
	if maxMB <= 0 {
		maxMB = services.NotesPDFLimits.MaxFileSizeMB
	}
	if header.Size > int64(maxMB)*1024*1024 {
		return services.UploadedFile{}, fmt.Errorf("%w: file size exceeds maximum allowed size of %dMB", services.ErrInvalidFile, maxMB)
	}

	f, err := header.Open()
	if err != nil {
		return services.UploadedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return services.UploadedFile{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return services.UploadedFile{Name: header.Filename, Content: content}, nil
}

// formFloat parses an optional numeric form field
func formFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative number", services.ErrInvalidAmount, key)
	}
	return &v, nil
}
