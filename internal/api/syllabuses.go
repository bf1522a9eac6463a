package api

import (
	"net/http"
	"strconv"

	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// RecordDownloadRequest is the lead-capture form
type RecordDownloadRequest struct {
	SyllabusID   string `json:"syllabus_id"`
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// ListSyllabuses lists free syllabuses, optionally filtered
func (h *Handlers) ListSyllabuses(c *gin.Context) {
	syllabuses, err := h.Catalog.ListSyllabuses(c.Request.Context(), services.SyllabusFilter{
		University: c.Query("university"),
		Branch:     c.Query("branch"),
		Semester:   c.Query("semester"),
	})
	if err != nil {
		writeServiceError(c, err, "Failed to fetch syllabuses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    syllabuses,
		"count":   len(syllabuses),
	})
}

// GetSyllabus returns one syllabus
func (h *Handlers) GetSyllabus(c *gin.Context) {
	syllabus, err := h.Catalog.GetSyllabus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Failed to fetch syllabus")
		return
	}
	response.SuccessJSON(c, syllabus)
}

// RecordSyllabusDownload records a lead before the free download
func (h *Handlers) RecordSyllabusDownload(c *gin.Context) {
	var req RecordDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	lead, err := h.Leads.RecordDownload(c.Request.Context(), req.SyllabusID, req.StudentName, req.StudentEmail)
	if err != nil {
		writeServiceError(c, err, "Failed to record download")
		return
	}
	response.CreatedJSON(c, "Download recorded successfully", lead)
}

// ListSyllabusDownloads pages through recorded leads
func (h *Handlers) ListSyllabusDownloads(c *gin.Context) {
	limit, err := queryInt(c, "limit", services.DefaultLeadListLimit)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid offset")
		return
	}

	leads, total, err := h.Leads.ListDownloads(c.Request.Context(), services.LeadListFilter{
		SyllabusID: c.Query("syllabus_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(c, err, "Failed to fetch downloads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    leads,
		"count":   len(leads),
		"total":   total,
	})
}

// CreateSyllabus uploads a syllabus PDF into its university/branch/semester folder
func (h *Handlers) CreateSyllabus(c *gin.Context) {
	file, err := h.readUpload(c)
	if err != nil {
		writeServiceError(c, err, "Failed to read upload")
		return
	}

	syllabus, err := h.Catalog.CreateSyllabus(c.Request.Context(), services.SyllabusInput{
		University:  c.PostForm("university"),
		Course:      c.PostForm("course"),
		Branch:      c.PostForm("branch"),
		Semester:    c.PostForm("semester"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Author:      c.PostForm("author"),
	}, file)
	if err != nil {
		writeServiceError(c, err, "Failed to upload syllabus")
		return
	}
	response.CreatedJSON(c, "Syllabus uploaded successfully", syllabus)
}

// UpdateSyllabus applies admin edits to a syllabus
func (h *Handlers) UpdateSyllabus(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		writeBindError(c, err)
		return
	}

	syllabus, err := h.Catalog.UpdateSyllabus(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		writeServiceError(c, err, "Failed to update syllabus")
		return
	}
	response.SuccessJSON(c, syllabus)
}

// DeleteSyllabus removes a syllabus and its file
func (h *Handlers) DeleteSyllabus(c *gin.Context) {
	if err := h.Catalog.DeleteSyllabus(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, "Failed to delete syllabus")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Syllabus deleted successfully",
	})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
