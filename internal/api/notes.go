package api

import (
	"net/http"
	"strings"

	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// NoteView is a note with its effective price resolved
type NoteView struct {
	models.Note
	EffectivePrice float64 `json:"effective_price"`
}

func noteView(n *models.Note) NoteView {
	return NoteView{Note: *n, EffectivePrice: n.EffectivePrice()}
}

// ListNotes lists the catalog, newest first
func (h *Handlers) ListNotes(c *gin.Context) {
	notes, err := h.Catalog.ListNotes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to fetch notes")
		return
	}

	views := make([]NoteView, len(notes))
	for i := range notes {
		views[i] = noteView(&notes[i])
	}
	response.SuccessJSON(c, views)
}

// GetNote returns one note
func (h *Handlers) GetNote(c *gin.Context) {
	note, err := h.Catalog.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Failed to fetch note")
		return
	}
	response.SuccessJSON(c, noteView(note))
}

// ResolveNote finds a note from a storefront URL path
func (h *Handlers) ResolveNote(c *gin.Context) {
	var segments []string
	for _, s := range strings.Split(c.Param("slug"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	note, err := h.Catalog.ResolveNote(c.Request.Context(), segments)
	if err != nil {
		writeServiceError(c, err, "Failed to resolve note")
		return
	}
	response.SuccessJSON(c, noteView(note))
}

// CreateNote uploads a notes PDF and records the note
func (h *Handlers) CreateNote(c *gin.Context) {
	file, err := h.readUpload(c)
	if err != nil {
		writeServiceError(c, err, "Failed to read upload")
		return
	}

	originalPrice, err := formFloat(c, "original_price")
	if err != nil {
		writeServiceError(c, err, "Invalid price")
		return
	}
	discountedPrice, err := formFloat(c, "discounted_price")
	if err != nil {
		writeServiceError(c, err, "Invalid price")
		return
	}
	price, err := formFloat(c, "price")
	if err != nil {
		writeServiceError(c, err, "Invalid price")
		return
	}

	in := services.NoteInput{
		University:      c.PostForm("university"),
		Course:          c.PostForm("course"),
		Branch:          c.PostForm("branch"),
		Semester:        c.PostForm("semester"),
		Subject:         c.PostForm("subject"),
		ChapterNo:       c.PostForm("chapter_no"),
		Title:           c.PostForm("title"),
		Description:     c.PostForm("description"),
		Author:          c.PostForm("author"),
		DiscountedPrice: discountedPrice,
	}
	if originalPrice != nil {
		in.OriginalPrice = *originalPrice
	}
	if price != nil {
		in.Price = *price
	}

	note, err := h.Catalog.CreateNote(c.Request.Context(), in, file)
	if err != nil {
		writeServiceError(c, err, "Failed to upload notes")
		return
	}
	response.CreatedJSON(c, "Notes uploaded successfully", noteView(note))
}

// UpdateNote applies admin edits to a note
func (h *Handlers) UpdateNote(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		writeBindError(c, err)
		return
	}

	note, err := h.Catalog.UpdateNote(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		writeServiceError(c, err, "Failed to update note")
		return
	}
	response.SuccessJSON(c, noteView(note))
}

// DeleteNote removes a note and its file
func (h *Handlers) DeleteNote(c *gin.Context) {
	if err := h.Catalog.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, "Failed to delete note")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Note deleted successfully",
	})
}
