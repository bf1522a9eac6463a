package api

import (
	"errors"
	"net/http"

	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"
	"notes-marketplace-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// serviceErrors maps domain errors to a status and client-facing message
var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrMissingFields, http.StatusBadRequest, "Missing required fields"},
	{services.ErrInvalidAmount, http.StatusBadRequest, ""},
	{services.ErrInvalidEmail, http.StatusBadRequest, "Invalid email format"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{services.ErrInvalidFilter, http.StatusBadRequest, "Invalid filter"},
	{services.ErrInvalidFile, http.StatusBadRequest, ""},
	{services.ErrInvalidSignature, http.StatusBadRequest, "Payment verification failed"},
	{services.ErrNoteMismatch, http.StatusBadRequest, "notes_id does not match the order"},
	{services.ErrNoteNotFound, http.StatusNotFound, "Note not found"},
	{services.ErrNoteFileMissing, http.StatusNotFound, "Note not found"},
	{services.ErrPurchaseNotFound, http.StatusNotFound, "Purchase not found"},
	{services.ErrSyllabusNotFound, http.StatusNotFound, "Syllabus not found"},
	{services.ErrAdminNotFound, http.StatusNotFound, "Admin not found"},
	{services.ErrTransitionNotAllowed, http.StatusConflict, ""},
	{services.ErrNotDownloadable, http.StatusConflict, "Purchase is not completed"},
	{services.ErrAdminExists, http.StatusConflict, "Admin already exists"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{services.ErrInvalidAdminSecret, http.StatusForbidden, "Unauthorized"},
	{services.ErrStorageNotConfigured, http.StatusServiceUnavailable, "File storage is not configured"},
}

// writeServiceError answers with the mapped status, or 500 and the generic
// fallback for upstream failures. An empty mapped message echoes the error.
func writeServiceError(c *gin.Context, err error, fallback string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			response.ErrorJSON(c, m.status, msg)
			return
		}
	}

	logging.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	_ = c.Error(err)
	response.ErrorJSON(c, http.StatusInternalServerError, fallback)
}

func writeBindError(c *gin.Context, err error) {
	response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
}
