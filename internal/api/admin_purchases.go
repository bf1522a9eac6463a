package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// UpdatePurchaseRequest is an admin edit; any subset of fields may be supplied
type UpdatePurchaseRequest struct {
	PurchaseID     string  `json:"purchaseId" binding:"required"`
	Status         *string `json:"status" binding:"omitempty,purchase_status"`
	MarkDownloaded *bool   `json:"markDownloaded"`
}

// SalesReport is the dashboard summary plus one page of the filtered table
type SalesReport struct {
	Stats services.SalesStats `json:"stats"`
	Page  services.SalesPage  `json:"page"`
}

// ListPurchases returns every purchase joined with its note, newest first
func (h *Handlers) ListPurchases(c *gin.Context) {
	purchases, err := h.Purchases.ListWithNotes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to fetch purchases")
		return
	}
	response.SuccessJSON(c, purchases)
}

// UpdatePurchase applies a status override and/or the download marker
func (h *Handlers) UpdatePurchase(c *gin.Context) {
	var req UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	in := services.UpdatePurchaseInput{MarkDownloaded: req.MarkDownloaded}
	if req.Status != nil {
		status := models.PurchaseStatus(*req.Status)
		in.Status = &status
	}

	updated, err := h.Purchases.UpdatePurchase(c.Request.Context(), req.PurchaseID, in)
	if err != nil {
		writeServiceError(c, err, "Failed to update purchase")
		return
	}
	response.SuccessJSON(c, updated)
}

func salesFilterFromQuery(c *gin.Context) services.SalesFilter {
	return services.SalesFilter{
		Query:     c.Query("q"),
		Status:    c.Query("status"),
		DateRange: c.Query("range"),
		Sort:      c.Query("sort"),
	}
}

// SalesReport returns the stats and a page of the filtered purchases
func (h *Handlers) SalesReport(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			response.ErrorJSON(c, http.StatusBadRequest, "Invalid page")
			return
		}
		page = n
	}

	purchases, err := h.Purchases.ListWithNotes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to fetch purchases")
		return
	}

	now := time.Now()
	filtered, err := services.FilterPurchases(purchases, salesFilterFromQuery(c), now)
	if err != nil {
		writeServiceError(c, err, "Failed to build report")
		return
	}

	response.SuccessJSON(c, SalesReport{
		Stats: services.ComputeSalesStats(purchases, now),
		Page:  services.Paginate(filtered, page),
	})
}

// ExportSales streams the filtered purchases as CSV
func (h *Handlers) ExportSales(c *gin.Context) {
	purchases, err := h.Purchases.ListWithNotes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to fetch purchases")
		return
	}

	now := time.Now()
	filtered, err := services.FilterPurchases(purchases, salesFilterFromQuery(c), now)
	if err != nil {
		writeServiceError(c, err, "Failed to export sales")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales-%s.csv", now.Format("2006-01-02")))
	c.Status(http.StatusOK)
	if err := services.WriteSalesCSV(c.Writer, filtered); err != nil {
		_ = c.Error(err)
	}
}
