package api

import (
	"net/http"

	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents a checkout request
type CreateOrderRequest struct {
	NotesID       string  `json:"notes_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	CustomerName  string  `json:"customer_name" binding:"required"`
}

// VerifyPaymentRequest represents the checkout callback
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	NotesID           string `json:"notes_id" binding:"required"`
}

// VerifyPaymentResponse is returned once a purchase is completed
type VerifyPaymentResponse struct {
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

// MarkDownloadedRequest identifies a paid purchase by its gateway ids
type MarkDownloadedRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
}

// CreateOrder mints a gateway order and records a pending purchase
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	result, err := h.Purchases.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		NotesID:       req.NotesID,
		Amount:        req.Amount,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
	})
	if err != nil {
		writeServiceError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// VerifyPayment checks the gateway signature and completes the purchase
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	purchase, err := h.Purchases.VerifyPayment(c.Request.Context(), services.VerifyPaymentInput{
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
		NotesID:   req.NotesID,
	})
	if err != nil {
		writeServiceError(c, err, "Failed to verify payment")
		return
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Message:     "Payment verified and recorded",
		DownloadURL: *purchase.DownloadURL,
	})
}

// MarkDownloaded lets the buyer record that the file was fetched
func (h *Handlers) MarkDownloaded(c *gin.Context) {
	var req MarkDownloadedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	purchase, err := h.Purchases.MarkDownloadedByCustomer(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		writeServiceError(c, err, "Failed to mark download")
		return
	}

	response.SuccessJSON(c, purchase)
}
