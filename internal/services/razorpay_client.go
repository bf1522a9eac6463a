package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"notes-marketplace-api/internal/config"
)

// PaymentGateway mints orders the customer pays against out of band
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
}

// GatewayOrderRequest is an order in major currency units
type GatewayOrderRequest struct {
	Amount   float64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder is the order as returned by Razorpay; Amount is in paise
type GatewayOrder struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
	Raw      []byte            `json:"-"`
}

// RazorpayError represents a non-2xx response from the orders API
type RazorpayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *RazorpayError) Error() string {
	return fmt.Sprintf("razorpay request failed with status %d: %s %s", e.StatusCode, e.Code, e.Description)
}

// RazorpayClient talks to the Razorpay orders API with basic auth
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewRazorpayClient creates a client from the application config
func NewRazorpayClient() *RazorpayClient {
	return NewRazorpayClientWith(
		config.AppConfig.RazorpayBaseURL,
		config.AppConfig.RazorpayKeyID,
		config.AppConfig.RazorpayKeySecret,
	)
}

// NewRazorpayClientWith creates a client against an explicit endpoint
func NewRazorpayClientWith(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type razorpayOrderBody struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates an order; the amount is converted to paise
func (c *RazorpayClient) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	body, err := json.Marshal(razorpayOrderBody{
		Amount:   ToPaise(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody razorpayErrorBody
		_ = json.Unmarshal(raw, &errBody)
		return nil, &RazorpayError{
			StatusCode:  resp.StatusCode,
			Code:        errBody.Error.Code,
			Description: errBody.Error.Description,
		}
	}

	var order GatewayOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay response has no order id")
	}
	order.Raw = raw
	return &order, nil
}

// ToPaise converts a rupee amount to the smallest currency unit
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
