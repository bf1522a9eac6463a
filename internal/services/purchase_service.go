package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"
	"notes-marketplace-api/pkg/metrics"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrNoteMismatch       = errors.New("notes_id does not match the order")
)

// ReceiptMailer delivers the post-payment receipt
type ReceiptMailer interface {
	SendPurchaseReceipt(ctx context.Context, purchase *models.Purchase, note *models.Note) error
}

// PurchaseService owns the purchase lifecycle
type PurchaseService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	secret   string
	currency string
	mailer   ReceiptMailer
	now      func() time.Time
}

// NewPurchaseService creates a purchase service from the application config
func NewPurchaseService() *PurchaseService {
	var mailer ReceiptMailer
	if config.AppConfig.BrevoAPIKey != "" {
		mailer = NewBrevoService()
	}
	return NewPurchaseServiceWith(database.GetDB(), NewRazorpayClient(), config.AppConfig.RazorpayKeySecret, config.AppConfig.Currency, mailer)
}

// NewPurchaseServiceWith creates a purchase service with explicit collaborators
func NewPurchaseServiceWith(db *gorm.DB, gateway PaymentGateway, secret, currency string, mailer ReceiptMailer) *PurchaseService {
	if currency == "" {
		currency = "INR"
	}
	return &PurchaseService{
		db:       db,
		gateway:  gateway,
		secret:   secret,
		currency: currency,
		mailer:   mailer,
		now:      time.Now,
	}
}

// CreateOrderInput is a checkout request
type CreateOrderInput struct {
	NotesID       string
	Amount        float64
	CustomerEmail string
	CustomerName  string
}

// CreateOrderResult is what the payment widget needs; Amount is in paise
type CreateOrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder mints a gateway order and records a pending purchase for it.
// The amount is trusted as supplied. When the gateway call fails nothing is
// written; when the write fails the gateway order is left orphaned upstream,
// where it expires unpaid.
func (s *PurchaseService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.NotesID == "" || in.CustomerEmail == "" || in.CustomerName == "" {
		return nil, ErrMissingFields
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	order, err := s.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   in.Amount,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("receipt_%d", s.now().UnixMilli()),
		Notes: map[string]string{
			"notes_id":       in.NotesID,
			"customer_email": in.CustomerEmail,
			"customer_name":  in.CustomerName,
		},
	})
	if err != nil {
		logging.Errorf("Failed to create gateway order for note %s: %v", in.NotesID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	purchase := &models.Purchase{
		NotesID:         in.NotesID,
		CustomerEmail:   in.CustomerEmail,
		CustomerName:    in.CustomerName,
		Amount:          in.Amount,
		Currency:        s.currency,
		RazorpayOrderID: order.ID,
		Status:          models.PurchaseStatusPending,
		GatewayOrder:    datatypes.JSON(order.Raw),
	}
	if err := database.CreatePurchase(s.db.WithContext(ctx), purchase); err != nil {
		metrics.OrphanedGatewayOrders.Inc()
		logging.Errorf("Gateway order %s created but purchase was not recorded: %v", order.ID, err)
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	metrics.OrdersCreated.Inc()
	logging.Infof("Purchase %s created for order %s (note %s)", purchase.ID, order.ID, in.NotesID)

	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}
	return &CreateOrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: currency,
	}, nil
}

// VerifyPaymentInput is the checkout callback payload
type VerifyPaymentInput struct {
	PaymentID string
	OrderID   string
	Signature string
	NotesID   string
}

// VerifyPayment checks the gateway signature and completes the purchase,
// snapshotting the note's current download URL onto it. Replaying a valid
// verification keeps the first snapshot.
func (s *PurchaseService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*models.Purchase, error) {
	if in.PaymentID == "" || in.OrderID == "" || in.Signature == "" || in.NotesID == "" {
		return nil, ErrMissingFields
	}

	if !VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature, s.secret) {
		metrics.Verifications.WithLabelValues("invalid_signature").Inc()
		logging.Warnf("Payment signature mismatch for order %s", in.OrderID)
		return nil, ErrInvalidSignature
	}

	db := s.db.WithContext(ctx)

	var note models.Note
	if err := db.Where("id = ?", in.NotesID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.Verifications.WithLabelValues("note_not_found").Inc()
			logging.Errorf("Paid order %s (payment %s) references missing note %s, purchase left pending",
				in.OrderID, in.PaymentID, in.NotesID)
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if strings.TrimSpace(note.DownloadURL) == "" {
		metrics.Verifications.WithLabelValues("note_not_found").Inc()
		logging.Errorf("Paid order %s (payment %s) references note %s without a file, purchase left pending",
			in.OrderID, in.PaymentID, in.NotesID)
		return nil, ErrNoteFileMissing
	}

	purchase, err := database.GetPurchaseByOrderID(db, in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.Verifications.WithLabelValues("purchase_not_found").Inc()
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase.NotesID != in.NotesID {
		metrics.Verifications.WithLabelValues("note_mismatch").Inc()
		return nil, ErrNoteMismatch
	}
	if purchase.Status == models.PurchaseStatusCancelled {
		metrics.Verifications.WithLabelValues("cancelled").Inc()
		return nil, ErrTransitionNotAllowed
	}
	wasCompleted := purchase.Status == models.PurchaseStatusCompleted

	now := s.now()
	fields := map[string]interface{}{
		"status":              models.PurchaseStatusCompleted,
		"razorpay_payment_id": in.PaymentID,
		"updated_at":          now,
	}
	// The URL is snapshotted once; a replay must not pick up a replaced file.
	snapshot := !wasCompleted || purchase.DownloadURL == nil || *purchase.DownloadURL == ""
	if snapshot {
		fields["download_url"] = note.DownloadURL
	}
	rows, err := database.UpdatePurchaseFields(db, purchase.ID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to complete purchase: %w", err)
	}
	if rows == 0 {
		return nil, ErrPurchaseNotFound
	}

	paymentID := in.PaymentID
	purchase.Status = models.PurchaseStatusCompleted
	purchase.RazorpayPaymentID = &paymentID
	if snapshot {
		downloadURL := note.DownloadURL
		purchase.DownloadURL = &downloadURL
	}
	purchase.UpdatedAt = now

	metrics.Verifications.WithLabelValues("completed").Inc()
	logging.Infof("Purchase %s completed with payment %s", purchase.ID, in.PaymentID)

	if s.mailer != nil && !wasCompleted {
		go s.sendReceipt(*purchase, note)
	}
	return purchase, nil
}

func (s *PurchaseService) sendReceipt(purchase models.Purchase, note models.Note) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.mailer.SendPurchaseReceipt(ctx, &purchase, &note); err != nil {
		logging.Errorf("Failed to send receipt for purchase %s: %v", purchase.ID, err)
	}
}

// UpdateStatus applies an admin status override through the transition table.
// Moving into completed needs a recorded payment and download URL.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id string, status models.PurchaseStatus) (*models.Purchase, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	db := s.db.WithContext(ctx)
	purchase, err := s.getPurchase(db, id)
	if err != nil {
		return nil, err
	}
	if purchase.Status == status {
		return purchase, nil
	}
	if !CanTransition(purchase.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, purchase.Status, status)
	}
	if status == models.PurchaseStatusCompleted &&
		(purchase.RazorpayPaymentID == nil || purchase.DownloadURL == nil || *purchase.DownloadURL == "") {
		return nil, fmt.Errorf("%w: no verified payment on record", ErrTransitionNotAllowed)
	}

	now := s.now()
	if _, err := database.UpdatePurchaseFields(db, id, map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}); err != nil {
		return nil, fmt.Errorf("failed to update purchase status: %w", err)
	}

	metrics.StatusOverrides.WithLabelValues(string(status)).Inc()
	logging.Infof("Purchase %s status changed from %s to %s", id, purchase.Status, status)

	purchase.Status = status
	purchase.UpdatedAt = now
	return purchase, nil
}

// SetDownloaded marks or clears the download marker. It never touches status.
func (s *PurchaseService) SetDownloaded(ctx context.Context, id string, marked bool) (*models.Purchase, error) {
	db := s.db.WithContext(ctx)
	purchase, err := s.getPurchase(db, id)
	if err != nil {
		return nil, err
	}

	var markedAt *time.Time
	if marked {
		t := s.now()
		markedAt = &t
	}
	if _, err := database.UpdatePurchaseFields(db, id, map[string]interface{}{
		"download_marked_at": markedAt,
		"updated_at":         s.now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to update download marker: %w", err)
	}

	purchase.DownloadMarkedAt = markedAt
	return purchase, nil
}

// UpdatePurchaseInput is an admin edit; nil fields are left untouched
type UpdatePurchaseInput struct {
	Status         *models.PurchaseStatus
	MarkDownloaded *bool
}

// UpdatePurchase applies any subset of an admin edit and returns the updated rows
func (s *PurchaseService) UpdatePurchase(ctx context.Context, id string, in UpdatePurchaseInput) ([]models.Purchase, error) {
	if id == "" || (in.Status == nil && in.MarkDownloaded == nil) {
		return nil, ErrMissingFields
	}
	if in.Status != nil {
		if _, err := s.UpdateStatus(ctx, id, *in.Status); err != nil {
			return nil, err
		}
	}
	if in.MarkDownloaded != nil {
		if _, err := s.SetDownloaded(ctx, id, *in.MarkDownloaded); err != nil {
			return nil, err
		}
	}

	purchase, err := s.getPurchase(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return []models.Purchase{*purchase}, nil
}

// MarkDownloadedByCustomer records that the buyer fetched the file. Both
// gateway ids must match a completed purchase.
func (s *PurchaseService) MarkDownloadedByCustomer(ctx context.Context, orderID, paymentID string) (*models.Purchase, error) {
	if orderID == "" || paymentID == "" {
		return nil, ErrMissingFields
	}

	purchase, err := database.GetPurchaseByOrderID(s.db.WithContext(ctx), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase.RazorpayPaymentID == nil || *purchase.RazorpayPaymentID != paymentID {
		return nil, ErrPurchaseNotFound
	}
	if purchase.Status != models.PurchaseStatusCompleted {
		return nil, ErrNotDownloadable
	}
	return s.SetDownloaded(ctx, purchase.ID, true)
}

// ListWithNotes returns every purchase joined with its note, newest first
func (s *PurchaseService) ListWithNotes(ctx context.Context) ([]models.PurchaseWithNote, error) {
	purchases, err := database.ListPurchasesWithNotes(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (s *PurchaseService) getPurchase(db *gorm.DB, id string) (*models.Purchase, error) {
	purchase, err := database.GetPurchaseByID(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	return purchase, nil
}
