package services

import (
	"context"
	"fmt"
	"html"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// BrevoService sends transactional email through Brevo
type BrevoService struct {
	client    *brevo.APIClient
	FromEmail string
	FromName  string
}

// NewBrevoService creates a new Brevo service instance. Without an API key
// every send is skipped.
func NewBrevoService() *BrevoService {
	return NewBrevoServiceWith(
		config.AppConfig.BrevoAPIKey,
		"",
		config.AppConfig.BrevoFromEmail,
		config.AppConfig.BrevoFromName,
	)
}

// NewBrevoServiceWith creates a Brevo service against basePath, or the
// public API when basePath is empty.
func NewBrevoServiceWith(apiKey, basePath, fromEmail, fromName string) *BrevoService {
	s := &BrevoService{
		FromEmail: fromEmail,
		FromName:  fromName,
	}
	if apiKey != "" {
		cfg := brevo.NewConfiguration()
		cfg.AddDefaultHeader("api-key", apiKey)
		if basePath != "" {
			cfg.BasePath = basePath
		}
		s.client = brevo.NewAPIClient(cfg)
	}
	return s
}

// SendPurchaseReceipt emails the buyer their download link
func (s *BrevoService) SendPurchaseReceipt(ctx context.Context, purchase *models.Purchase, note *models.Note) error {
	if s.client == nil {
		return nil
	}
	if purchase.DownloadURL == nil || *purchase.DownloadURL == "" {
		return fmt.Errorf("purchase %s has no download url", purchase.ID)
	}

	subject := fmt.Sprintf("Your notes: %s", note.Title)
	htmlContent, textContent := receiptContent(purchase, note)

	_, _, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.FromName,
			Email: s.FromEmail,
		},
		To: []brevo.SendSmtpEmailTo{{
			Email: purchase.CustomerEmail,
			Name:  purchase.CustomerName,
		}},
		Subject:     subject,
		HtmlContent: htmlContent,
		TextContent: textContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}

	logging.Infof("Receipt sent for purchase %s", purchase.ID)
	return nil
}

func receiptContent(purchase *models.Purchase, note *models.Note) (string, string) {
	link := *purchase.DownloadURL
	paymentID := ""
	if purchase.RazorpayPaymentID != nil {
		paymentID = *purchase.RazorpayPaymentID
	}

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"><title>Your purchase</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h1 style="color: #333;">Thank you, %s</h1>
			<p>Your payment of %s %.2f for <strong>%s</strong> (%s, %s) was successful.</p>
			<p><a href="%s" style="background-color: #007bff; color: white; padding: 12px 20px; border-radius: 6px; text-decoration: none;">Download your notes</a></p>
			<p style="color: #999; font-size: 12px;">Payment ID: %s</p>
		</body>
		</html>
	`, html.EscapeString(purchase.CustomerName), purchase.Currency, purchase.Amount,
		html.EscapeString(note.Title), html.EscapeString(note.Subject), html.EscapeString(note.University),
		html.EscapeString(link), html.EscapeString(paymentID))

	textContent := fmt.Sprintf("Thank you, %s\n\nYour payment of %s %.2f for %s was successful.\nDownload: %s\nPayment ID: %s\n",
		purchase.CustomerName, purchase.Currency, purchase.Amount, note.Title, link, paymentID)

	return htmlContent, textContent
}
