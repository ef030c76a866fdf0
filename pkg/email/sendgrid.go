package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

const mailSendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Notifier delivers transactional mail. Implementations must never let a
// delivery failure propagate into caller state; errors are for logging only.
type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, input PaymentConfirmedInput) error
}

// PaymentConfirmedInput carries everything the purchase confirmation needs.
type PaymentConfirmedInput struct {
	Email      string
	PayerName  string
	ItemName   string
	ImageURL   string
	ReceiptURL string
	InvoiceURL string
}

// Client talks to the Sendgrid v3 mail-send API.
type Client struct {
	apiKey string
	from   string
	http   *http.Client
	logg   *logger.Logger
}

// NewClient builds a Sendgrid-backed notifier. A missing API key returns a
// disabled client that drops mail with a warning rather than an error, so
// local environments work without credentials.
func NewClient(cfg config.SendgridConfig, logg *logger.Logger) *Client {
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		from:   strings.TrimSpace(cfg.DefaultFrom),
		http:   &http.Client{Timeout: 10 * time.Second},
		logg:   logg,
	}
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailPayload struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress   `json:"from"`
	Subject string        `json:"subject"`
	Content []mailContent `json:"content"`
}

// NotifyPaymentConfirmed sends the purchase confirmation email.
func (c *Client) NotifyPaymentConfirmed(ctx context.Context, input PaymentConfirmedInput) error {
	if c == nil || c.apiKey == "" {
		if c != nil && c.logg != nil {
			c.logg.Warn(ctx, "sendgrid disabled, dropping purchase confirmation")
		}
		return nil
	}
	if input.Email == "" {
		return errors.New("recipient email is required")
	}

	name := input.PayerName
	if name == "" {
		name = "Customer"
	}

	payload := mailPayload{
		From:    mailAddress{Email: c.from, Name: "Bidhouse"},
		Subject: "Your Purchase Confirmation – Bidhouse",
		Content: []mailContent{
			{Type: "text/plain", Value: plainBody(name, input)},
			{Type: "text/html", Value: htmlBody(name, input)},
		},
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []mailAddress `json:"to"`
	}{To: []mailAddress{{Email: input.Email, Name: name}}})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mailSendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d", resp.StatusCode)
	}
	return nil
}

func plainBody(name string, input PaymentConfirmedInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n", name)
	b.WriteString("Thank you for your purchase. Your payment has been successfully processed.\n")
	fmt.Fprintf(&b, "Item: %s\n", input.ItemName)
	if input.ReceiptURL != "" {
		fmt.Fprintf(&b, "Receipt: %s\n", input.ReceiptURL)
	}
	if input.InvoiceURL != "" {
		fmt.Fprintf(&b, "Invoice: %s\n", input.InvoiceURL)
	}
	b.WriteString("Best regards, Bidhouse Team")
	return b.String()
}

func htmlBody(name string, input PaymentConfirmedInput) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Segoe UI, Arial, sans-serif;color:#111">`)
	fmt.Fprintf(&b, "<p>Dear %s,</p>", name)
	b.WriteString("<p>Thank you for your purchase. Your payment has been successfully processed.</p>")
	fmt.Fprintf(&b, "<p><strong>Item:</strong> %s</p>", input.ItemName)
	if input.ImageURL != "" {
		fmt.Fprintf(&b, `<p style="margin:16px 0"><img src=%q alt=%q style="max-width:520px;border-radius:8px" /></p>`, input.ImageURL, input.ItemName)
	}
	if input.ReceiptURL != "" {
		fmt.Fprintf(&b, `<p><strong>Receipt:</strong> <a href=%q>%s</a></p>`, input.ReceiptURL, input.ReceiptURL)
	}
	if input.InvoiceURL != "" {
		fmt.Fprintf(&b, `<p><strong>Invoice:</strong> <a href=%q>%s</a></p>`, input.InvoiceURL, input.InvoiceURL)
	}
	b.WriteString("<p>If you have any questions, reply to this email.</p>")
	b.WriteString("<p>Best regards,<br/>Bidhouse Team</p></div>")
	return b.String()
}
