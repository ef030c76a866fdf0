package email

import (
	"context"
	"strings"
	"testing"

	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestNotifyPaymentConfirmedDisabledWithoutKey(t *testing.T) {
	client := NewClient(config.SendgridConfig{}, testLogger())

	err := client.NotifyPaymentConfirmed(context.Background(), PaymentConfirmedInput{
		Email:    "buyer@example.com",
		ItemName: "First Editions",
	})
	if err != nil {
		t.Fatalf("disabled client should drop mail silently, got %v", err)
	}
}

func TestNotifyPaymentConfirmedRequiresRecipient(t *testing.T) {
	client := NewClient(config.SendgridConfig{APIKey: "SG.test"}, testLogger())

	err := client.NotifyPaymentConfirmed(context.Background(), PaymentConfirmedInput{})
	if err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestHTMLBodyOmitsEmptySections(t *testing.T) {
	body := htmlBody("Ana", PaymentConfirmedInput{
		ItemName:   "Rare Atlas",
		ReceiptURL: "https://pay.stripe.com/receipts/abc",
	})

	if !strings.Contains(body, "Dear Ana") {
		t.Fatalf("missing greeting: %s", body)
	}
	if !strings.Contains(body, "Rare Atlas") {
		t.Fatalf("missing item name: %s", body)
	}
	if !strings.Contains(body, "https://pay.stripe.com/receipts/abc") {
		t.Fatalf("missing receipt link: %s", body)
	}
	if strings.Contains(body, "<img") {
		t.Fatalf("image section should be omitted when empty: %s", body)
	}
	if strings.Contains(body, "Invoice:") {
		t.Fatalf("invoice section should be omitted when empty: %s", body)
	}
}
