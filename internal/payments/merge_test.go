package payments

import (
	"reflect"
	"testing"

	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	"github.com/google/uuid"
)

func str(s string) *string { return &s }

func checkoutFields(intentID string) PaymentFields {
	auctionID := uuid.MustParse("6f1b0a46-0000-0000-0000-000000000001")
	userID := uuid.MustParse("6f1b0a46-0000-0000-0000-000000000002")
	return PaymentFields{
		UserID:          &userID,
		AuctionID:       &auctionID,
		StripeSessionID: str("cs_test_1"),
		PaymentIntentID: str(intentID),
		InvoiceID:       str("in_test_1"),
		AmountCents:     5000,
		Currency:        "USD",
		Status:          enums.PaymentStatusPaid,
		ReceiptURL:      str("https://pay.stripe.com/receipts/checkout"),
	}
}

func chargeFields(intentID string) PaymentFields {
	return PaymentFields{
		PaymentIntentID: str(intentID),
		AmountCents:     5000,
		Currency:        "usd",
		Status:          enums.PaymentStatusPaid,
		ReceiptURL:      str("https://pay.stripe.com/receipts/charge"),
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	incoming := checkoutFields("pi_1")

	once := mergePaymentFields(models.Payment{}, incoming)
	twice := mergePaymentFields(once, incoming)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeOrderIndependentForSameTransaction(t *testing.T) {
	checkout := checkoutFields("pi_1")
	charge := chargeFields("pi_1")

	ab := mergePaymentFields(mergePaymentFields(models.Payment{}, checkout), charge)
	ba := mergePaymentFields(mergePaymentFields(models.Payment{}, charge), checkout)

	// identity fields converge; the receipt URL is whichever event carried one
	// last, and both carried a non-empty one here
	if *ab.PaymentIntentID != *ba.PaymentIntentID {
		t.Fatalf("payment intent diverged: %v vs %v", *ab.PaymentIntentID, *ba.PaymentIntentID)
	}
	if ab.Status != enums.PaymentStatusPaid || ba.Status != enums.PaymentStatusPaid {
		t.Fatalf("both orders should settle paid, got %s / %s", ab.Status, ba.Status)
	}
	if ab.AmountCents != ba.AmountCents || ab.Currency != ba.Currency {
		t.Fatalf("amount/currency diverged: %+v vs %+v", ab, ba)
	}
	if ab.InvoiceID == nil || ba.InvoiceID == nil || *ab.InvoiceID != *ba.InvoiceID {
		t.Fatalf("invoice id diverged: %+v vs %+v", ab.InvoiceID, ba.InvoiceID)
	}
	if ab.ReceiptURL == nil || ba.ReceiptURL == nil {
		t.Fatal("receipt URL must survive both orders")
	}
}

func TestMergeNeverNullsAStoredReceiptURL(t *testing.T) {
	seeded := mergePaymentFields(models.Payment{}, chargeFields("pi_1"))
	if seeded.ReceiptURL == nil {
		t.Fatal("setup: receipt URL should be set")
	}

	later := PaymentFields{
		PaymentIntentID: str("pi_1"),
		AmountCents:     5000,
		Status:          enums.PaymentStatusPaid,
		ReceiptURL:      nil,
	}
	merged := mergePaymentFields(seeded, later)
	if merged.ReceiptURL == nil || *merged.ReceiptURL != *seeded.ReceiptURL {
		t.Fatalf("receipt URL was lost: %+v", merged.ReceiptURL)
	}

	// an empty string is treated as absent too
	merged = mergePaymentFields(seeded, PaymentFields{ReceiptURL: str("   ")})
	if merged.ReceiptURL == nil || *merged.ReceiptURL != *seeded.ReceiptURL {
		t.Fatalf("blank receipt URL overwrote stored value: %+v", merged.ReceiptURL)
	}
}

func TestMergeFirstIdentityWins(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	row := mergePaymentFields(models.Payment{}, PaymentFields{UserID: &first})
	row = mergePaymentFields(row, PaymentFields{UserID: &second})

	if row.UserID == nil || *row.UserID != first {
		t.Fatalf("expected first user id %s to win, got %v", first, row.UserID)
	}
}

func TestMergePaidIsSticky(t *testing.T) {
	row := mergePaymentFields(models.Payment{}, PaymentFields{Status: enums.PaymentStatusPaid})
	row = mergePaymentFields(row, PaymentFields{Status: enums.PaymentStatusPending})

	if row.Status != enums.PaymentStatusPaid {
		t.Fatalf("paid must not be demoted, got %s", row.Status)
	}
}

func TestMergeNormalizesCurrencyAndSanitizesURLs(t *testing.T) {
	row := mergePaymentFields(models.Payment{}, PaymentFields{
		Currency:   "USD",
		ReceiptURL: str(" `https://pay.stripe.com/receipts/x` "),
	})

	if row.Currency != "usd" {
		t.Fatalf("expected lowercase currency, got %q", row.Currency)
	}
	if row.ReceiptURL == nil || *row.ReceiptURL != "https://pay.stripe.com/receipts/x" {
		t.Fatalf("expected sanitized receipt URL, got %v", row.ReceiptURL)
	}
}
