package payments

import (
	"context"
	"fmt"

	"github.com/bidhouse-app/bidhouse-backend/pkg/db"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/bidhouse-app/bidhouse-backend/pkg/email"
	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier is the confirmation-mail capability. Failures are logged and never
// affect reconciliation state.
type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, input email.PaymentConfirmedInput) error
}

// Service converges gateway events into payment rows.
type Service interface {
	ApplyCheckoutCompleted(ctx context.Context, input CheckoutCompletedInput) error
	ApplyChargeSucceeded(ctx context.Context, input ChargeSucceededInput) error
	ApplyInvoicePaymentSucceeded(ctx context.Context, input InvoicePaymentSucceededInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	receipts ReceiptFetcher
	notifier Notifier
	logg     *logger.Logger
}

// NewService builds the payment reconciler. receipts and notifier are
// optional; a nil value disables that enrichment.
func NewService(repo Repository, tx txRunner, receipts ReceiptFetcher, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		receipts: receipts,
		notifier: notifier,
		logg:     logg,
	}, nil
}

// ApplyCheckoutCompleted upserts the payment row keyed by payment intent. The
// receipt URL is fetched from the gateway when available; a gateway failure is
// recorded and reconciliation proceeds without it.
func (s *service) ApplyCheckoutCompleted(ctx context.Context, input CheckoutCompletedInput) error {
	if input.PaymentIntentID == "" {
		s.logg.Warn(ctx, "checkout event without payment intent, dropping")
		return nil
	}

	var receiptURL *string
	if s.receipts != nil {
		url, err := s.receipts.LatestChargeReceiptURL(ctx, input.PaymentIntentID)
		if err != nil {
			s.logg.Error(ctx, "fetching receipt url", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "latest charge lookup"))
		} else if url != "" {
			receiptURL = &url
		}
	}

	userID := input.UserID
	if userID == nil && input.CustomerEmail != "" {
		user, err := s.repo.FindUserByEmail(ctx, input.CustomerEmail)
		switch {
		case err == gorm.ErrRecordNotFound:
			// payment stays unattributed
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user by email")
		default:
			userID = &user.ID
		}
	}

	fields := PaymentFields{
		UserID:          userID,
		AuctionID:       input.AuctionID,
		StripeSessionID: optional(input.SessionID),
		PaymentIntentID: optional(input.PaymentIntentID),
		InvoiceID:       optional(input.InvoiceID),
		AmountCents:     input.AmountCents,
		Currency:        input.Currency,
		Status:          enums.PaymentStatusPaid,
		ReceiptURL:      receiptURL,
	}

	return s.upsertByIntent(ctx, input.PaymentIntentID, fields)
}

// ApplyChargeSucceeded enriches an existing row with the charge receipt. A
// charge with no prior checkout record carries no auction linkage and is
// dropped.
func (s *service) ApplyChargeSucceeded(ctx context.Context, input ChargeSucceededInput) error {
	if input.PaymentIntentID == "" || input.ReceiptURL == "" {
		s.logg.Warn(ctx, "charge event missing payment intent or receipt, dropping")
		return nil
	}

	fields := PaymentFields{
		AmountCents: input.AmountCents,
		Currency:    input.Currency,
		Status:      enums.PaymentStatusPaid,
		ReceiptURL:  optional(input.ReceiptURL),
	}

	return s.updateExisting(ctx,
		func(ctx context.Context, repo Repository) (*models.Payment, error) {
			return repo.FindByPaymentIntentID(ctx, input.PaymentIntentID)
		},
		fields, "charge without prior payment row, dropping")
}

// ApplyInvoicePaymentSucceeded enriches an existing row with the hosted
// invoice URL; an invoice with no prior record is dropped.
func (s *service) ApplyInvoicePaymentSucceeded(ctx context.Context, input InvoicePaymentSucceededInput) error {
	if input.InvoiceID == "" {
		s.logg.Warn(ctx, "invoice event without invoice id, dropping")
		return nil
	}

	fields := PaymentFields{
		AmountCents:      input.AmountCents,
		Currency:         input.Currency,
		Status:           enums.PaymentStatusPaid,
		HostedInvoiceURL: optional(input.HostedInvoiceURL),
	}

	return s.updateExisting(ctx,
		func(ctx context.Context, repo Repository) (*models.Payment, error) {
			return repo.FindByInvoiceID(ctx, input.InvoiceID)
		},
		fields, "invoice without prior payment row, dropping")
}

func (s *service) upsertByIntent(ctx context.Context, paymentIntentID string, fields PaymentFields) error {
	var settled *models.Payment
	var becamePaid bool

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByPaymentIntentID(ctx, paymentIntentID)
		switch {
		case err == gorm.ErrRecordNotFound:
			row := mergePaymentFields(models.Payment{ID: uuid.New()}, fields)
			created, err := repo.CreatePayment(ctx, &row)
			if err != nil {
				return err
			}
			settled = created
			becamePaid = created.Status == enums.PaymentStatusPaid
			return nil

		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payment by intent")

		default:
			wasPaid := existing.Status == enums.PaymentStatusPaid
			merged := mergePaymentFields(*existing, fields)
			if err := repo.SavePayment(ctx, &merged); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment")
			}
			settled = &merged
			becamePaid = !wasPaid && merged.Status == enums.PaymentStatusPaid
			return nil
		}
	})
	if err != nil {
		// concurrent deliveries can race the insert; converge on the winner's row
		if db.IsUniqueViolation(err, "") {
			return s.updateExisting(ctx,
				func(ctx context.Context, repo Repository) (*models.Payment, error) {
					return repo.FindByPaymentIntentID(ctx, paymentIntentID)
				},
				fields, "payment row vanished after unique violation")
		}
		return err
	}

	if becamePaid {
		s.notifyConfirmed(ctx, settled)
	}
	return nil
}

type findFunc func(ctx context.Context, repo Repository) (*models.Payment, error)

func (s *service) updateExisting(ctx context.Context, find findFunc, fields PaymentFields, dropMsg string) error {
	var settled *models.Payment
	var becamePaid bool

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := find(ctx, repo)
		switch {
		case err == gorm.ErrRecordNotFound:
			s.logg.Warn(ctx, dropMsg)
			return nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payment")
		}

		wasPaid := existing.Status == enums.PaymentStatusPaid
		merged := mergePaymentFields(*existing, fields)
		if err := repo.SavePayment(ctx, &merged); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment")
		}
		settled = &merged
		becamePaid = !wasPaid && merged.Status == enums.PaymentStatusPaid
		return nil
	})
	if err != nil {
		return err
	}

	if becamePaid {
		s.notifyConfirmed(ctx, settled)
	}
	return nil
}

// notifyConfirmed sends the purchase confirmation exactly once per payment:
// callers invoke it only on the unpaid-to-paid transition, and paid is sticky.
func (s *service) notifyConfirmed(ctx context.Context, payment *models.Payment) {
	if s.notifier == nil || payment == nil || payment.UserID == nil {
		return
	}
	if payment.AuctionID == nil {
		// partial payment data with no auction linkage; record it silently
		s.logg.Warn(ctx, "payment has no auction linkage, skipping confirmation mail")
		return
	}

	user, err := s.repo.FindUserByID(ctx, *payment.UserID)
	if err != nil {
		s.logg.Warn(ctx, "payer not found, skipping confirmation mail")
		return
	}

	auction, err := s.repo.FindAuctionByID(ctx, *payment.AuctionID)
	if err != nil {
		s.logg.Warn(ctx, "auction not found, skipping confirmation mail")
		return
	}
	itemName := auction.Name
	imageURL := ""
	if auction.FileKey != nil {
		imageURL = *auction.FileKey
	}

	input := email.PaymentConfirmedInput{
		Email:     user.Email,
		PayerName: user.Name,
		ItemName:  itemName,
		ImageURL:  imageURL,
	}
	if payment.ReceiptURL != nil {
		input.ReceiptURL = *payment.ReceiptURL
	}
	if payment.HostedInvoiceURL != nil {
		input.InvoiceURL = *payment.HostedInvoiceURL
	}

	if err := s.notifier.NotifyPaymentConfirmed(ctx, input); err != nil {
		s.logg.Error(ctx, "sending purchase confirmation", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
