package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmbondo/kitanda-backend/internal/modules/order"
	"github.com/jmbondo/kitanda-backend/internal/modules/partner"
	"go.uber.org/zap"
)

// OrderStore is the slice of order storage the payment module needs.
// Satisfied by order.Repository.
type OrderStore interface {
	GetByMerchantTransactionID(ctx context.Context, mtxID string) (*order.Order, error)
	SetChargeResult(ctx context.Context, mtxID, gatewayTxID, entity, reference string) error
	TransitionStatus(ctx context.Context, mtxID string, to order.Status) (bool, error)
}

// PartnerLookup resolves the customer email for confirmation mail.
// Satisfied by partner.Repository.
type PartnerLookup interface {
	GetByID(ctx context.Context, id string) (*partner.Partner, error)
}

// ConfirmationMailer sends the order confirmation once a charge
// reference exists. Satisfied by mailer.Mailer.
type ConfirmationMailer interface {
	SendOrderConfirmation(to string, o *order.Order) error
}

// Worker processes charge-creation jobs off the checkout path so the
// client sees 202 immediately. Jobs are identified by merchant
// transaction id only; everything else is reloaded from the database.
type Worker struct {
	jobs       chan string
	gateway    Gateway
	orders     OrderStore
	partners   PartnerLookup
	mailer     ConfirmationMailer
	adminEmail string
	workers    int
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewWorker(gateway Gateway, orders OrderStore, partners PartnerLookup, mailer ConfirmationMailer, adminEmail string, workers int, logger *zap.Logger) *Worker {
	if workers < 1 {
		workers = 1
	}
	return &Worker{
		jobs:       make(chan string, 256),
		gateway:    gateway,
		orders:     orders,
		partners:   partners,
		mailer:     mailer,
		adminEmail: adminEmail,
		workers:    workers,
		logger:     logger,
	}
}

// Start launches the worker goroutines. They drain until Stop closes
// the queue or the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

// Stop closes the queue and waits for in-flight jobs.
func (w *Worker) Stop() {
	close(w.jobs)
	w.wg.Wait()
}

// Enqueue hands a pending order to the charge workers. A full queue
// fails the order instead of blocking the checkout response.
func (w *Worker) Enqueue(merchantTransactionID string) {
	select {
	case w.jobs <- merchantTransactionID:
	default:
		w.logger.Error("charge queue full, failing order",
			zap.String("merchant_transaction_id", merchantTransactionID))
		if _, err := w.orders.TransitionStatus(context.Background(), merchantTransactionID, order.StatusFailed); err != nil {
			w.logger.Error("failing order after queue overflow", zap.Error(err))
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case mtxID, ok := <-w.jobs:
			if !ok {
				return
			}
			w.process(ctx, mtxID)
		}
	}
}

// process requests the charge reference for one order. There is no
// in-job retry: a gateway failure marks the order FAILED and the
// client's reference polling surfaces it.
func (w *Worker) process(ctx context.Context, mtxID string) {
	o, err := w.orders.GetByMerchantTransactionID(ctx, mtxID)
	if err != nil {
		w.logger.Error("charge job: order lookup failed",
			zap.String("merchant_transaction_id", mtxID), zap.Error(err))
		return
	}
	if o.Status != order.StatusPending {
		w.logger.Warn("charge job: order no longer pending, skipping",
			zap.String("merchant_transaction_id", mtxID), zap.String("status", string(o.Status)))
		return
	}

	charge, err := w.gateway.CreateCharge(ctx, &ChargeRequest{
		Amount:                o.TotalAmount,
		Currency:              o.Currency,
		Description:           fmt.Sprintf("Encomenda %s", mtxID),
		MerchantTransactionID: mtxID,
		PaymentMethod:         "REFERENCE",
	})
	if err != nil {
		w.logger.Error("charge creation failed",
			zap.String("merchant_transaction_id", mtxID), zap.Error(err))
		if _, terr := w.orders.TransitionStatus(ctx, mtxID, order.StatusFailed); terr != nil {
			w.logger.Error("marking order failed", zap.Error(terr))
		}
		return
	}

	if err := w.orders.SetChargeResult(ctx, mtxID, charge.ID, charge.Entity, charge.ReferenceNumber); err != nil {
		w.logger.Error("persisting charge result",
			zap.String("merchant_transaction_id", mtxID), zap.Error(err))
		return
	}
	w.logger.Info("charge created",
		zap.String("merchant_transaction_id", mtxID),
		zap.String("entity", charge.Entity),
		zap.String("reference", charge.ReferenceNumber))

	w.sendConfirmations(ctx, mtxID)
}

// sendConfirmations mails the customer and the back office. Mail
// failures are logged, never fatal: the charge already exists.
func (w *Worker) sendConfirmations(ctx context.Context, mtxID string) {
	o, err := w.orders.GetByMerchantTransactionID(ctx, mtxID)
	if err != nil {
		w.logger.Error("confirmation: order reload failed", zap.Error(err))
		return
	}

	if p, err := w.partners.GetByID(ctx, o.PartnerID.String()); err == nil {
		if err := w.mailer.SendOrderConfirmation(p.Email, o); err != nil {
			w.logger.Error("confirmation mail to customer failed", zap.Error(err))
		}
	} else {
		w.logger.Error("confirmation: partner lookup failed", zap.Error(err))
	}

	if w.adminEmail != "" {
		if err := w.mailer.SendOrderConfirmation(w.adminEmail, o); err != nil {
			w.logger.Error("confirmation mail to admin failed", zap.Error(err))
		}
	}
}
