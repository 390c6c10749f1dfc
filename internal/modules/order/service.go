package order

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrChargeFailed is returned by reference polling when the async
// charge creation ended in failure; the client stops polling.
var ErrChargeFailed = errors.New("charge creation failed")

// ErrReferencePending is returned while the async charge job has not
// yet populated the entity/reference pair.
var ErrReferencePending = errors.New("payment reference not yet available")

// ChargeEnqueuer hands a freshly created order to the asynchronous
// charge worker. Implemented by the payment module.
type ChargeEnqueuer interface {
	Enqueue(merchantTransactionID string)
}

// Service defines checkout business logic.
type Service interface {
	// CreatePayment persists a PENDING order and enqueues the charge
	// job. It returns immediately; callers poll GetPaymentReference.
	CreatePayment(ctx context.Context, partnerID string, req CreatePaymentRequest) (*CreatePaymentResponse, error)

	// GetPaymentReference returns the entity/reference pair once the
	// charge worker stored it, ErrReferencePending before that, and
	// ErrChargeFailed for orders whose charge creation failed.
	GetPaymentReference(ctx context.Context, partnerID, mtxID string) (*PaymentReference, error)

	ListPartnerOrders(ctx context.Context, partnerID string) ([]*Order, error)
}

type service struct {
	repo    Repository
	charges ChargeEnqueuer
	logger  *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, charges ChargeEnqueuer, logger *zap.Logger) Service {
	return &service{repo: repo, charges: charges, logger: logger}
}

func (s *service) CreatePayment(ctx context.Context, partnerID string, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	pid, err := uuid.Parse(partnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid partner id: %w", err)
	}

	var items []*Item
	var total float64
	for _, ci := range req.Items {
		if ci.SKU == "" {
			return nil, fmt.Errorf("item sku is required")
		}
		if ci.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be > 0 for sku %s", ci.SKU)
		}
		if ci.Price < 0 {
			return nil, fmt.Errorf("price must be >= 0 for sku %s", ci.SKU)
		}
		lineTotal := round2(ci.Price * float64(ci.Quantity))
		total += lineTotal
		items = append(items, &Item{
			ID:        uuid.New(),
			SKU:       ci.SKU,
			Name:      ci.Name,
			Quantity:  ci.Quantity,
			UnitPrice: ci.Price,
			LineTotal: lineTotal,
		})
	}

	// The merchant transaction id exists before the job is enqueued:
	// it joins the order, the gateway charge and the webhook.
	mtxID := uuid.New().String()

	o := &Order{
		ID:                    uuid.New(),
		PartnerID:             pid,
		MerchantTransactionID: mtxID,
		TotalAmount:           round2(total),
		Currency:              "AOA",
		Status:                StatusPending,
		ShippingDetails:       req.Details,
		Items:                 items,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.charges.Enqueue(mtxID)
	s.logger.Info("order accepted",
		zap.String("merchant_transaction_id", mtxID),
		zap.Float64("total", o.TotalAmount),
		zap.Int("items", len(items)))

	return &CreatePaymentResponse{
		MerchantTransactionID: mtxID,
		Message:               "payment is being processed",
	}, nil
}

func (s *service) GetPaymentReference(ctx context.Context, partnerID, mtxID string) (*PaymentReference, error) {
	o, err := s.repo.GetByMerchantTransactionID(ctx, mtxID)
	if err != nil {
		return nil, err
	}
	if o.PartnerID.String() != partnerID {
		return nil, ErrNotFound
	}
	if o.Status == StatusFailed {
		return nil, ErrChargeFailed
	}
	if o.PaymentEntity == "" || o.PaymentReference == "" {
		return nil, ErrReferencePending
	}
	return &PaymentReference{
		Entity:    o.PaymentEntity,
		Reference: o.PaymentReference,
		Amount:    o.TotalAmount,
	}, nil
}

func (s *service) ListPartnerOrders(ctx context.Context, partnerID string) ([]*Order, error) {
	return s.repo.ListByPartner(ctx, partnerID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
