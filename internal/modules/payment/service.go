package payment

import (
	"context"
	"errors"

	"github.com/jmbondo/kitanda-backend/internal/modules/catalog"
	"github.com/jmbondo/kitanda-backend/internal/modules/order"
	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
	"go.uber.org/zap"
)

// ErrMissingFields is returned when a webhook lacks the merchant
// transaction id or the status.
var ErrMissingFields = errors.New("merchantTransactionId and status are required")

// StockStore decrements override stock. Satisfied by pricing.Repository.
type StockStore interface {
	DecrementStock(ctx context.Context, sku string, qty int) (pricing.StockDecrement, error)
}

// MirrorStore flips the catalog mirror's stock flag. Satisfied by
// catalog.MirrorRepository.
type MirrorStore interface {
	SetStockStatus(ctx context.Context, sku string, status catalog.StockStatus) error
}

// Service handles asynchronous payment-status callbacks.
type Service interface {
	HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookResult, error)
}

type service struct {
	orders OrderStore
	stock  StockStore
	mirror MirrorStore
	logger *zap.Logger
}

// NewService creates the webhook reconciliation service.
func NewService(orders OrderStore, stock StockStore, mirror MirrorStore, logger *zap.Logger) Service {
	return &service{orders: orders, stock: stock, mirror: mirror, logger: logger}
}

// HandleWebhook matches the callback to an order by merchant
// transaction id, writes the normalized status through the idempotency
// guard, and on a genuine transition to SUCCESS decrements stock for
// every line item. A redelivered success callback is acknowledged but
// mutates nothing.
func (s *service) HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookResult, error) {
	mtxID := payload.EffectiveTransactionID()
	status := payload.EffectiveStatus()
	if mtxID == "" || status == "" {
		return nil, ErrMissingFields
	}

	o, err := s.orders.GetByMerchantTransactionID(ctx, mtxID)
	if err != nil {
		return nil, err
	}

	normalized := order.NormalizeStatus(status)
	transitioned, err := s.orders.TransitionStatus(ctx, mtxID, normalized)
	if err != nil {
		return nil, err
	}

	result := &WebhookResult{
		MerchantTransactionID: mtxID,
		Status:                string(normalized),
		Transitioned:          transitioned,
	}

	if normalized != order.StatusSuccess || !transitioned {
		if !transitioned {
			s.logger.Warn("webhook ignored: order not in a transitionable state",
				zap.String("merchant_transaction_id", mtxID),
				zap.String("status", status))
		}
		return result, nil
	}

	for _, item := range o.Items {
		dec, err := s.stock.DecrementStock(ctx, item.SKU, item.Quantity)
		if err != nil {
			if errors.Is(err, pricing.ErrOverrideNotFound) {
				// Stock not tracked for this SKU; nothing to decrement.
				continue
			}
			s.logger.Error("stock decrement failed",
				zap.String("sku", item.SKU), zap.Error(err))
			continue
		}
		result.ItemsDecremented++

		if dec.DepletedNow() {
			if err := s.mirror.SetStockStatus(ctx, item.SKU, catalog.StockOutOfStock); err != nil {
				s.logger.Error("stock status flip failed",
					zap.String("sku", item.SKU), zap.Error(err))
			} else {
				s.logger.Info("sku depleted, flipped to outofstock",
					zap.String("sku", item.SKU))
			}
		}
	}

	s.logger.Info("webhook processed",
		zap.String("merchant_transaction_id", mtxID),
		zap.String("status", string(normalized)),
		zap.Int("items_decremented", result.ItemsDecremented))
	return result, nil
}
