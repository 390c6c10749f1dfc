package order

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no order matches the lookup.
var ErrNotFound = errors.New("order not found")

// Repository defines order storage.
type Repository interface {
	// Create persists the order and its items atomically.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id string) (*Order, error)
	GetByMerchantTransactionID(ctx context.Context, mtxID string) (*Order, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*Order, error)

	// SetChargeResult records the gateway transaction id and the
	// entity/reference pair returned by charge creation.
	SetChargeResult(ctx context.Context, mtxID, gatewayTxID, entity, reference string) error

	// TransitionStatus writes the new status only while the order is
	// still PENDING, and reports whether a transition actually
	// happened. This is the webhook idempotency guard: a replayed
	// success delivery, or a success arriving after the order already
	// failed, reports false and must not trigger a stock decrement.
	TransitionStatus(ctx context.Context, mtxID string, to Status) (bool, error)
}
