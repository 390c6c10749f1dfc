package order

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the payment lifecycle of an order. PENDING is the only
// non-terminal state; the webhook transition to SUCCESS or FAILED
// happens at most once.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// NormalizeStatus maps the gateway's status vocabulary onto ours.
func NormalizeStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "PAID", "SUCCESSFUL", "COMPLETED", "ACCEPTED":
		return StatusSuccess
	case "PENDING", "PROCESSING", "CREATED":
		return StatusPending
	default:
		return StatusFailed
	}
}

// Order is a partner checkout awaiting (or past) payment. The merchant
// transaction id is the single join key between the order, the gateway
// charge and the asynchronous webhook confirmation.
type Order struct {
	ID                    uuid.UUID       `json:"id"`
	PartnerID             uuid.UUID       `json:"partner_id"`
	MerchantTransactionID string          `json:"merchant_transaction_id"`
	AppyPayTransactionID  string          `json:"appy_pay_transaction_id,omitempty"`
	PaymentEntity         string          `json:"payment_entity,omitempty"`
	PaymentReference      string          `json:"payment_reference,omitempty"`
	TotalAmount           float64         `json:"total_amount"`
	Currency              string          `json:"currency"`
	Status                Status          `json:"status"`
	ShippingDetails       json.RawMessage `json:"shipping_details,omitempty"`
	Items                 []*Item         `json:"items,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Item is one immutable order line.
type Item struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// CartItem is the checkout payload for one line.
type CartItem struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreatePaymentRequest is the checkout payload.
type CreatePaymentRequest struct {
	Items   []CartItem      `json:"items"`
	Details json.RawMessage `json:"details,omitempty"`
}

// CreatePaymentResponse acknowledges an accepted checkout. The charge
// itself is created asynchronously; callers poll the reference endpoint.
type CreatePaymentResponse struct {
	MerchantTransactionID string `json:"merchantTransactionId"`
	Message               string `json:"message"`
}

// PaymentReference is the polling response once the gateway populated
// the payment entity and reference.
type PaymentReference struct {
	Entity    string  `json:"entity"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}
