package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
)

// Status is the onboarding state of a partner account. Accounts start
// pending and are approved or rejected through the back-office
// endpoints; only approved partners may browse and order.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// ParseStatus validates a status label from the admin API.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.ToUpper(strings.TrimSpace(s))); status {
	case StatusPendingApproval, StatusApproved, StatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown partner status %q", s)
	}
}

// Partner is a reseller or distributor account.
type Partner struct {
	ID                 uuid.UUID    `json:"id"`
	Email              string       `json:"email"`
	PasswordHash       string       `json:"-"`
	CompanyName        string       `json:"company_name"`
	TaxID              string       `json:"tax_id,omitempty"`
	BusinessModel      pricing.Tier `json:"business_model"`
	DiscountPercentage float64      `json:"discount_percentage"`
	Status             Status       `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
