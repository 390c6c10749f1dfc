package partner

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no partner matches the lookup.
var ErrNotFound = errors.New("partner not found")

// Repository defines partner account storage.
type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, id string) (*Partner, error)
	GetByEmail(ctx context.Context, email string) (*Partner, error)
	UpdateDiscount(ctx context.Context, id string, discount float64) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}
