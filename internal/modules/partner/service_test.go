package partner

import (
	"context"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory partner store used across the package tests.
type memRepo struct {
	byID map[string]*Partner
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*Partner{}} }

func (r *memRepo) Create(ctx context.Context, p *Partner) error {
	r.byID[p.ID.String()] = p
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*Partner, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*Partner, error) {
	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) UpdateDiscount(ctx context.Context, id string, discount float64) error {
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.DiscountPercentage = discount
	return nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

func TestRegisterStartsPendingWithHashedPassword(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "test-secret")

	p, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "loja@parceiro.ao",
		Password:      "muito-secreto",
		CompanyName:   "Loja do Bairro",
		TaxID:         "5417000000",
		BusinessModel: "B2B",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPendingApproval, p.Status)
	assert.Equal(t, pricing.TierB2B, p.BusinessModel)
	assert.NotEqual(t, "muito-secreto", p.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("muito-secreto")))
}

func TestRegisterRejectsUnknownBusinessModel(t *testing.T) {
	svc := NewService(newMemRepo(), "test-secret")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "loja@parceiro.ao",
		Password:      "pw",
		BusinessModel: "B2B2C",
	})
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{BusinessModel: "B2C"})
	assert.Error(t, err, "email and password are required")
}

func TestLoginRequiresApproval(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "test-secret")

	p, err := svc.Register(context.Background(), RegisterRequest{
		Email: "loja@parceiro.ao", Password: "muito-secreto", BusinessModel: "B2C",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "loja@parceiro.ao", "muito-secreto")
	assert.Error(t, err, "pending accounts cannot log in")

	require.NoError(t, svc.SetStatus(context.Background(), p.ID.String(), StatusApproved))

	token, err := svc.Login(context.Background(), "loja@parceiro.ao", "muito-secreto")
	require.NoError(t, err)

	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, p.ID.String(), claims.Subject)

	_, err = svc.Login(context.Background(), "loja@parceiro.ao", "errada")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "desconhecida@parceiro.ao", "muito-secreto")
	assert.Error(t, err)
}

func TestPricingContextReadsFreshDiscount(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "test-secret")

	p, err := svc.Register(context.Background(), RegisterRequest{
		Email: "loja@parceiro.ao", Password: "pw", BusinessModel: "B2B",
	})
	require.NoError(t, err)
	id := p.ID.String()

	require.NoError(t, svc.SetDiscount(context.Background(), id, 10))
	pctx, err := svc.PricingContext(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierB2B, pctx.Tier)
	assert.Equal(t, 10.0, pctx.DiscountPercentage)

	// No caching: the very next read sees the new discount.
	require.NoError(t, svc.SetDiscount(context.Background(), id, 25))
	pctx, err = svc.PricingContext(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 25.0, pctx.DiscountPercentage)
}

func TestSetDiscountValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "test-secret")

	p, err := svc.Register(context.Background(), RegisterRequest{
		Email: "loja@parceiro.ao", Password: "pw", BusinessModel: "B2B",
	})
	require.NoError(t, err)

	assert.Error(t, svc.SetDiscount(context.Background(), p.ID.String(), -1))
	assert.Error(t, svc.SetDiscount(context.Background(), p.ID.String(), 101))
	assert.ErrorIs(t, svc.SetDiscount(context.Background(), "missing", 10), ErrNotFound)
	assert.ErrorIs(t, svc.SetStatus(context.Background(), "missing", StatusApproved), ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	status, err = ParseStatus(" REJECTED ")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, status)

	_, err = ParseStatus("BANNED")
	assert.Error(t, err)
}
