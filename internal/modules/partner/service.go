package partner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
	"golang.org/x/crypto/bcrypt"
)

// Service defines partner account business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Partner, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, id string) (*Partner, error)

	// PricingContext reads the caller's tier and discount fresh from
	// the database. It is deliberately not cached: a mid-session
	// discount change must show on the very next priced request.
	PricingContext(ctx context.Context, id string) (pricing.PartnerContext, error)

	// SetStatus moves a partner through the approval workflow.
	SetStatus(ctx context.Context, id string, status Status) error

	// SetDiscount updates a partner's negotiated discount percentage.
	SetDiscount(ctx context.Context, id string, discount float64) error
}

// RegisterRequest is the payload for partner self-registration.
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CompanyName   string `json:"company_name"`
	TaxID         string `json:"tax_id,omitempty"`
	BusinessModel string `json:"business_model"` // B2B | B2C
}

type service struct {
	repo      Repository
	jwtSecret []byte
}

// NewService creates a new partner service.
func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: []byte(jwtSecret)}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Partner, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	tier, err := pricing.ParseTier(req.BusinessModel)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &Partner{
		ID:            uuid.New(),
		Email:         req.Email,
		PasswordHash:  string(hash),
		CompanyName:   req.CompanyName,
		TaxID:         req.TaxID,
		BusinessModel: tier,
		Status:        StatusPendingApproval,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	if p.Status != StatusApproved {
		return "", fmt.Errorf("partner account is %s", p.Status)
	}

	claims := &jwt.StandardClaims{
		Subject:   p.ID.String(),
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *service) GetProfile(ctx context.Context, id string) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetStatus(ctx context.Context, id string, status Status) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *service) SetDiscount(ctx context.Context, id string, discount float64) error {
	if discount < 0 || discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100")
	}
	return s.repo.UpdateDiscount(ctx, id, discount)
}

func (s *service) PricingContext(ctx context.Context, id string) (pricing.PartnerContext, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pricing.PartnerContext{}, err
	}
	return pricing.PartnerContext{
		Tier:               p.BusinessModel,
		DiscountPercentage: p.DiscountPercentage,
	}, nil
}
