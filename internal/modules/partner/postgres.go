package partner

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the postgres-backed partner store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, email, password_hash, company_name, tax_id, business_model,
	       discount_percentage, status, created_at, updated_at
	FROM partners`

func (r *postgresRepo) Create(ctx context.Context, p *Partner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO partners
		  (id, email, password_hash, company_name, tax_id, business_model,
		   discount_percentage, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Email, p.PasswordHash, p.CompanyName, p.TaxID,
		p.BusinessModel, p.DiscountPercentage, p.Status)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Partner, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Partner, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+` WHERE email=$1`, email))
}

func (r *postgresRepo) UpdateDiscount(ctx context.Context, id string, discount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE partners SET discount_percentage=$1, updated_at=NOW() WHERE id=$2`, discount, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE partners SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scan(row *sql.Row) (*Partner, error) {
	p := &Partner{}
	var taxID sql.NullString
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.CompanyName, &taxID,
		&p.BusinessModel, &p.DiscountPercentage, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if taxID.Valid {
		p.TaxID = taxID.String
	}
	return p, nil
}
