package pricing

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the postgres-backed override store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT sku, price_b2b, price_b2c, stock_quantity, created_at, updated_at
	FROM price_overrides`

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*PriceOverride, error) {
	o, err := scanOverride(r.db.QueryRowContext(ctx, selectSQL+` WHERE sku=$1`, sku))
	if err == sql.ErrNoRows {
		return nil, ErrOverrideNotFound
	}
	return o, err
}

func (r *postgresRepo) GetBySKUs(ctx context.Context, skus []string) (map[string]*PriceOverride, error) {
	out := make(map[string]*PriceOverride, len(skus))
	if len(skus) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, selectSQL+` WHERE sku = ANY($1)`, pq.Array(skus))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out[o.SKU] = o
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, o *PriceOverride) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_overrides (sku, price_b2b, price_b2c, stock_quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (sku) DO UPDATE SET
		  price_b2b=EXCLUDED.price_b2b,
		  price_b2c=EXCLUDED.price_b2c,
		  stock_quantity=COALESCE(EXCLUDED.stock_quantity, price_overrides.stock_quantity),
		  updated_at=NOW()`,
		o.SKU, o.PriceB2B, o.PriceB2C, o.StockQuantity)
	return err
}

// DecrementStock runs the clamp as a single UPDATE so concurrent
// webhook deliveries touching the same SKU serialize on the row lock
// and no read-then-write race can lose an update. The self-join hands
// back the pre-decrement quantity for the depletion check.
func (r *postgresRepo) DecrementStock(ctx context.Context, sku string, qty int) (StockDecrement, error) {
	d := StockDecrement{SKU: sku}
	err := r.db.QueryRowContext(ctx, `
		UPDATE price_overrides o
		SET stock_quantity = GREATEST(0, o.stock_quantity - $2), updated_at = NOW()
		FROM (
			SELECT sku, stock_quantity FROM price_overrides
			WHERE sku = $1 AND stock_quantity IS NOT NULL
			FOR UPDATE
		) prev
		WHERE o.sku = prev.sku
		RETURNING prev.stock_quantity, o.stock_quantity`,
		sku, qty).Scan(&d.PreviousQuantity, &d.NewQuantity)
	if err == sql.ErrNoRows {
		return d, ErrOverrideNotFound
	}
	return d, err
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOverride(row rowScanner) (*PriceOverride, error) {
	o := &PriceOverride{}
	var b2b, b2c sql.NullFloat64
	var stock sql.NullInt64
	err := row.Scan(&o.SKU, &b2b, &b2c, &stock, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if b2b.Valid {
		o.PriceB2B = &b2b.Float64
	}
	if b2c.Valid {
		o.PriceB2C = &b2c.Float64
	}
	if stock.Valid {
		n := int(stock.Int64)
		o.StockQuantity = &n
	}
	return o, nil
}
