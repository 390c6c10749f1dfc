package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresMirror struct{ db *sql.DB }

// NewPostgresMirrorRepository creates the postgres-backed catalog mirror.
func NewPostgresMirrorRepository(db *sql.DB) MirrorRepository { return &postgresMirror{db: db} }

func (r *postgresMirror) UpsertProducts(ctx context.Context, products []Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_mirror (sku, external_id, name, type, stock_status, synced_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		ON CONFLICT (sku) DO UPDATE SET
		  external_id=EXCLUDED.external_id,
		  name=EXCLUDED.name,
		  type=EXCLUDED.type,
		  stock_status=EXCLUDED.stock_status,
		  synced_at=NOW()`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if p.SKU == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.SKU, p.ID, p.Name, p.Type, p.StockStatus); err != nil {
			return fmt.Errorf("upserting mirror row %s: %w", p.SKU, err)
		}
	}
	return tx.Commit()
}

func (r *postgresMirror) GetBySKU(ctx context.Context, sku string) (*MirrorProduct, error) {
	p := &MirrorProduct{}
	err := r.db.QueryRowContext(ctx, `
		SELECT sku, external_id, name, type, stock_status, synced_at
		FROM catalog_mirror WHERE sku=$1`, sku).
		Scan(&p.SKU, &p.ExternalID, &p.Name, &p.Type, &p.StockStatus, &p.SyncedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresMirror) SetStockStatus(ctx context.Context, sku string, status StockStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE catalog_mirror SET stock_status=$1, synced_at=NOW() WHERE sku=$2`, status, sku)
	return err
}
