package order

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the postgres-backed order store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, partner_id, merchant_transaction_id, appy_pay_transaction_id,
	       payment_entity, payment_reference, total_amount, currency, status,
	       shipping_details, created_at, updated_at
	FROM orders`

func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, partner_id, merchant_transaction_id, total_amount, currency, status, shipping_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.PartnerID, o.MerchantTransactionID, o.TotalAmount,
		o.Currency, o.Status, nullableJSON(o.ShippingDetails))
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, sku, name, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.SKU, item.Name, item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return fmt.Errorf("inserting order item %s: %w", item.SKU, err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getWhere(ctx, "id=$1", id)
}

func (r *postgresRepo) GetByMerchantTransactionID(ctx context.Context, mtxID string) (*Order, error) {
	return r.getWhere(ctx, "merchant_transaction_id=$1", mtxID)
}

func (r *postgresRepo) getWhere(ctx context.Context, where string, arg interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectSQL+" WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, o.ID.String())
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) ListByPartner(ctx context.Context, partnerID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+" WHERE partner_id=$1 ORDER BY created_at DESC", partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) SetChargeResult(ctx context.Context, mtxID, gatewayTxID, entity, reference string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET appy_pay_transaction_id=$1, payment_entity=$2, payment_reference=$3, updated_at=NOW()
		WHERE merchant_transaction_id=$4`,
		gatewayTxID, entity, reference, mtxID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus is the single atomic write guarding the webhook
// path: only a PENDING order can move, so each order reaches a
// terminal state at most once. A replayed SUCCESS and a late SUCCESS
// after FAILED both report no transition.
func (r *postgresRepo) TransitionStatus(ctx context.Context, mtxID string, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status=$1, updated_at=NOW()
		WHERE merchant_transaction_id=$2 AND status = $3 AND status <> $1`,
		to, mtxID, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, orderID string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, sku, name, quantity, unit_price, line_total
		FROM order_items WHERE order_id=$1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SKU, &it.Name,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var gatewayTxID, entity, reference sql.NullString
	var shipping []byte
	err := row.Scan(&o.ID, &o.PartnerID, &o.MerchantTransactionID,
		&gatewayTxID, &entity, &reference,
		&o.TotalAmount, &o.Currency, &o.Status, &shipping,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if gatewayTxID.Valid {
		o.AppyPayTransactionID = gatewayTxID.String
	}
	if entity.Valid {
		o.PaymentEntity = entity.String
	}
	if reference.Valid {
		o.PaymentReference = reference.String
	}
	if len(shipping) > 0 {
		o.ShippingDetails = shipping
	}
	return o, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
