package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id,customer_email,customer_name,customer_id,
       subtotal,shipping_cost,platform_fee,stripe_fee,total,currency,
       status,payment_status,payment_intent_id,checkout_session_id,connected_account_id,
       shipping_details,billing_details,metadata,
       created_at,updated_at,paid_at,shipped_at,delivered_at`

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, customer_email, customer_name, customer_id,
		   subtotal, shipping_cost, platform_fee, stripe_fee, total, currency,
		   status, payment_status, payment_intent_id, checkout_session_id, connected_account_id,
		   shipping_details, billing_details, metadata, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		o.ID, o.CustomerEmail, o.CustomerName, o.CustomerID,
		o.Subtotal, o.ShippingCost, o.PlatformFee, o.StripeFee, o.Total, o.Currency,
		o.Status, o.PaymentStatus, o.PaymentIntentID, o.CheckoutSessionID, o.ConnectedAccountID,
		nullableJSON(o.ShippingDetails), nullableJSON(o.BillingDetails), nullableJSON(o.Metadata),
		o.PaidAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicatePaymentIntent
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_id, name, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.ProductID, item.Name,
			item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid).Scan)
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id=$1`, paymentIntentID).Scan)
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) ListOrdersByEmail(ctx context.Context, email string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_email=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE orders
		SET status=$1,
		    updated_at=NOW(),
		    shipped_at=CASE WHEN $1='shipped' THEN NOW() ELSE shipped_at END,
		    delivered_at=CASE WHEN $1='delivered' THEN NOW() ELSE delivered_at END
		WHERE id=$2`, status, uid)
	return err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	var shippingDetails, billingDetails, metadata []byte
	err := scan(
		&o.ID, &o.CustomerEmail, &o.CustomerName, &o.CustomerID,
		&o.Subtotal, &o.ShippingCost, &o.PlatformFee, &o.StripeFee, &o.Total, &o.Currency,
		&o.Status, &o.PaymentStatus, &o.PaymentIntentID, &o.CheckoutSessionID, &o.ConnectedAccountID,
		&shippingDetails, &billingDetails, &metadata,
		&o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.ShippedAt, &o.DeliveredAt)
	if err != nil {
		return nil, err
	}
	o.ShippingDetails = shippingDetails
	o.BillingDetails = billingDetails
	o.Metadata = metadata
	return o, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, quantity, unit_price, line_total, created_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*OrderItem
	for rows.Next() {
		item := &OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.LineTotal, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
