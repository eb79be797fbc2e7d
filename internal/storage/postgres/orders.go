package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

const orderColumns = `id, order_reference, status, payment_status, payment_method, total_amount::text,
       customer_name, customer_email, customer_phone, order_type, delivery_address,
       delivery_instructions, expires_at, created_at, updated_at`

const defaultListLimit = 100

var itemColumns = []string{"order_id", "product_name", "product_price", "quantity", "product_image"}

type orderRepository struct {
	storage *Storage
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, order_reference, status, payment_status, payment_method, total_amount,
                       customer_name, customer_email, customer_phone, order_type, delivery_address,
                       delivery_instructions, expires_at, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	total, err := toNumeric(order.TotalAmount)
	if err != nil {
		return err
	}
	address, err := encodeAddress(order.DeliveryAddress)
	if err != nil {
		return err
	}

	_, err = r.storage.pool.Exec(ctx, query,
		toPgUUID(order.ID), order.Reference, string(order.Status), string(order.PaymentStatus),
		string(order.PaymentMethod), total, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		string(order.OrderType), address, order.DeliveryInstructions,
		order.ExpiresAt, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) InsertItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		price, err := toNumeric(item.ProductPrice)
		if err != nil {
			return err
		}
		rows = append(rows, []any{toPgUUID(orderID), item.ProductName, price, item.Quantity, item.ProductImage})
	}

	copied, err := r.storage.pool.CopyFrom(ctx, pgx.Identifier{"order_items"}, itemColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}
	if copied != int64(len(items)) {
		return fmt.Errorf("copy order items: wrote %d of %d rows", copied, len(items))
	}
	return nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_reference=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_name, product_price::text, quantity, product_image
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, toPgUUID(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var (
			item    model.OrderItem
			ownerID pgtype.UUID
			price   string
		)
		if err := rows.Scan(&item.ID, &ownerID, &item.ProductName, &price, &item.Quantity, &item.ProductImage); err != nil {
			return nil, err
		}
		if item.ProductPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		item.OrderID = uuid.UUID(ownerID.Bytes)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
                   WHERE ($1 = '' OR payment_status = $1) AND ($2 = '' OR status = $2)
                   ORDER BY created_at DESC
                   LIMIT $3`
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.storage.pool.Query(ctx, query, string(filter.PaymentStatus), string(filter.Status), limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) SelectExpired(ctx context.Context, now time.Time) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
                   WHERE payment_status = 'pending' AND expires_at < $1
                   ORDER BY expires_at`
	rows, err := r.storage.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ExpireBatch re-asserts the pending predicate at write time; rows paid after
// SelectExpired are skipped and absent from the result.
func (r *orderRepository) ExpireBatch(ctx context.Context, ids []uuid.UUID, now time.Time) ([]model.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `UPDATE orders
                   SET payment_status = 'expired', status = 'cancelled', updated_at = $2
                   WHERE id = ANY($1) AND payment_status = 'pending'
                   RETURNING ` + orderColumns

	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgIDs = append(pgIDs, toPgUUID(id))
	}

	var expired []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, pgIDs, now)
		if err != nil {
			return err
		}
		expired, err = collectOrders(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *orderRepository) TransitionPayment(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus, now time.Time) (*model.Order, error) {
	query := `UPDATE orders
                   SET payment_status = $2, status = $3, updated_at = $4
                   WHERE order_reference = $1 AND payment_status = 'pending'
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, reference, string(to), string(status), now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateFulfillment(ctx context.Context, reference string, status model.OrderStatus, now time.Time) (*model.Order, error) {
	query := `UPDATE orders
                   SET status = $2, updated_at = $3
                   WHERE order_reference = $1 AND payment_status = 'paid'
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, reference, string(status), now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o                                        model.Order
		id                                       pgtype.UUID
		status, paymentStatus, method, orderType string
		total                                    string
		address                                  []byte
	)
	err := row.Scan(&id, &o.Reference, &status, &paymentStatus, &method, &total,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &orderType, &address,
		&o.DeliveryInstructions, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.ID = uuid.UUID(id.Bytes)
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.PaymentMethod = model.PaymentMethod(method)
	o.OrderType = model.OrderType(orderType)
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total amount: %w", err)
	}
	if len(address) > 0 {
		var addr model.DeliveryAddress
		if err := json.Unmarshal(address, &addr); err != nil {
			return nil, fmt.Errorf("decode delivery address: %w", err)
		}
		o.DeliveryAddress = &addr
	}
	return &o, nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return n, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return n, nil
}

func encodeAddress(addr *model.DeliveryAddress) (any, error) {
	if addr == nil {
		return nil, nil
	}
	raw, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("encode delivery address: %w", err)
	}
	return raw, nil
}
