package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

var orderRowColumns = []string{
	"id", "order_reference", "status", "payment_status", "payment_method", "total_amount",
	"customer_name", "customer_email", "customer_phone", "order_type", "delivery_address",
	"delivery_instructions", "expires_at", "created_at", "updated_at",
}

type orderRow struct {
	id            uuid.UUID
	reference     string
	status        model.OrderStatus
	paymentStatus model.PaymentStatus
	address       []byte
	at            time.Time
}

func orderRows(rows ...orderRow) *pgxmockv3.Rows {
	result := pgxmockv3.NewRows(orderRowColumns)
	for _, r := range rows {
		result.AddRow(
			pgtype.UUID{Bytes: r.id, Valid: true}, r.reference, string(r.status), string(r.paymentStatus),
			"zelle", "24.50", "Ann", "ann@example.com", "555-0100", "pickup", r.address,
			"", r.at.Add(5*time.Minute), r.at, r.at,
		)
	}
	return result
}

func sampleOrder(now time.Time) *model.Order {
	return &model.Order{
		ID:            uuid.New(),
		Reference:     "ORDER-1-abc",
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodZelle,
		TotalAmount:   decimal.RequireFromString("24.50"),
		CustomerName:  "Ann",
		CustomerEmail: "ann@example.com",
		OrderType:     model.OrderTypeDelivery,
		DeliveryAddress: &model.DeliveryAddress{
			Name: "Ann", Street: "1 Main St", City: "Austin", State: "TX", ZipCode: "73301",
		},
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	order := sampleOrder(time.Now())

	mock.ExpectExec("INSERT INTO orders").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Create(context.Background(), order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("insert"))
	if err := repo.Create(context.Background(), order); err == nil || errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryInsertItems(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	orderID := uuid.New()
	items := []model.OrderItem{
		{ProductName: "Brownie", ProductPrice: decimal.RequireFromString("3.50"), Quantity: 3},
		{ProductName: "Cake", ProductPrice: decimal.RequireFromString("14.00"), Quantity: 1},
	}

	if err := repo.InsertItems(context.Background(), orderID, nil); err != nil {
		t.Fatalf("empty items should be a no-op, got %v", err)
	}

	mock.ExpectCopyFrom(pgx.Identifier{"order_items"}, itemColumns).WillReturnResult(2)
	if err := repo.InsertItems(context.Background(), orderID, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectCopyFrom(pgx.Identifier{"order_items"}, itemColumns).WillReturnResult(1)
	if err := repo.InsertItems(context.Background(), orderID, items); err == nil {
		t.Fatal("expected short copy error")
	}

	mock.ExpectCopyFrom(pgx.Identifier{"order_items"}, itemColumns).WillReturnError(errors.New("copy"))
	if err := repo.InsertItems(context.Background(), orderID, items); err == nil {
		t.Fatal("expected copy error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByReference(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	id := uuid.New()
	address := []byte(`{"name":"Ann","street":"1 Main St","city":"Austin","state":"TX","zipCode":"73301"}`)

	mock.ExpectQuery("SELECT id, order_reference").WithArgs("ORDER-1").WillReturnRows(orderRows(orderRow{
		id: id, reference: "ORDER-1", status: model.OrderStatusPending, paymentStatus: model.PaymentStatusPending,
		address: address, at: now,
	}))
	mock.ExpectQuery("SELECT id, order_id, product_name").WithArgs(pgtype.UUID{Bytes: id, Valid: true}).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "order_id", "product_name", "product_price", "quantity", "product_image"}).
			AddRow(int64(1), pgtype.UUID{Bytes: id, Valid: true}, "Brownie", "3.50", 7, "").
			AddRow(int64(2), pgtype.UUID{Bytes: id, Valid: true}, "Cookie", "0.00", 1, "cookie.png"))

	order, err := repo.GetByReference(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != id || order.PaymentStatus != model.PaymentStatusPending || order.PaymentMethod != model.PaymentMethodZelle {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("24.50")) {
		t.Fatalf("unexpected total: %s", order.TotalAmount)
	}
	if order.DeliveryAddress == nil || order.DeliveryAddress.ZipCode != "73301" {
		t.Fatalf("unexpected address: %+v", order.DeliveryAddress)
	}
	if len(order.Items) != 2 || order.Items[0].Quantity != 7 || order.Items[1].ProductImage != "cookie.png" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if order.Items[0].OrderID != id {
		t.Fatalf("unexpected item owner: %s", order.Items[0].OrderID)
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByReference(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs("broken").WillReturnError(errors.New("down"))
	if _, err := repo.GetByReference(context.Background(), "broken"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs("ORDER-2").WillReturnRows(orderRows(orderRow{
		id: id, reference: "ORDER-2", status: model.OrderStatusPending, paymentStatus: model.PaymentStatusPending, at: now,
	}))
	mock.ExpectQuery("SELECT id, order_id, product_name").WillReturnError(errors.New("items"))
	if _, err := repo.GetByReference(context.Background(), "ORDER-2"); err == nil {
		t.Fatal("expected items error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("SELECT id, order_reference").WithArgs("paid", "", defaultListLimit).WillReturnRows(orderRows(
		orderRow{id: uuid.New(), reference: "A", status: model.OrderStatusConfirmed, paymentStatus: model.PaymentStatusPaid, at: now},
		orderRow{id: uuid.New(), reference: "B", status: model.OrderStatusReady, paymentStatus: model.PaymentStatusPaid, at: now},
	))
	orders, err := repo.List(context.Background(), model.OrderFilter{PaymentStatus: model.PaymentStatusPaid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].Reference != "A" || orders[1].Status != model.OrderStatusReady {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if orders[0].DeliveryAddress != nil {
		t.Fatalf("expected no address for pickup order")
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs("", "ready", 5).WillReturnError(errors.New("query"))
	if _, err := repo.List(context.Background(), model.OrderFilter{Status: model.OrderStatusReady, Limit: 5}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}
	if _, err := repo.List(context.Background(), model.OrderFilter{}); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositorySelectExpired(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("SELECT id, order_reference").WithArgs(now).WillReturnRows(orderRows(
		orderRow{id: uuid.New(), reference: "OLD", status: model.OrderStatusPending, paymentStatus: model.PaymentStatusPending, at: now.Add(-time.Hour)},
	))
	orders, err := repo.SelectExpired(context.Background(), now)
	if err != nil || len(orders) != 1 || orders[0].Reference != "OLD" {
		t.Fatalf("unexpected result: %+v err=%v", orders, err)
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs(now).WillReturnRows(pgxmockv3.NewRows(orderRowColumns))
	orders, err = repo.SelectExpired(context.Background(), now)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %+v err=%v", orders, err)
	}

	mock.ExpectQuery("SELECT id, order_reference").WithArgs(now).WillReturnError(errors.New("query"))
	if _, err := repo.SelectExpired(context.Background(), now); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryExpireBatch(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	first, second := uuid.New(), uuid.New()
	pgIDs := []pgtype.UUID{{Bytes: first, Valid: true}, {Bytes: second, Valid: true}}

	if orders, err := repo.ExpireBatch(context.Background(), nil, now); err != nil || orders != nil {
		t.Fatalf("expected no-op for empty ids, got %+v err=%v", orders, err)
	}

	// second was paid between selection and update, so only first comes back
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders").WithArgs(pgIDs, now).WillReturnRows(orderRows(
		orderRow{id: first, reference: "A", status: model.OrderStatusCancelled, paymentStatus: model.PaymentStatusExpired, at: now},
	))
	mock.ExpectCommit()
	orders, err := repo.ExpireBatch(context.Background(), []uuid.UUID{first, second}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != first || orders[0].PaymentStatus != model.PaymentStatusExpired || orders[0].Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected expired orders: %+v", orders)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders").WithArgs(pgIDs, now).WillReturnError(errors.New("update"))
	mock.ExpectRollback()
	if _, err := repo.ExpireBatch(context.Background(), []uuid.UUID{first, second}, now); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectBegin().WillReturnError(errors.New("begin"))
	if _, err := repo.ExpireBatch(context.Background(), []uuid.UUID{first}, now); err == nil {
		t.Fatal("expected begin error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryExpireBatchRowsError(t *testing.T) {
	tx := &rowsErrorTx{rows: &errorRows{err: errors.New("rows err")}}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}}
	repo := &orderRepository{storage: storage}
	if _, err := repo.ExpireBatch(context.Background(), []uuid.UUID{uuid.New()}, time.Now()); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositoryTransitionPayment(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	id := uuid.New()
	mock.ExpectQuery("UPDATE orders").WithArgs("ORDER-1", "paid", "confirmed", now).WillReturnRows(orderRows(
		orderRow{id: id, reference: "ORDER-1", status: model.OrderStatusConfirmed, paymentStatus: model.PaymentStatusPaid, at: now},
	))
	order, err := repo.TransitionPayment(context.Background(), "ORDER-1", model.PaymentStatusPaid, model.OrderStatusConfirmed, now)
	if err != nil || order.PaymentStatus != model.PaymentStatusPaid || order.Status != model.OrderStatusConfirmed {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectQuery("UPDATE orders").WithArgs("ORDER-1", "paid", "confirmed", now).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.TransitionPayment(context.Background(), "ORDER-1", model.PaymentStatusPaid, model.OrderStatusConfirmed, now); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("UPDATE orders").WithArgs("ORDER-1", "expired", "cancelled", now).WillReturnError(errors.New("down"))
	if _, err := repo.TransitionPayment(context.Background(), "ORDER-1", model.PaymentStatusExpired, model.OrderStatusCancelled, now); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdateFulfillment(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	mock.ExpectQuery("UPDATE orders").WithArgs("ORDER-1", "ready", now).WillReturnRows(orderRows(
		orderRow{id: uuid.New(), reference: "ORDER-1", status: model.OrderStatusReady, paymentStatus: model.PaymentStatusPaid, at: now},
	))
	order, err := repo.UpdateFulfillment(context.Background(), "ORDER-1", model.OrderStatusReady, now)
	if err != nil || order.Status != model.OrderStatusReady {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectQuery("UPDATE orders").WithArgs("ORDER-2", "ready", now).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.UpdateFulfillment(context.Background(), "ORDER-2", model.OrderStatusReady, now); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestScanOrderRejectsBadAmount(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	rows := pgxmockv3.NewRows(orderRowColumns).AddRow(
		pgtype.UUID{Bytes: uuid.New(), Valid: true}, "ORDER-1", "pending", "pending",
		"zelle", "not-a-number", "Ann", "", "", "pickup", []byte(nil),
		"", now, now, now,
	)
	mock.ExpectQuery("SELECT id, order_reference").WithArgs("ORDER-1").WillReturnRows(rows)
	if _, err := repo.GetByReference(context.Background(), "ORDER-1"); err == nil {
		t.Fatal("expected parse error")
	}
}
