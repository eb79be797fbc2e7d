//go:build integration

package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("sweets"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	storage, err := New(ctx, dsn, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	t.Cleanup(storage.Close)
	return storage
}

func createPendingOrder(t *testing.T, repo *orderRepository, expiresAt time.Time) *model.Order {
	t.Helper()
	now := time.Now().UTC()
	order := &model.Order{
		ID:            uuid.New(),
		Reference:     "ORDER-" + uuid.NewString()[:12],
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodCashApp,
		TotalAmount:   decimal.RequireFromString("10.50"),
		CustomerName:  "Ann",
		OrderType:     model.OrderTypePickup,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	items := []model.OrderItem{{ProductName: "Brownie", ProductPrice: decimal.RequireFromString("3.50"), Quantity: 3}}
	if err := repo.InsertItems(context.Background(), order.ID, items); err != nil {
		t.Fatalf("insert items: %v", err)
	}
	return order
}

func TestIntegrationRoundTrip(t *testing.T) {
	storage := startPostgres(t)
	repo := &orderRepository{storage: storage}

	created := createPendingOrder(t, repo, time.Now().Add(time.Hour))
	got, err := repo.GetByReference(context.Background(), created.Reference)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.TotalAmount.Equal(created.TotalAmount) || len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}

	if err := repo.Create(context.Background(), created); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate reference error, got %v", err)
	}
}

func TestIntegrationPaymentAndSweepRace(t *testing.T) {
	storage := startPostgres(t)
	repo := &orderRepository{storage: storage}

	for i := 0; i < 20; i++ {
		order := createPendingOrder(t, repo, time.Now().Add(-time.Second))

		var (
			wg      sync.WaitGroup
			paidErr error
			expired []model.Order
			expErr  error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, paidErr = repo.TransitionPayment(context.Background(), order.Reference,
				model.PaymentStatusPaid, model.OrderStatusConfirmed, time.Now())
		}()
		go func() {
			defer wg.Done()
			expired, expErr = repo.ExpireBatch(context.Background(), []uuid.UUID{order.ID}, time.Now())
		}()
		wg.Wait()

		if expErr != nil {
			t.Fatalf("expire: %v", expErr)
		}
		paid := paidErr == nil
		if paidErr != nil && !errors.Is(paidErr, domainErrors.ErrNotFound) {
			t.Fatalf("transition: %v", paidErr)
		}
		if paid == (len(expired) == 1) {
			t.Fatalf("expected exactly one winner, paid=%v expired=%d", paid, len(expired))
		}

		final, err := repo.GetByReference(context.Background(), order.Reference)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if paid && final.PaymentStatus != model.PaymentStatusPaid {
			t.Fatalf("paid order ended as %s", final.PaymentStatus)
		}
		if !paid && (final.PaymentStatus != model.PaymentStatusExpired || final.Status != model.OrderStatusCancelled) {
			t.Fatalf("expired order ended as %s/%s", final.PaymentStatus, final.Status)
		}
	}
}

func TestIntegrationSelectExpiredSkipsFreshOrders(t *testing.T) {
	storage := startPostgres(t)
	repo := &orderRepository{storage: storage}

	stale := createPendingOrder(t, repo, time.Now().Add(-time.Minute))
	createPendingOrder(t, repo, time.Now().Add(time.Hour))

	candidates, err := repo.SelectExpired(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != stale.ID {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
}
