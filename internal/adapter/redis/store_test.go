package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/sweetsbybella/internal/config"
	testhelpers "github.com/polkiloo/sweetsbybella/internal/test"
)

type clientStub struct {
	values   map[string]string
	ttls     map[string]time.Duration
	err      error
	vanishes bool
}

func newClientStub() *clientStub {
	return &clientStub{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *clientStub) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if c.err != nil {
		return redis.NewBoolResult(false, c.err)
	}
	if _, ok := c.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	c.values[key] = value.(string)
	c.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (c *clientStub) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := c.values[key]
	if !ok || c.vanishes {
		c.vanishes = false
		delete(c.values, key)
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *clientStub) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	c.values[key] = value.(string)
	c.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (c *clientStub) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(c.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestStoreLifecycle(t *testing.T) {
	client := newClientStub()
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	ref, reserved, err := store.Reserve(ctx, "abc")
	if err != nil || !reserved || ref != "" {
		t.Fatalf("first reserve: ref=%q reserved=%v err=%v", ref, reserved, err)
	}
	if client.ttls["idem:order:abc"] != inFlightTTL {
		t.Fatalf("expected short in-flight ttl, got %v", client.ttls["idem:order:abc"])
	}

	ref, reserved, err = store.Reserve(ctx, "abc")
	if err != nil || reserved || ref != "" {
		t.Fatalf("in-flight reserve: ref=%q reserved=%v err=%v", ref, reserved, err)
	}

	if err := store.Complete(ctx, "abc", "ORDER-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if client.ttls["idem:order:abc"] != time.Hour {
		t.Fatalf("expected completion to extend ttl, got %v", client.ttls["idem:order:abc"])
	}
	ref, reserved, err = store.Reserve(ctx, "abc")
	if err != nil || reserved || ref != "ORDER-1" {
		t.Fatalf("completed reserve: ref=%q reserved=%v err=%v", ref, reserved, err)
	}

	if err := store.Release(ctx, "abc"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, reserved, _ := store.Reserve(ctx, "abc"); !reserved {
		t.Fatalf("expected released key to be reservable")
	}
}

func TestStoreReservationNeverOutlivesTTL(t *testing.T) {
	client := newClientStub()
	if _, _, err := NewStore(client, 10*time.Second).Reserve(context.Background(), "abc"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if client.ttls["idem:order:abc"] != 10*time.Second {
		t.Fatalf("expected reservation capped by ttl, got %v", client.ttls["idem:order:abc"])
	}
}

func TestStoreReserveRetriesVanishedKey(t *testing.T) {
	client := newClientStub()
	client.values["idem:order:abc"] = reservedValue
	client.vanishes = true

	_, reserved, err := NewStore(client, time.Minute).Reserve(context.Background(), "abc")
	if err != nil || !reserved {
		t.Fatalf("expected reservation after expiry, reserved=%v err=%v", reserved, err)
	}
}

func TestStoreReserveError(t *testing.T) {
	client := newClientStub()
	client.err = errors.New("connection refused")

	if _, _, err := NewStore(client, time.Minute).Reserve(context.Background(), "abc"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestNopStore(t *testing.T) {
	ref, reserved, err := NopStore{}.Reserve(context.Background(), "abc")
	if err != nil || !reserved || ref != "" {
		t.Fatalf("unexpected nop reserve: %q %v %v", ref, reserved, err)
	}
}

func TestNewIdempotencyStore(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	lc := fxtest.NewLifecycle(t)

	if _, ok := newIdempotencyStore(storeParams{Lifecycle: lc, Config: &config.Config{}, Logger: logger}).(NopStore); !ok {
		t.Fatalf("expected nop store without redis address")
	}

	store := newIdempotencyStore(storeParams{
		Lifecycle: lc,
		Config:    &config.Config{RedisAddress: "127.0.0.1:1", IdempotencyTTL: time.Hour},
		Logger:    logger,
	})
	if _, ok := store.(*Store); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
}

func TestIdempotencyStoreHooksTolerateUnreachableRedis(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	newIdempotencyStore(storeParams{
		Lifecycle: lc,
		Config:    &config.Config{RedisAddress: "127.0.0.1:1"},
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if len(lc.Hooks) != 1 {
		t.Fatalf("expected one lifecycle hook, got %d", len(lc.Hooks))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := lc.Start(ctx); err != nil {
		t.Fatalf("start must only warn on ping failure, got %v", err)
	}
	if err := lc.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
