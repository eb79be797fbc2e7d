package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/polkiloo/sweetsbybella/internal/config"
	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	pkgAuth "github.com/polkiloo/sweetsbybella/internal/pkg/auth"
	testhelpers "github.com/polkiloo/sweetsbybella/internal/test"
)

func TestAdminLoginWithPlainPassword(t *testing.T) {
	uc, err := NewAdminAuthUseCase(
		&config.Config{AdminLogin: "bella", AdminPassword: "cupcake"},
		testhelpers.HasherStub{},
		testhelpers.StrategyStub{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := uc.Login(context.Background(), " bella ", "cupcake")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "token:bella" {
		t.Fatalf("unexpected token: %s", token)
	}

	subject, err := uc.Authorize(token)
	if err != nil || subject != "bella" {
		t.Fatalf("unexpected authorize result: %q err=%v", subject, err)
	}
}

func TestAdminLoginWithHash(t *testing.T) {
	uc, err := NewAdminAuthUseCase(
		&config.Config{AdminLogin: "bella", AdminPasswordHash: "hash:secret", AdminPassword: "ignored"},
		testhelpers.HasherStub{HashFn: func(string) (string, error) {
			t.Fatal("hash must not be recomputed when provided")
			return "", nil
		}},
		testhelpers.StrategyStub{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Login(context.Background(), "bella", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdminLoginRejections(t *testing.T) {
	uc, err := NewAdminAuthUseCase(
		&config.Config{AdminLogin: "bella", AdminPassword: "cupcake"},
		testhelpers.HasherStub{},
		testhelpers.StrategyStub{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct{ login, password string }{
		{"", "cupcake"},
		{"bella", ""},
		{"someone", "cupcake"},
		{"bella", "muffin"},
	}
	for _, tc := range cases {
		if _, err := uc.Login(context.Background(), tc.login, tc.password); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("login %q/%q: expected invalid credentials, got %v", tc.login, tc.password, err)
		}
	}
}

func TestAdminLoginDisabledWithoutCredential(t *testing.T) {
	uc, err := NewAdminAuthUseCase(&config.Config{AdminLogin: "admin"}, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Login(context.Background(), "admin", "anything"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAdminHashFailure(t *testing.T) {
	_, err := NewAdminAuthUseCase(
		&config.Config{AdminLogin: "bella", AdminPassword: "cupcake"},
		testhelpers.HasherStub{HashFn: func(string) (string, error) { return "", errors.New("boom") }},
		testhelpers.StrategyStub{},
	)
	if err == nil {
		t.Fatal("expected hash error")
	}
}

func TestAdminAuthorizeRejectsForeignSubject(t *testing.T) {
	uc, err := NewAdminAuthUseCase(&config.Config{AdminLogin: "bella", AdminPassword: "x"}, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Authorize("token:mallory"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := uc.Authorize(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := uc.Authorize("garbage"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestAdminAuthWithRealPrimitives(t *testing.T) {
	hasher := pkgAuth.NewBcryptHasher(4)
	uc, err := NewAdminAuthUseCase(
		&config.Config{AdminLogin: "bella", AdminPassword: "cupcake"},
		hasher,
		pkgAuth.NewHMACStrategy("secret", pkgAuth.Options{}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := uc.Login(context.Background(), "bella", "cupcake")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject, err := uc.Authorize(token); err != nil || subject != "bella" {
		t.Fatalf("unexpected authorize result: %q err=%v", subject, err)
	}
}
