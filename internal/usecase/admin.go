package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/polkiloo/sweetsbybella/internal/config"
	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	pkgAuth "github.com/polkiloo/sweetsbybella/internal/pkg/auth"
)

// AdminAuthUseCase verifies the single shop administrator and issues session tokens.
type AdminAuthUseCase struct {
	login        string
	passwordHash string
	hasher       pkgAuth.PasswordHasher
	tokens       pkgAuth.Strategy
}

// NewAdminAuthUseCase constructs AdminAuthUseCase. A plain ADMIN_PASSWORD is
// hashed once at startup; with neither a hash nor a password, logins are refused.
func NewAdminAuthUseCase(cfg *config.Config, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) (*AdminAuthUseCase, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" && cfg.AdminPassword != "" {
		var err error
		if hash, err = hasher.Hash(cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &AdminAuthUseCase{
		login:        cfg.AdminLogin,
		passwordHash: hash,
		hasher:       hasher,
		tokens:       strategy,
	}, nil
}

// Login checks credentials and returns a bearer token.
func (u *AdminAuthUseCase) Login(_ context.Context, login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" || u.passwordHash == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(login), []byte(u.login)) != 1 {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(u.passwordHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken(u.login)
}

// Authorize validates token and returns the admin login it was issued to.
func (u *AdminAuthUseCase) Authorize(token string) (string, error) {
	if token == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	subject, err := u.tokens.ParseToken(token)
	if err != nil {
		return "", err
	}
	if subject != u.login {
		return "", pkgAuth.ErrInvalidToken
	}
	return subject, nil
}
