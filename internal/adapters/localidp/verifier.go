package localidp

// Package localidp provides a network-free CredentialVerifier for local
// development. It mints and validates HS256 tokens so the rest of the
// pipeline exercises real bearer-credential semantics without an IdP.

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// Account is a dev identity accepted by SignIn.
type Account struct {
	PrincipalID string
	Email       string
	Secret      string
}

// Config controls the dev verifier.
type Config struct {
	SigningKey []byte
	Accounts   []Account
	TokenTTL   time.Duration // default 8h when zero
}

// Verifier implements ports.CredentialVerifier in memory.
type Verifier struct {
	key      []byte
	accounts map[string]Account // keyed by email
	ttl      time.Duration

	mu    sync.Mutex
	token string
}

// NewVerifier constructs a dev verifier from Config.
func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("localidp: signing key is required")
	}
	if len(cfg.Accounts) == 0 {
		return nil, errors.New("localidp: at least one account is required")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	accounts := make(map[string]Account, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		if a.Email == "" || a.Secret == "" {
			return nil, errors.New("localidp: account email and secret are required")
		}
		if a.PrincipalID == "" {
			a.PrincipalID = uuid.NewString()
		}
		accounts[a.Email] = a
	}
	return &Verifier{key: cfg.SigningKey, accounts: accounts, ttl: ttl}, nil
}

func (v *Verifier) SignIn(_ context.Context, email, secret string) (domain.Principal, error) {
	acct, ok := v.accounts[email]
	if !ok || subtle.ConstantTimeCompare([]byte(acct.Secret), []byte(secret)) != 1 {
		return domain.Principal{}, domain.ErrInvalidCredential
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   acct.PrincipalID,
		Issuer:    "flowpos-localidp",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		ID:        uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, devClaims{
		RegisteredClaims: claims,
		Email:            acct.Email,
	}).SignedString(v.key)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("sign dev token: %w", err)
	}

	v.mu.Lock()
	v.token = tok
	v.mu.Unlock()

	return domain.Principal{
		ID:        acct.PrincipalID,
		Email:     acct.Email,
		ExpiresAt: now.Add(v.ttl),
	}, nil
}

func (v *Verifier) SignOut(_ context.Context) error {
	v.mu.Lock()
	v.token = ""
	v.mu.Unlock()
	return nil
}

func (v *Verifier) CurrentPrincipal(_ context.Context) (domain.Principal, bool, error) {
	v.mu.Lock()
	tok := v.token
	v.mu.Unlock()
	if tok == "" {
		return domain.Principal{}, false, nil
	}

	var claims devClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return domain.Principal{}, false, fmt.Errorf("parse cached dev token: %w", err)
	}
	return claims.principal(), true, nil
}

func (v *Verifier) VerifyPrincipal(_ context.Context) (domain.Principal, error) {
	v.mu.Lock()
	tok := v.token
	v.mu.Unlock()
	if tok == "" {
		return domain.Principal{}, domain.ErrInvalidCredential
	}

	var claims devClaims
	_, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
		}
		return domain.Principal{}, fmt.Errorf("verify dev token: %w", err)
	}
	return claims.principal(), nil
}

type devClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func (c *devClaims) principal() domain.Principal {
	p := domain.Principal{ID: c.Subject, Email: c.Email}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
