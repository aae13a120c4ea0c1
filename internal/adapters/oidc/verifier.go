package oidc

// Package oidc implements the CredentialVerifier port against an OIDC/OAuth2
// identity provider using the resource-owner password grant, which matches the
// POS terminal's email+secret login form.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// Verifier implements ports.CredentialVerifier using OIDC/OAuth2.
// The current token is cached in memory and mirrored to an optional
// TokenCache so a restarted terminal can restore its credential.
type Verifier struct {
	config     *oauth2.Config
	httpClient *http.Client
	cache      TokenCache

	oidcProvider *gooidc.Provider
	idVerifier   *gooidc.IDTokenVerifier
	revocationEP string

	mu    sync.Mutex
	token *oauth2.Token
}

// TokenCache persists the provider credential across process restarts. The
// file-backed implementation lives in token_cache.go; a nil cache disables
// persistence.
type TokenCache interface {
	Store(tok *oauth2.Token) error
	Restore() (*oauth2.Token, error)
	Drop() error
}

// Config holds configuration for the OIDC verifier.
type Config struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	TokenCache   TokenCache   // optional
	HTTPClient   *http.Client // optional, defaults to a 30s-timeout client
}

// providerEndpoints captures the extra discovery fields go-oidc does not
// surface directly.
type providerEndpoints struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

// NewVerifier creates an OIDC-backed credential verifier. Discovery runs once
// here; a previously cached token is restored if a TokenCache is configured.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	var eps providerEndpoints
	if claimsErr := op.Claims(&eps); claimsErr != nil {
		return nil, fmt.Errorf("decode discovery claims: %w", claimsErr)
	}

	v := &Verifier{
		httpClient:   httpClient,
		cache:        cfg.TokenCache,
		oidcProvider: op,
		idVerifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		revocationEP: eps.RevocationEndpoint,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
	}

	if v.cache != nil {
		if tok, restoreErr := v.cache.Restore(); restoreErr == nil && tok != nil {
			v.token = tok
		}
	}

	return v, nil
}

// SignIn exchanges the email/secret pair for a token via the password grant,
// verifies the returned id_token, and caches the credential.
func (v *Verifier) SignIn(ctx context.Context, email, secret string) (domain.Principal, error) {
	if email == "" || secret == "" {
		return domain.Principal{}, domain.ErrInvalidCredential
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	tok, err := v.config.PasswordCredentialsToken(ctx, email, secret)
	if err != nil {
		return domain.Principal{}, mapOAuthErr(err)
	}

	principal, err := v.principalFromToken(ctx, tok)
	if err != nil {
		return domain.Principal{}, err
	}

	v.setToken(tok)
	return principal, nil
}

// SignOut revokes the cached credential at the provider (when a revocation
// endpoint is advertised) and drops the local cache either way.
func (v *Verifier) SignOut(ctx context.Context) error {
	v.mu.Lock()
	tok := v.token
	v.token = nil
	v.mu.Unlock()

	if v.cache != nil {
		if dropErr := v.cache.Drop(); dropErr != nil {
			return fmt.Errorf("drop cached credential: %w", dropErr)
		}
	}

	if tok == nil || v.revocationEP == "" {
		return nil
	}
	return v.revoke(ctx, tok)
}

// CurrentPrincipal reads the cached credential without a network round trip.
// Claims are parsed unverified: this accessor is a readiness gate only, never
// an authorization decision.
func (v *Verifier) CurrentPrincipal(_ context.Context) (domain.Principal, bool, error) {
	v.mu.Lock()
	tok := v.token
	v.mu.Unlock()

	if tok == nil {
		return domain.Principal{}, false, nil
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domain.Principal{}, false, nil
	}

	var claims idClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawID, &claims); err != nil {
		return domain.Principal{}, false, fmt.Errorf("parse cached id_token: %w", err)
	}
	return claims.principal(), true, nil
}

// VerifyPrincipal is the authoritative check: it refreshes the token if
// needed and confirms the credential against the UserInfo endpoint.
func (v *Verifier) VerifyPrincipal(ctx context.Context) (domain.Principal, error) {
	v.mu.Lock()
	tok := v.token
	v.mu.Unlock()

	if tok == nil {
		return domain.Principal{}, domain.ErrInvalidCredential
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)

	// TokenSource refreshes an expired token transparently.
	src := v.config.TokenSource(ctx, tok)
	fresh, err := src.Token()
	if err != nil {
		return domain.Principal{}, mapOAuthErr(err)
	}
	if fresh.AccessToken != tok.AccessToken {
		v.setToken(fresh)
	}

	ui, err := v.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(fresh))
	if err != nil {
		return domain.Principal{}, mapOAuthErr(err)
	}

	var claims idClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domain.Principal{}, fmt.Errorf("decode user info: %w", claimsErr)
	}
	p := claims.principal()
	if p.ExpiresAt.IsZero() && !fresh.Expiry.IsZero() {
		p.ExpiresAt = fresh.Expiry
	}
	return p, nil
}

// idClaims is the subset of id_token / UserInfo claims the session core needs.
type idClaims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

func (c *idClaims) principal() domain.Principal {
	p := domain.Principal{ID: c.Sub, Email: c.Email}
	if c.ExpiresAt > 0 {
		p.ExpiresAt = time.Unix(c.ExpiresAt, 0)
	}
	return p
}

// GetAudience, GetExpirationTime, etc. — jwt.Claims conformance for
// ParseUnverified. Only exp is meaningful here.
func (c *idClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}
func (c *idClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c *idClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *idClaims) GetIssuer() (string, error)              { return "", nil }
func (c *idClaims) GetSubject() (string, error)             { return c.Sub, nil }
func (c *idClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

func (v *Verifier) principalFromToken(ctx context.Context, tok *oauth2.Token) (domain.Principal, error) {
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domain.Principal{}, errors.New("missing id_token in token response")
	}
	idTok, err := v.idVerifier.Verify(ctx, rawID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domain.Principal{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	p := claims.principal()
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = idTok.Expiry
	}
	return p, nil
}

func (v *Verifier) setToken(tok *oauth2.Token) {
	v.mu.Lock()
	v.token = tok
	v.mu.Unlock()
	if v.cache != nil {
		// Cache write failure must not fail the login; the credential still
		// lives in memory for this process.
		_ = v.cache.Store(tok)
	}
}

func (v *Verifier) revoke(ctx context.Context, tok *oauth2.Token) error {
	form := url.Values{}
	form.Set("token", tok.AccessToken)
	form.Set("token_type_hint", "access_token")
	form.Set("client_id", v.config.ClientID)
	if v.config.ClientSecret != "" {
		form.Set("client_secret", v.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.revocationEP, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return mapOAuthErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: revocation returned %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// mapOAuthErr converts transport-level failures into the domain taxonomy.
func mapOAuthErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrProviderTimeout, err)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.Response != nil && (rerr.Response.StatusCode == http.StatusBadRequest ||
			rerr.Response.StatusCode == http.StatusUnauthorized) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}
