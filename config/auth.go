package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the credential verifier implementation.
type AuthMode string

const (
	// AuthModeOAuth uses the external OIDC identity provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeLocal uses the in-process dev identity provider.
	AuthModeLocal AuthMode = "local"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "local":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, local)", v)
	}
}

// OAuthConfig contains OIDC identity-provider configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"flowpos"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email offline_access"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// TokenCachePath is where the provider credential is persisted so a
	// terminal restart does not force a re-login. Empty disables caching.
	TokenCachePath string `env:"TOKEN_CACHE_PATH" envDefault:".flowpos/credential.json"`
}

// LocalAuthConfig controls the in-process identity provider.
// Used when AUTH_MODE=local for development and testing.
type LocalAuthConfig struct {
	SigningKey  string        `env:"SIGNING_KEY"  envDefault:"flowpos-dev-signing-key"`
	Email       string        `env:"EMAIL"        envDefault:"dev@flowpos.test"`
	Secret      string        `env:"SECRET"       envDefault:"dev-secret"`
	PrincipalID string        `env:"PRINCIPAL_ID" envDefault:"dev-principal"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"    envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Local configuration (used when Mode=local).
	Local LocalAuthConfig `envPrefix:"LOCAL_AUTH_"`
}
