package config

import (
	"os"
	"strings"
	"time"
)

// SessionConfig controls the terminal identity and the per-stage timeouts of
// the session resolution pipeline.
type SessionConfig struct {
	// TerminalID keys the persisted session record. Defaults to the
	// hostname when unset.
	TerminalID string `env:"TERMINAL_ID"`

	// ReadinessTimeout bounds the cached-credential check that runs before
	// the authoritative provider call.
	ReadinessTimeout time.Duration `env:"SESSION_READINESS_TIMEOUT" envDefault:"5s"`

	// VerifyTimeout bounds authoritative identity-provider round trips.
	VerifyTimeout time.Duration `env:"SESSION_VERIFY_TIMEOUT" envDefault:"15s"`

	// LookupTimeout bounds directory probes and tenant loads.
	LookupTimeout time.Duration `env:"SESSION_LOOKUP_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	c.TerminalID = strings.TrimSpace(c.TerminalID)
	if c.TerminalID == "" {
		if host, err := os.Hostname(); err == nil {
			c.TerminalID = host
		} else {
			c.TerminalID = "terminal"
		}
	}
	if c.ReadinessTimeout <= 0 {
		c.ReadinessTimeout = 5 * time.Second
	}
	if c.VerifyTimeout <= 0 {
		c.VerifyTimeout = 15 * time.Second
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 10 * time.Second
	}
}
