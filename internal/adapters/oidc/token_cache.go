package oidc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FileTokenCache mirrors the provider credential to a JSON file so a
// restarted terminal can restore it. The id_token extra is preserved because
// the cached-principal readiness gate parses it.
type FileTokenCache struct {
	Path string
}

// cachedToken is the on-disk shape. oauth2.Token drops Extra values on
// marshal, so the id_token is carried explicitly.
type cachedToken struct {
	oauth2.Token
	IDToken string `json:"id_token,omitempty"`
}

func (c *FileTokenCache) Store(tok *oauth2.Token) error {
	if tok == nil {
		return c.Drop()
	}
	rec := cachedToken{Token: *tok}
	if id, ok := tok.Extra("id_token").(string); ok {
		rec.IDToken = id
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
			return fmt.Errorf("create token cache dir: %w", mkErr)
		}
	}
	// 0600: the file holds a live bearer credential.
	if writeErr := os.WriteFile(c.Path, data, 0o600); writeErr != nil {
		return fmt.Errorf("write token cache: %w", writeErr)
	}
	return nil
}

func (c *FileTokenCache) Restore() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	var rec cachedToken
	if unmarshalErr := json.Unmarshal(data, &rec); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal token cache: %w", unmarshalErr)
	}
	tok := rec.Token
	if rec.IDToken != "" {
		return tok.WithExtra(map[string]any{"id_token": rec.IDToken}), nil
	}
	return &tok, nil
}

func (c *FileTokenCache) Drop() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token cache: %w", err)
	}
	return nil
}
