package oidc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileTokenCacheRoundTrip(t *testing.T) {
	cache := &FileTokenCache{Path: filepath.Join(t.TempDir(), "nested", "credential.json")}

	tok := (&oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}).WithExtra(map[string]any{"id_token": "id-xyz"})

	require.NoError(t, cache.Store(tok))

	restored, err := cache.Restore()
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "access-abc", restored.AccessToken)
	assert.Equal(t, "refresh-def", restored.RefreshToken)
	assert.Equal(t, "id-xyz", restored.Extra("id_token"))
}

func TestFileTokenCachePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	cache := &FileTokenCache{Path: path}

	require.NoError(t, cache.Store(&oauth2.Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTokenCacheMissingFile(t *testing.T) {
	cache := &FileTokenCache{Path: filepath.Join(t.TempDir(), "absent.json")}

	tok, err := cache.Restore()
	require.NoError(t, err)
	assert.Nil(t, tok)

	assert.NoError(t, cache.Drop(), "dropping an absent cache is not an error")
}

func TestFileTokenCacheStoreNilDrops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	cache := &FileTokenCache{Path: path}

	require.NoError(t, cache.Store(&oauth2.Token{AccessToken: "a"}))
	require.NoError(t, cache.Store(nil))

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileTokenCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cache := &FileTokenCache{Path: path}
	_, err := cache.Restore()
	assert.Error(t, err)
}
