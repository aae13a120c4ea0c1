package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// stubSessions is a scriptable Sessions implementation for handler tests.
type stubSessions struct {
	session domain.Session

	resolveErr  error
	loginErr    error
	pinErr      error
	logoutErr   error
	actorErr    error
	storeErr    error
	clearErr    error
	permAllowed bool

	loginEmail  string
	loginSecret string
	pinTenant   string
	pinValue    string
	storeTenant string
	permName    string
}

func (s *stubSessions) GetSession() domain.Session { return s.session }

func (s *stubSessions) ResolveSession(context.Context) error { return s.resolveErr }

func (s *stubSessions) LoginWithCredential(_ context.Context, email, secret string) error {
	s.loginEmail, s.loginSecret = email, secret
	return s.loginErr
}

func (s *stubSessions) LoginWithPIN(_ context.Context, tenantCode, pin string) error {
	s.pinTenant, s.pinValue = tenantCode, pin
	return s.pinErr
}

func (s *stubSessions) EndSession(context.Context) error   { return s.logoutErr }
func (s *stubSessions) EndActorOnly(context.Context) error { return s.actorErr }

func (s *stubSessions) ResolveStoreConfig(_ context.Context, tenantCode string) (domain.StoreConfig, error) {
	s.storeTenant = tenantCode
	if s.storeErr != nil {
		return domain.StoreConfig{}, s.storeErr
	}
	return domain.StoreConfig{
		OrgID: "org-1", Name: "Acme Coffee", Slug: tenantCode,
		LogoURL: "https://cdn.acme.test/logo.png",
	}, nil
}

func (s *stubSessions) SwitchStoreConfig(ctx context.Context, tenantCode string) (domain.StoreConfig, error) {
	return s.ResolveStoreConfig(ctx, tenantCode)
}

func (s *stubSessions) ClearStoreConfig(context.Context) error { return s.clearErr }

func (s *stubSessions) HasPermission(permission string) bool {
	s.permName = permission
	return s.permAllowed
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetSession(t *testing.T) {
	stub := &stubSessions{session: domain.Session{
		ActorClass:    domain.ActorPlatformAdmin,
		Authenticated: true,
		Verified:      true,
		Admin:         &domain.PlatformAdmin{ID: "a-1", Email: "root@example.com"},
	}}
	h := NewSessionHandlers(stub)

	rec := doJSON(t, h.Get, http.MethodGet, "/api/session", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "platform_admin", body["actor_class"])
	assert.Equal(t, true, body["authenticated"])
}

func TestResolve(t *testing.T) {
	t.Run("success returns session", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{Verified: true}}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.Resolve, http.MethodPost, "/api/session/resolve", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["verified"])
	})

	t.Run("zombie maps to 401", func(t *testing.T) {
		stub := &stubSessions{resolveErr: domain.ErrZombieSession}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.Resolve, http.MethodPost, "/api/session/resolve", "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "no_account", decodeBody(t, rec)["error"])
	})
}

func TestLogin(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		h := NewSessionHandlers(&stubSessions{})

		rec := doJSON(t, h.Login, http.MethodPost, "/api/session/login", `{"email":"a@b.c"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_fields", decodeBody(t, rec)["error"])
	})

	t.Run("invalid json", func(t *testing.T) {
		h := NewSessionHandlers(&stubSessions{})

		rec := doJSON(t, h.Login, http.MethodPost, "/api/session/login", `{"email":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
	})

	t.Run("bad credential maps to 401", func(t *testing.T) {
		stub := &stubSessions{loginErr: domain.ErrInvalidCredential}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.Login, http.MethodPost, "/api/session/login",
			`{"email":"a@b.c","secret":"nope"}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credential", decodeBody(t, rec)["error"])
	})

	t.Run("success passes credentials through", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{Authenticated: true, Verified: true}}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.Login, http.MethodPost, "/api/session/login",
			`{"email":"a@b.c","secret":"s3cret"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a@b.c", stub.loginEmail)
		assert.Equal(t, "s3cret", stub.loginSecret)
	})
}

func TestLoginPIN(t *testing.T) {
	t.Run("tenant code falls back to configured store", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{
			Store: &domain.StoreConfig{OrgID: "org-1", Slug: "acme-cafe"},
		}}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.LoginPIN, http.MethodPost, "/api/session/login-pin", `{"pin":"4321"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme-cafe", stub.pinTenant)
		assert.Equal(t, "4321", stub.pinValue)
	})

	t.Run("no tenant code and no store", func(t *testing.T) {
		h := NewSessionHandlers(&stubSessions{})

		rec := doJSON(t, h.LoginPIN, http.MethodPost, "/api/session/login-pin", `{"pin":"4321"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown pin maps to 401", func(t *testing.T) {
		stub := &stubSessions{pinErr: domain.ErrPINNotFound}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.LoginPIN, http.MethodPost, "/api/session/login-pin",
			`{"tenant_code":"acme-cafe","pin":"0000"}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "pin_not_recognized", decodeBody(t, rec)["error"])
	})
}

func TestLogoutEndpoints(t *testing.T) {
	t.Run("logout returns refreshed session", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{Verified: true}}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.Logout, http.MethodPost, "/api/session/logout", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
	})

	t.Run("actor-only logout", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{
			Verified: true,
			Store:    &domain.StoreConfig{OrgID: "org-1", Slug: "acme-cafe"},
		}}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.LogoutActor, http.MethodPost, "/api/session/logout-actor", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.NotNil(t, body["store"])
	})
}

func TestStoreConfigEndpoints(t *testing.T) {
	t.Run("resolve store", func(t *testing.T) {
		stub := &stubSessions{}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.ResolveStore, http.MethodPost, "/api/store-config",
			`{"tenant_code":"acme-cafe"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "acme-cafe", body["slug"])
		assert.Equal(t, "https://cdn.acme.test/logo.png", body["logo_url"])
		assert.Equal(t, "acme-cafe", stub.storeTenant)
	})

	t.Run("missing tenant code", func(t *testing.T) {
		h := NewSessionHandlers(&stubSessions{})

		rec := doJSON(t, h.ResolveStore, http.MethodPost, "/api/store-config", `{}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant maps to 502 profile load", func(t *testing.T) {
		stub := &stubSessions{storeErr: domain.ErrProfileLoad}
		h := NewSessionHandlers(stub)

		rec := doJSON(t, h.ResolveStore, http.MethodPost, "/api/store-config",
			`{"tenant_code":"ghost"}`)

		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("clear store", func(t *testing.T) {
		h := NewSessionHandlers(&stubSessions{})

		rec := doJSON(t, h.ClearStore, http.MethodDelete, "/api/store-config", "")

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestCheckPermission(t *testing.T) {
	stub := &stubSessions{permAllowed: true}
	router := NewRouter(RouterServices{Sessions: stub})
	stub.session = domain.Session{Authenticated: true, Verified: true}

	req := httptest.NewRequest(http.MethodGet, "/api/session/permissions/sale.create", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "sale.create", body["permission"])
	assert.Equal(t, true, body["allowed"])
	assert.Equal(t, "sale.create", stub.permName)
}

func TestWriteSessionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credential", domain.ErrInvalidCredential, http.StatusUnauthorized, "invalid_credential"},
		{"pin not found", domain.ErrPINNotFound, http.StatusUnauthorized, "pin_not_recognized"},
		{"zombie", domain.ErrZombieSession, http.StatusUnauthorized, "no_account"},
		{"partner suspended", domain.ErrPartnerSuspended, http.StatusForbidden, "account_suspended"},
		{"tenant inactive", domain.ErrTenantInactive, http.StatusForbidden, "tenant_inactive"},
		{"resolution in flight", domain.ErrResolutionInFlight, http.StatusConflict, "resolution_in_flight"},
		{"provider timeout", domain.ErrProviderTimeout, http.StatusGatewayTimeout, "provider_timeout"},
		{"provider unavailable", domain.ErrProviderUnavailable, http.StatusBadGateway, "provider_unavailable"},
		{"profile load", domain.ErrProfileLoad, http.StatusBadGateway, "profile_load_failed"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeSessionError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error"])
		})
	}
}
