package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects unauthenticated terminal", func(t *testing.T) {
		stub := &stubSessions{}
		handler := RequireAuth(stub)(okHandler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "authentication_required", decodeBody(t, rec)["error"])
	})

	t.Run("passes authenticated terminal", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{Authenticated: true, Verified: true}}
		handler := RequireAuth(stub)(okHandler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	t.Run("unauthenticated gets 401", func(t *testing.T) {
		stub := &stubSessions{permAllowed: true}
		handler := RequirePermission(stub, "org.settings.manage")(okHandler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing permission gets 403", func(t *testing.T) {
		stub := &stubSessions{session: domain.Session{Authenticated: true, Verified: true}}
		handler := RequirePermission(stub, "org.settings.manage")(okHandler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "insufficient_permissions", decodeBody(t, rec)["error"])
		assert.Equal(t, "org.settings.manage", stub.permName)
	})

	t.Run("allowed passes through", func(t *testing.T) {
		stub := &stubSessions{
			session:     domain.Session{Authenticated: true, Verified: true},
			permAllowed: true,
		}
		handler := RequirePermission(stub, "org.settings.manage")(okHandler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecoverMiddleware(t *testing.T) {
	handler := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddlewarePreservesStatus(t *testing.T) {
	handler := Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRouterHealth(t *testing.T) {
	router := NewRouter(RouterServices{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterPermissionRouteRequiresAuth(t *testing.T) {
	stub := &stubSessions{permAllowed: true}
	router := NewRouter(RouterServices{Sessions: stub})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/permissions/sale.create", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
