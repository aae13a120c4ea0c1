package httpx

import (
	"io"
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions Sessions
	Logger   *slog.Logger
}

// NewRouter builds the terminal API router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("HEAD /health", healthHandler)

	if services.Sessions != nil {
		h := NewSessionHandlers(services.Sessions)
		authed := RequireAuth(services.Sessions)

		mux.HandleFunc("GET /api/session", h.Get)
		mux.HandleFunc("POST /api/session/resolve", h.Resolve)
		mux.HandleFunc("POST /api/session/login", h.Login)
		mux.HandleFunc("POST /api/session/login-pin", h.LoginPIN)
		mux.HandleFunc("POST /api/session/logout", h.Logout)
		mux.HandleFunc("POST /api/session/logout-actor", h.LogoutActor)
		mux.Handle("GET /api/session/permissions/{name}",
			authed(http.HandlerFunc(h.CheckPermission)))

		mux.HandleFunc("POST /api/store-config", h.ResolveStore)
		mux.Handle("DELETE /api/store-config",
			RequirePermission(services.Sessions, "org.settings.manage")(http.HandlerFunc(h.ClearStore)))
	}

	return mux
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
