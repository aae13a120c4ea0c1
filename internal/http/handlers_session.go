package httpx

import (
	"context"
	"errors"
	"net/http"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// Sessions is the session arbiter surface the HTTP layer depends on.
type Sessions interface {
	GetSession() domain.Session
	ResolveSession(ctx context.Context) error
	LoginWithCredential(ctx context.Context, email, secret string) error
	LoginWithPIN(ctx context.Context, tenantCode, pin string) error
	EndSession(ctx context.Context) error
	EndActorOnly(ctx context.Context) error
	// Resolve and switch share one semantic: installing a StoreConfig is a
	// whole-value overwrite, whether or not one is already present. The API
	// exposes a single POST verb; the handler goes through SwitchStoreConfig
	// because a configured terminal re-posting a code is the switch intent.
	ResolveStoreConfig(ctx context.Context, tenantCode string) (domain.StoreConfig, error)
	SwitchStoreConfig(ctx context.Context, tenantCode string) (domain.StoreConfig, error)
	ClearStoreConfig(ctx context.Context) error
	HasPermission(permission string) bool
}

// SessionHandlers serves the terminal session API.
type SessionHandlers struct {
	sessions Sessions
}

// NewSessionHandlers constructs SessionHandlers.
func NewSessionHandlers(sessions Sessions) *SessionHandlers {
	return &SessionHandlers{sessions: sessions}
}

// Get returns the current session state. Collaborators poll this instead of
// receiving errors from background resolution.
func (h *SessionHandlers) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

// Resolve runs the resolution pipeline and returns the resulting state.
func (h *SessionHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ResolveSession(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

type credentialLoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// Login signs in with an email/secret pair.
func (h *SessionHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Secret == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", errors.New("email and secret are required"))
		return
	}
	if err := h.sessions.LoginWithCredential(r.Context(), req.Email, req.Secret); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

type pinLoginRequest struct {
	TenantCode string `json:"tenant_code"`
	PIN        string `json:"pin"`
}

// LoginPIN signs in an organization member by tenant code and PIN.
func (h *SessionHandlers) LoginPIN(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TenantCode == "" {
		// A PIN terminal that has a store configured can omit the code.
		if store := h.sessions.GetSession().Store; store != nil {
			req.TenantCode = store.Slug
		}
	}
	if req.TenantCode == "" || req.PIN == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", errors.New("tenant_code and pin are required"))
		return
	}
	if err := h.sessions.LoginWithPIN(r.Context(), req.TenantCode, req.PIN); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

// Logout performs a full logout, revoking any external credential.
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndSession(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

// LogoutActor clears the actor without touching the external credential, so a
// PIN terminal can switch members.
func (h *SessionHandlers) LogoutActor(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndActorOnly(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.GetSession())
}

type storeConfigRequest struct {
	TenantCode string `json:"tenant_code"`
}

// ResolveStore resolves a tenant code into the terminal's store config.
func (h *SessionHandlers) ResolveStore(w http.ResponseWriter, r *http.Request) {
	var req storeConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TenantCode == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", errors.New("tenant_code is required"))
		return
	}
	store, err := h.sessions.SwitchStoreConfig(r.Context(), req.TenantCode)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

// ClearStore removes the terminal's store config.
func (h *SessionHandlers) ClearStore(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearStoreConfig(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckPermission answers a single permission check for the current actor.
func (h *SessionHandlers) CheckPermission(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", errors.New("permission name is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"permission": name,
		"allowed":    h.sessions.HasPermission(name),
	})
}

// writeSessionError maps the resolution error taxonomy onto HTTP statuses.
// Every mapped failure corresponds to a terminal unauthenticated state, so
// clients can re-read /session after any error.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "invalid_credential", err)
	case errors.Is(err, domain.ErrPINNotFound):
		writeError(w, http.StatusUnauthorized, "pin_not_recognized", err)
	case errors.Is(err, domain.ErrZombieSession):
		writeError(w, http.StatusUnauthorized, "no_account", err)
	case errors.Is(err, domain.ErrPartnerSuspended):
		writeError(w, http.StatusForbidden, "account_suspended", err)
	case errors.Is(err, domain.ErrTenantInactive):
		writeError(w, http.StatusForbidden, "tenant_inactive", err)
	case errors.Is(err, domain.ErrResolutionInFlight):
		writeError(w, http.StatusConflict, "resolution_in_flight", err)
	case errors.Is(err, domain.ErrProviderTimeout):
		writeError(w, http.StatusGatewayTimeout, "provider_timeout", err)
	case errors.Is(err, domain.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, "provider_unavailable", err)
	case errors.Is(err, domain.ErrProfileLoad):
		writeError(w, http.StatusBadGateway, "profile_load_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
