package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/observability/statsd"
	"github.com/flowpos/pos-api/internal/ports"
)

// Timeouts bounds each suspending stage of the resolution pipeline. A timeout
// is a failure, never a hang: the state machine always reaches a terminal
// state.
type Timeouts struct {
	// Readiness bounds the cached-credential check that gates resolution.
	Readiness time.Duration
	// Verify bounds the authoritative provider round trip.
	Verify time.Duration
	// Lookup bounds directory probes and tenant loads.
	Lookup time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Readiness <= 0 {
		t.Readiness = 5 * time.Second
	}
	if t.Verify <= 0 {
		t.Verify = 15 * time.Second
	}
	if t.Lookup <= 0 {
		t.Lookup = defaultLookupTimeout
	}
	return t
}

// SessionArbiterOptions groups dependencies for SessionArbiter.
type SessionArbiterOptions struct {
	Verifier    ports.CredentialVerifier
	Classifier  *Classifier
	Loader      *ContextLoader
	Pins        ports.PINVerifier
	Tenants     ports.TenantDirectory
	Store       ports.SessionStore
	Permissions ports.PermissionTable
	Metrics     statsd.Sink
	Logger      *slog.Logger
	Timeouts    Timeouts
}

// SessionArbiter owns the single session record for this terminal and
// sequences the credential verifier, classifier, and context loader behind it.
//
// Concurrency model: all reads and terminal writes go through one mutex; a
// per-attempt epoch counter guards the terminal write so a resolution that was
// superseded by a newer login can never commit a stale actor; concurrent
// ResolveSession calls collapse into one flight.
type SessionArbiter struct {
	verifier ports.CredentialVerifier
	classify *Classifier
	load     *ContextLoader
	pins     ports.PINVerifier
	tenants  ports.TenantDirectory
	store    ports.SessionStore
	perms    ports.PermissionTable
	metrics  statsd.Sink
	logger   *slog.Logger
	timeouts Timeouts

	mu      sync.Mutex
	session domain.Session
	epoch   uint64

	flight singleflight.Group
}

// NewSessionArbiter constructs a SessionArbiter starting from an empty,
// unresolved session. Call Restore to rehydrate persisted state.
func NewSessionArbiter(opts SessionArbiterOptions) *SessionArbiter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var metrics statsd.Sink = noopSink{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	return &SessionArbiter{
		verifier: opts.Verifier,
		classify: opts.Classifier,
		load:     opts.Loader,
		pins:     opts.Pins,
		tenants:  opts.Tenants,
		store:    opts.Store,
		perms:    opts.Permissions,
		metrics:  metrics,
		logger:   logger.With("component", "session"),
		timeouts: opts.Timeouts.withDefaults(),
		session:  domain.Session{ActorClass: domain.ActorNone},
	}
}

// Restore loads the persisted session record and rehydrates the in-memory
// session from it. Restored state is a hint until ResolveSession has run:
// Verified always starts false.
func (a *SessionArbiter) Restore(ctx context.Context) error {
	rec, ok, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return nil
	}
	a.mu.Lock()
	a.session = domain.Rehydrate(rec)
	a.mu.Unlock()
	return nil
}

// GetSession returns a copy of the current session.
func (a *SessionArbiter) GetSession() domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copySession(a.session)
}

// ResolveSession runs the full resolution pipeline once per process lifetime.
// It is a no-op once the session is verified; concurrent callers share a
// single in-flight attempt and its result.
func (a *SessionArbiter) ResolveSession(ctx context.Context) error {
	a.mu.Lock()
	verified := a.session.Verified
	a.mu.Unlock()
	if verified {
		return nil
	}

	_, err, _ := a.flight.Do("resolve", func() (any, error) {
		return nil, a.resolveOnce(ctx)
	})
	return err
}

func (a *SessionArbiter) resolveOnce(ctx context.Context) error {
	a.mu.Lock()
	if a.session.Verified {
		a.mu.Unlock()
		return nil
	}
	if a.session.Verifying {
		a.mu.Unlock()
		return domain.ErrResolutionInFlight
	}
	a.session.Verifying = true
	epoch := a.epoch
	a.mu.Unlock()

	start := time.Now()
	err := a.runResolution(ctx, epoch)
	a.observe("session.resolve", start, err)
	return err
}

// runResolution is the shared pipeline behind ResolveSession: readiness gate,
// authoritative verify, classification, context load, terminal write.
func (a *SessionArbiter) runResolution(ctx context.Context, epoch uint64) error {
	// Readiness gate: wait for the provider's own local credential restore
	// before the authoritative call. A clean "no credential" here resolves to
	// unauthenticated without a network round trip.
	readyCtx, cancelReady := context.WithTimeout(ctx, a.timeouts.Readiness)
	_, ok, readyErr := a.verifier.CurrentPrincipal(readyCtx)
	cancelReady()
	if readyErr == nil && !ok {
		a.commitUnauthenticated(ctx, epoch)
		return nil
	}
	if readyErr != nil {
		// Advisory only; the authoritative call decides.
		a.logger.DebugContext(ctx, "credential readiness check failed", "err", readyErr)
	}

	verifyCtx, cancelVerify := context.WithTimeout(ctx, a.timeouts.Verify)
	principal, err := a.verifier.VerifyPrincipal(verifyCtx)
	cancelVerify()
	if err != nil {
		// Fully overwrite any stale persisted actor data so a revoked
		// session can never show the previous user.
		a.commitUnauthenticated(ctx, epoch)
		return err
	}

	return a.resolvePrincipal(ctx, epoch, principal)
}

// resolvePrincipal classifies a verified principal, loads its context, and
// commits the terminal state. Shared by ResolveSession and LoginWithCredential.
func (a *SessionArbiter) resolvePrincipal(ctx context.Context, epoch uint64, principal domain.Principal) error {
	cls, err := a.classify.Classify(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrZombieSession) {
			a.revokeZombie(ctx, principal)
			a.commitUnauthenticated(ctx, epoch)
			return domain.ErrZombieSession
		}
		a.commitUnauthenticated(ctx, epoch)
		return errors.Join(domain.ErrProfileLoad, err)
	}

	actor, err := a.load.Load(ctx, principal, cls)
	if err != nil {
		a.commitUnauthenticated(ctx, epoch)
		if errors.Is(err, domain.ErrPartnerSuspended) {
			return domain.ErrPartnerSuspended
		}
		return errors.Join(domain.ErrProfileLoad, err)
	}

	a.commitAuthenticated(ctx, epoch, principal, actor)
	return nil
}

// revokeZombie signs out a verified credential that has no directory record.
// Leaving it active would bounce the user between authenticated and
// unauthenticated views forever.
func (a *SessionArbiter) revokeZombie(ctx context.Context, principal domain.Principal) {
	a.logger.WarnContext(ctx, "revoking credential with no directory record",
		"principal_id", principal.ID)
	signOutCtx, cancel := context.WithTimeout(ctx, a.timeouts.Verify)
	defer cancel()
	if err := a.verifier.SignOut(signOutCtx); err != nil {
		a.logger.ErrorContext(ctx, "failed to revoke orphaned credential",
			"err", err, "principal_id", principal.ID)
	}
}

// LoginWithCredential signs in with an email/secret pair and resolves the
// resulting principal end to end. All prior actor state is cleared before the
// attempt so no field of a previous actor can survive into the new session.
//
// A sign-in failure is returned untouched; a post-sign-in resolution failure
// surfaces as ErrProfileLoad, which is a different user-facing condition than
// bad credentials.
func (a *SessionArbiter) LoginWithCredential(ctx context.Context, email, secret string) error {
	epoch, err := a.beginAttempt(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = a.loginWithCredential(ctx, epoch, email, secret)
	a.observe("session.login", start, err)
	return err
}

func (a *SessionArbiter) loginWithCredential(ctx context.Context, epoch uint64, email, secret string) error {
	signInCtx, cancel := context.WithTimeout(ctx, a.timeouts.Verify)
	principal, err := a.verifier.SignIn(signInCtx, email, secret)
	cancel()
	if err != nil {
		a.commitUnauthenticated(ctx, epoch)
		return err
	}
	return a.resolvePrincipal(ctx, epoch, principal)
}

// LoginWithPIN verifies a tenant code and PIN through the PIN verifier and
// writes the resulting member payload directly; no identity-provider round
// trip is involved. The PIN value only passes through to the verifier and is
// never written into the session or the persisted record. A successful login
// refreshes StoreConfig from the bundle's organization.
func (a *SessionArbiter) LoginWithPIN(ctx context.Context, tenantCode, pin string) error {
	epoch, err := a.beginAttempt(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = a.loginWithPIN(ctx, epoch, tenantCode, pin)
	a.observe("session.login_pin", start, err)
	return err
}

func (a *SessionArbiter) loginWithPIN(ctx context.Context, epoch uint64, tenantCode, pin string) error {
	verifyCtx, cancel := context.WithTimeout(ctx, a.timeouts.Lookup)
	bundle, err := a.pins.VerifyPIN(verifyCtx, tenantCode, pin)
	cancel()
	if err != nil {
		a.commitUnauthenticated(ctx, epoch)
		return err
	}

	member := bundle.Member
	a.commitTerminal(ctx, epoch, func(s *domain.Session) {
		s.ClearActor()
		s.ActorClass = domain.ActorOrgMemberPIN
		s.Authenticated = true
		s.Member = &member
		s.Store = &domain.StoreConfig{
			OrgID:   bundle.Organization.ID,
			Name:    bundle.Organization.Name,
			Slug:    bundle.Organization.Slug,
			LogoURL: bundle.Organization.LogoURL,
		}
	})
	return nil
}

// beginAttempt takes the session for a new login attempt: it rejects overlap
// with an in-flight resolution, bumps the epoch so any stale attempt's
// terminal write is dropped, and clears prior actor state before anything
// else runs.
func (a *SessionArbiter) beginAttempt(ctx context.Context) (uint64, error) {
	a.mu.Lock()
	if a.session.Verifying {
		a.mu.Unlock()
		return 0, domain.ErrResolutionInFlight
	}
	a.epoch++
	epoch := a.epoch
	a.session.Verifying = true
	a.session.ClearActor()
	rec := a.session.Persisted()
	a.mu.Unlock()

	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist cleared session", "err", err)
	}
	return epoch, nil
}

// EndSession performs a full logout. PIN actors hold no external credential,
// so the verifier is skipped for them; for everyone else the credential is
// revoked first. Actor fields and Authenticated are cleared; StoreConfig is
// retained so a PIN terminal keeps its tenant selection.
func (a *SessionArbiter) EndSession(ctx context.Context) error {
	a.mu.Lock()
	class := a.session.ActorClass
	a.mu.Unlock()

	if class != domain.ActorOrgMemberPIN && class != domain.ActorNone {
		signOutCtx, cancel := context.WithTimeout(ctx, a.timeouts.Verify)
		err := a.verifier.SignOut(signOutCtx)
		cancel()
		if err != nil {
			// Logout must always succeed locally even when revocation fails.
			a.logger.ErrorContext(ctx, "credential revocation failed during logout", "err", err)
		}
	}

	a.clearActor(ctx)
	a.metrics.Count("session.logout", 1, map[string]string{"class": string(class)})
	return nil
}

// EndActorOnly clears the actor exactly like EndSession but never touches the
// credential verifier. It exists so a PIN terminal can switch between members
// under one StoreConfig.
func (a *SessionArbiter) EndActorOnly(ctx context.Context) error {
	a.clearActor(ctx)
	return nil
}

func (a *SessionArbiter) clearActor(ctx context.Context) {
	a.mu.Lock()
	a.epoch++
	a.session.ClearActor()
	a.session.Verifying = false
	rec := a.session.Persisted()
	a.mu.Unlock()

	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist session after logout", "err", err)
	}
}

// ResolveStoreConfig resolves a tenant code to a StoreConfig and installs it.
// The config is independent of any authenticated actor.
func (a *SessionArbiter) ResolveStoreConfig(ctx context.Context, tenantCode string) (domain.StoreConfig, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, a.timeouts.Lookup)
	org, err := a.tenants.OrganizationBySlug(lookupCtx, tenantCode)
	cancel()
	if err != nil {
		return domain.StoreConfig{}, fmt.Errorf("resolve store config: %w", err)
	}

	store := domain.StoreConfig{OrgID: org.ID, Name: org.Name, Slug: org.Slug, LogoURL: org.LogoURL}
	a.mu.Lock()
	a.session.Store = &store
	rec := a.session.Persisted()
	a.mu.Unlock()

	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist store config", "err", err)
	}
	return store, nil
}

// SwitchStoreConfig moves the terminal to a different tenant. Installing a
// StoreConfig is a whole-value overwrite, so switching is deliberately the
// same operation as resolving: nothing from the previous tenant survives the
// write, and no unconfigured-vs-configured distinction exists to branch on.
// The separate name keeps the two intents readable at call sites.
func (a *SessionArbiter) SwitchStoreConfig(ctx context.Context, tenantCode string) (domain.StoreConfig, error) {
	return a.ResolveStoreConfig(ctx, tenantCode)
}

// ClearStoreConfig removes the StoreConfig. This is the only operation that
// does; ordinary logout never touches it.
func (a *SessionArbiter) ClearStoreConfig(ctx context.Context) error {
	a.mu.Lock()
	a.session.Store = nil
	rec := a.session.Persisted()
	a.mu.Unlock()

	if err := a.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("clear store config: %w", err)
	}
	return nil
}

// HasPermission answers a permission check against the current actor. Pure
// lookup; no I/O.
func (a *SessionArbiter) HasPermission(permission string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.session.Authenticated {
		return false
	}
	var role domain.MemberRole
	if a.session.Member != nil {
		role = a.session.Member.Role
	}
	return a.perms.Allowed(a.session.ActorClass, role, permission)
}

// commitAuthenticated writes the fully-resolved actor as the terminal state of
// an attempt.
func (a *SessionArbiter) commitAuthenticated(ctx context.Context, epoch uint64, principal domain.Principal, actor ResolvedActor) {
	a.commitTerminal(ctx, epoch, func(s *domain.Session) {
		s.ClearActor()
		s.ActorClass = actor.Class
		s.PrincipalID = principal.ID
		s.Authenticated = true
		s.Admin = actor.Admin
		s.Operator = actor.Operator
		s.Member = actor.Member
	})
}

// commitUnauthenticated writes the terminal failure state: no actor, verified,
// not verifying. StoreConfig is untouched.
func (a *SessionArbiter) commitUnauthenticated(ctx context.Context, epoch uint64) {
	a.commitTerminal(ctx, epoch, func(s *domain.Session) {
		s.ClearActor()
	})
}

// commitTerminal applies the terminal mutation of a resolution attempt and
// persists the result, but only while the attempt is still current. A stale
// attempt's write is dropped: a newer login has already cleared state and owns
// the session.
func (a *SessionArbiter) commitTerminal(ctx context.Context, epoch uint64, mutate func(*domain.Session)) {
	a.mu.Lock()
	if epoch != a.epoch {
		a.mu.Unlock()
		a.logger.InfoContext(ctx, "dropping stale resolution result",
			"attempt_epoch", epoch, "current_epoch", a.epoch)
		return
	}
	mutate(&a.session)
	a.session.Verifying = false
	a.session.Verified = true
	rec := a.session.Persisted()
	a.mu.Unlock()

	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist session", "err", err)
	}
}

func (a *SessionArbiter) observe(metric string, start time.Time, err error) {
	a.metrics.Timing(metric+".duration", time.Since(start), nil)
	a.metrics.Count(metric, 1, map[string]string{"result": resultTag(err)})
}

func resultTag(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, domain.ErrProviderTimeout):
		return "provider_timeout"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, domain.ErrZombieSession):
		return "zombie"
	case errors.Is(err, domain.ErrPartnerSuspended):
		return "partner_suspended"
	case errors.Is(err, domain.ErrTenantInactive):
		return "tenant_inactive"
	case errors.Is(err, domain.ErrPINNotFound):
		return "pin_not_found"
	case errors.Is(err, domain.ErrProfileLoad):
		return "profile_load"
	default:
		return "error"
	}
}

func copySession(s domain.Session) domain.Session {
	out := s
	if s.Admin != nil {
		v := *s.Admin
		out.Admin = &v
	}
	if s.Operator != nil {
		v := *s.Operator
		out.Operator = &v
	}
	if s.Member != nil {
		v := *s.Member
		out.Member = &v
	}
	if s.Store != nil {
		v := *s.Store
		out.Store = &v
	}
	return out
}

// noopSink discards metrics when no sink is configured.
type noopSink struct{}

func (noopSink) Count(string, int64, map[string]string)          {}
func (noopSink) Timing(string, time.Duration, map[string]string) {}
