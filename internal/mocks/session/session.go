package session

// Package session contains simple hand-written test doubles for the session
// resolution ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"

	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*FakeVerifier)(nil)
	_ ports.AdminDirectory     = (*FakeAdminDirectory)(nil)
	_ ports.OperatorDirectory  = (*FakeOperatorDirectory)(nil)
	_ ports.MemberDirectory    = (*FakeMemberDirectory)(nil)
	_ ports.TenantDirectory    = (*FakeTenantDirectory)(nil)
	_ ports.PINVerifier        = (*FakePINVerifier)(nil)
	_ ports.SessionStore       = (*MemorySessionStore)(nil)
)

// FakeVerifier simulates the external credential provider. Behavior is driven
// by the optional Func hooks; without hooks it acts as a provider holding
// Principal when HasCredential is true. Call counts are safe for concurrent
// use.
type FakeVerifier struct {
	SignInFunc           func(ctx context.Context, email, secret string) (domain.Principal, error)
	SignOutFunc          func(ctx context.Context) error
	CurrentPrincipalFunc func(ctx context.Context) (domain.Principal, bool, error)
	VerifyPrincipalFunc  func(ctx context.Context) (domain.Principal, error)

	Principal     domain.Principal
	HasCredential bool

	mu           sync.Mutex
	signInCalls  int
	signOutCalls int
	verifyCalls  int
}

func (f *FakeVerifier) SignIn(ctx context.Context, email, secret string) (domain.Principal, error) {
	f.mu.Lock()
	f.signInCalls++
	f.mu.Unlock()
	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, email, secret)
	}
	f.mu.Lock()
	f.HasCredential = true
	f.mu.Unlock()
	return f.Principal, nil
}

func (f *FakeVerifier) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	if f.SignOutFunc != nil {
		return f.SignOutFunc(ctx)
	}
	f.mu.Lock()
	f.HasCredential = false
	f.mu.Unlock()
	return nil
}

func (f *FakeVerifier) CurrentPrincipal(ctx context.Context) (domain.Principal, bool, error) {
	if f.CurrentPrincipalFunc != nil {
		return f.CurrentPrincipalFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.HasCredential {
		return domain.Principal{}, false, nil
	}
	return f.Principal, true, nil
}

func (f *FakeVerifier) VerifyPrincipal(ctx context.Context) (domain.Principal, error) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	if f.VerifyPrincipalFunc != nil {
		return f.VerifyPrincipalFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.HasCredential {
		return domain.Principal{}, domain.ErrInvalidCredential
	}
	return f.Principal, nil
}

// SignOutCalls reports how many times SignOut was invoked.
func (f *FakeVerifier) SignOutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

// VerifyCalls reports how many times VerifyPrincipal was invoked.
func (f *FakeVerifier) VerifyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// FakeAdminDirectory answers admin probes from a static map.
type FakeAdminDirectory struct {
	Records map[string]*ports.AdminRecord
	Err     error
}

func (f *FakeAdminDirectory) FindByPrincipalID(_ context.Context, id string) (*ports.AdminRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records[id], nil
}

// FakeOperatorDirectory answers operator probes from a static map.
type FakeOperatorDirectory struct {
	Records map[string]*ports.OperatorRecord
	Err     error
}

func (f *FakeOperatorDirectory) FindByPrincipalID(_ context.Context, id string) (*ports.OperatorRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records[id], nil
}

// FakeMemberDirectory answers member probes from a static map.
type FakeMemberDirectory struct {
	Records map[string]*ports.MemberRecord
	Err     error
}

func (f *FakeMemberDirectory) FindByPrincipalID(_ context.Context, id string) (*ports.MemberRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records[id], nil
}

// FakeTenantDirectory serves organizations, settings, locations, and partners
// from static maps keyed by id (or slug for OrganizationBySlug).
type FakeTenantDirectory struct {
	Orgs       map[string]*domain.Organization
	OrgsBySlug map[string]*domain.Organization
	Settings   map[string]*domain.OrgSettingsRow
	Locations  map[string]*domain.Location
	Partners   map[string]*domain.Partner

	OrgErr      error
	SettingsErr error
	LocationErr error
	PartnerErr  error
}

func (f *FakeTenantDirectory) OrganizationByID(_ context.Context, id string) (*domain.Organization, error) {
	if f.OrgErr != nil {
		return nil, f.OrgErr
	}
	if org, ok := f.Orgs[id]; ok {
		v := *org
		return &v, nil
	}
	return nil, ErrNotFound
}

func (f *FakeTenantDirectory) OrganizationBySlug(_ context.Context, slug string) (*domain.Organization, error) {
	if f.OrgErr != nil {
		return nil, f.OrgErr
	}
	if org, ok := f.OrgsBySlug[slug]; ok {
		v := *org
		return &v, nil
	}
	return nil, ErrNotFound
}

func (f *FakeTenantDirectory) SettingsByOrgID(_ context.Context, orgID string) (*domain.OrgSettingsRow, error) {
	if f.SettingsErr != nil {
		return nil, f.SettingsErr
	}
	return f.Settings[orgID], nil
}

func (f *FakeTenantDirectory) DefaultLocation(_ context.Context, orgID string) (*domain.Location, error) {
	if f.LocationErr != nil {
		return nil, f.LocationErr
	}
	if loc, ok := f.Locations[orgID]; ok {
		v := *loc
		return &v, nil
	}
	return nil, ErrNotFound
}

func (f *FakeTenantDirectory) PartnerByID(_ context.Context, id string) (*domain.Partner, error) {
	if f.PartnerErr != nil {
		return nil, f.PartnerErr
	}
	if p, ok := f.Partners[id]; ok {
		v := *p
		return &v, nil
	}
	return nil, ErrNotFound
}

// FakePINVerifier returns a fixed bundle for one tenantCode/pin pair.
type FakePINVerifier struct {
	TenantCode string
	PIN        string
	Bundle     domain.PinBundle
	Err        error
}

func (f *FakePINVerifier) VerifyPIN(_ context.Context, tenantCode, pin string) (domain.PinBundle, error) {
	if f.Err != nil {
		return domain.PinBundle{}, f.Err
	}
	if tenantCode != f.TenantCode || pin != f.PIN {
		return domain.PinBundle{}, domain.ErrPINNotFound
	}
	return f.Bundle, nil
}

// MemorySessionStore is an in-memory persisted-session store for unit tests.
// It records every saved state so tests can assert on the persistence history.
type MemorySessionStore struct {
	mu      sync.Mutex
	rec     domain.PersistedSession
	present bool

	History []domain.PersistedSession
	SaveErr error
	LoadErr error
}

func (m *MemorySessionStore) Save(_ context.Context, rec domain.PersistedSession) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.present = true
	m.History = append(m.History, rec)
	return nil
}

func (m *MemorySessionStore) Load(_ context.Context) (domain.PersistedSession, bool, error) {
	if m.LoadErr != nil {
		return domain.PersistedSession{}, false, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.present, nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = domain.PersistedSession{}
	m.present = false
	return nil
}

// Latest returns the most recently saved record.
func (m *MemorySessionStore) Latest() (domain.PersistedSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.present
}

// Seed installs a record as if it had been persisted by a previous process.
func (m *MemorySessionStore) Seed(rec domain.PersistedSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.present = true
}

// ErrNotFound is returned by fakes when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}
