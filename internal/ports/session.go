package ports

// Package ports defines interfaces (hexagonal ports) for session identity
// resolution. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// CredentialVerifier wraps the external identity provider. It is a pure I/O
// boundary: no retries, no business logic. Retry policy belongs to the caller.
type CredentialVerifier interface {
	// SignIn exchanges an email/secret pair for a verified principal and
	// mutates the provider's own persisted credential store.
	SignIn(ctx context.Context, email, secret string) (domain.Principal, error)

	// SignOut revokes the currently held credential.
	SignOut(ctx context.Context) error

	// CurrentPrincipal reads the locally cached, previously restored
	// credential without a network round trip. The boolean reports presence.
	CurrentPrincipal(ctx context.Context) (domain.Principal, bool, error)

	// VerifyPrincipal is the authoritative network round trip.
	VerifyPrincipal(ctx context.Context) (domain.Principal, error)
}

// AdminRecord is a platform administrator row from the tenant directory.
type AdminRecord struct {
	ID          string
	Email       string
	DisplayName string
}

// OperatorRecord is a partner-operator row. PartnerID references the owning
// partner, loaded separately by the context loader.
type OperatorRecord struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	PartnerID   string
}

// MemberRecord is an organization-member row.
type MemberRecord struct {
	ID          string
	Email       string
	DisplayName string
	Role        domain.MemberRole
	OrgID       string
}

// AdminDirectory probes the platform-administrator table. A nil record with a
// nil error means no active row matched.
type AdminDirectory interface {
	FindByPrincipalID(ctx context.Context, principalID string) (*AdminRecord, error)
}

// OperatorDirectory probes the partner-operator table, active rows only.
type OperatorDirectory interface {
	FindByPrincipalID(ctx context.Context, principalID string) (*OperatorRecord, error)
}

// MemberDirectory probes the organization-member table, active rows only.
type MemberDirectory interface {
	FindByPrincipalID(ctx context.Context, principalID string) (*MemberRecord, error)
}

// TenantDirectory loads the dependent tenant records required to populate a
// resolved session.
type TenantDirectory interface {
	OrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)

	// SettingsByOrgID returns nil when no settings record exists; callers
	// apply per-field defaults via domain.MergeOrgSettings.
	SettingsByOrgID(ctx context.Context, orgID string) (*domain.OrgSettingsRow, error)

	// DefaultLocation returns the organization's default location:
	// the oldest created row, id as tiebreak.
	DefaultLocation(ctx context.Context, orgID string) (*domain.Location, error)

	PartnerByID(ctx context.Context, id string) (*domain.Partner, error)
}

// PINVerifier performs the atomic tenant-code + PIN verification and returns
// the full bundle needed for an OrgMemberPIN session. Fails with
// domain.ErrPINNotFound or domain.ErrTenantInactive.
type PINVerifier interface {
	VerifyPIN(ctx context.Context, tenantCode, pin string) (domain.PinBundle, error)
}

// SessionStore persists the single keyed session record for this terminal.
// Only the persisted field partition crosses this boundary.
type SessionStore interface {
	Save(ctx context.Context, rec domain.PersistedSession) error

	// Load returns the stored record and whether one existed.
	Load(ctx context.Context) (domain.PersistedSession, bool, error)

	Clear(ctx context.Context) error
}

// PermissionTable answers permission checks over actor class and role. Pure
// lookup data owned elsewhere; no I/O.
type PermissionTable interface {
	Allowed(class domain.ActorClass, role domain.MemberRole, permission string) bool
}
