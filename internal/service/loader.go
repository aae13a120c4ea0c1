package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/ports"
)

// ResolvedActor is a fully-loaded actor payload ready to be written into the
// session. Exactly one pointer is non-nil and matches Class.
type ResolvedActor struct {
	Class    domain.ActorClass
	Admin    *domain.PlatformAdmin
	Operator *domain.PartnerOperator
	Member   *domain.OrgMember
}

// ContextLoaderOptions groups dependencies for ContextLoader.
type ContextLoaderOptions struct {
	Tenants  ports.TenantDirectory
	Verifier ports.CredentialVerifier
	Timeout  time.Duration
	Logger   *slog.Logger
}

// ContextLoader turns a Classification into a complete actor payload by
// loading the dependent tenant records. It either produces a whole payload or
// fails; a partial session is never returned.
type ContextLoader struct {
	tenants  ports.TenantDirectory
	verifier ports.CredentialVerifier
	timeout  time.Duration
	logger   *slog.Logger
}

// NewContextLoader constructs a ContextLoader.
func NewContextLoader(opts ContextLoaderOptions) *ContextLoader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextLoader{
		tenants:  opts.Tenants,
		verifier: opts.Verifier,
		timeout:  timeout,
		logger:   logger.With("component", "context_loader"),
	}
}

// Load resolves the dependent records for the classified actor.
//
// A partner operator whose owning partner is not active fails closed: the
// external credential is revoked on the spot and domain.ErrPartnerSuspended is
// returned, so a suspended partner's operator can never hold a live session.
func (l *ContextLoader) Load(ctx context.Context, principal domain.Principal, cls Classification) (ResolvedActor, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	switch cls.Class {
	case domain.ActorPlatformAdmin:
		return l.loadAdmin(principal, cls.Admin), nil
	case domain.ActorPartnerOperator:
		return l.loadOperator(ctx, cls.Operator)
	case domain.ActorOrgMember:
		return l.loadMember(ctx, cls.Member)
	default:
		return ResolvedActor{}, fmt.Errorf("load context: unexpected actor class %q", cls.Class)
	}
}

func (l *ContextLoader) loadAdmin(principal domain.Principal, rec *ports.AdminRecord) ResolvedActor {
	email := rec.Email
	if email == "" {
		email = principal.Email
	}
	return ResolvedActor{
		Class: domain.ActorPlatformAdmin,
		Admin: &domain.PlatformAdmin{
			ID:          rec.ID,
			Email:       email,
			DisplayName: rec.DisplayName,
		},
	}
}

func (l *ContextLoader) loadOperator(ctx context.Context, rec *ports.OperatorRecord) (ResolvedActor, error) {
	partner, err := l.tenants.PartnerByID(ctx, rec.PartnerID)
	if err != nil {
		return ResolvedActor{}, fmt.Errorf("load partner: %w", err)
	}
	if partner.Status != domain.PartnerStatusActive {
		l.logger.WarnContext(ctx, "operator login rejected, partner not active",
			"partner_id", partner.ID, "status", string(partner.Status))
		if signOutErr := l.verifier.SignOut(ctx); signOutErr != nil {
			l.logger.ErrorContext(ctx, "failed to revoke credential for suspended partner",
				"err", signOutErr, "partner_id", partner.ID)
		}
		return ResolvedActor{}, domain.ErrPartnerSuspended
	}
	return ResolvedActor{
		Class: domain.ActorPartnerOperator,
		Operator: &domain.PartnerOperator{
			ID:          rec.ID,
			Email:       rec.Email,
			DisplayName: rec.DisplayName,
			Role:        rec.Role,
			Partner:     *partner,
		},
	}, nil
}

func (l *ContextLoader) loadMember(ctx context.Context, rec *ports.MemberRecord) (ResolvedActor, error) {
	org, err := l.tenants.OrganizationByID(ctx, rec.OrgID)
	if err != nil {
		return ResolvedActor{}, fmt.Errorf("load organization: %w", err)
	}

	settings, err := l.tenants.SettingsByOrgID(ctx, org.ID)
	if err != nil {
		return ResolvedActor{}, fmt.Errorf("load organization settings: %w", err)
	}
	org.Settings = domain.MergeOrgSettings(settings)

	loc, err := l.tenants.DefaultLocation(ctx, org.ID)
	if err != nil {
		return ResolvedActor{}, fmt.Errorf("load default location: %w", err)
	}

	return ResolvedActor{
		Class: domain.ActorOrgMember,
		Member: &domain.OrgMember{
			ID:           rec.ID,
			Email:        rec.Email,
			DisplayName:  rec.DisplayName,
			Role:         rec.Role,
			Organization: *org,
			Location:     *loc,
		},
	}, nil
}
