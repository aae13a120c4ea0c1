package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

var (
	// ErrOrganizationNotFound is returned when an organization lookup misses.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrPartnerNotFound is returned when a partner lookup misses.
	ErrPartnerNotFound = errors.New("partner not found")
	// ErrLocationNotFound is returned when an organization has no locations.
	ErrLocationNotFound = errors.New("location not found")
)

// TenantRepo loads the dependent tenant records (organization, settings,
// location, partner) for the context loader.
type TenantRepo struct {
	DB *sql.DB
}

func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

const (
	orgByIDQuery = `
		SELECT id, name, slug, logo_url
		FROM organizations
		WHERE id = $1 AND active`

	orgBySlugQuery = `
		SELECT id, name, slug, logo_url
		FROM organizations
		WHERE slug = $1 AND active`

	settingsByOrgQuery = `
		SELECT currency, timezone, tax_rate_bps, tax_inclusive,
		       receipt_header, receipt_footer, show_logo_on_receipt,
		       require_pin, allow_negative_stock, default_tip_percents
		FROM organization_settings
		WHERE org_id = $1`

	// Deterministic default: the first location ever created, id as tiebreak.
	defaultLocationQuery = `
		SELECT id, name, address
		FROM locations
		WHERE org_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	partnerByIDQuery = `
		SELECT id, name, slug, status, logo_url, brand_color
		FROM partners
		WHERE id = $1`
)

// OrganizationByID returns an active organization. Settings are loaded
// separately so the per-field default merge stays at the loader.
func (r *TenantRepo) OrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	return r.organizationBy(ctx, orgByIDQuery, id)
}

// OrganizationBySlug returns an active organization by its tenant code.
func (r *TenantRepo) OrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return r.organizationBy(ctx, orgBySlugQuery, slug)
}

func (r *TenantRepo) organizationBy(ctx context.Context, query, arg string) (*domain.Organization, error) {
	var row orgRow
	if err := collectOne(ctx, r.DB, query, arg, &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &domain.Organization{ID: row.ID, Name: row.Name, Slug: row.Slug, LogoURL: row.LogoURL}, nil
}

// SettingsByOrgID returns the raw nullable settings row, or nil when the
// organization has no settings record at all.
func (r *TenantRepo) SettingsByOrgID(ctx context.Context, orgID string) (*domain.OrgSettingsRow, error) {
	var row settingsRow
	if err := collectOne(ctx, r.DB, settingsByOrgQuery, orgID, &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization settings: %w", err)
	}
	return &domain.OrgSettingsRow{
		Currency:           row.Currency,
		Timezone:           row.Timezone,
		TaxRateBasisPoints: row.TaxRateBasisPoints,
		TaxInclusive:       row.TaxInclusive,
		ReceiptHeader:      row.ReceiptHeader,
		ReceiptFooter:      row.ReceiptFooter,
		ShowLogoOnReceipt:  row.ShowLogoOnReceipt,
		RequirePIN:         row.RequirePIN,
		AllowNegativeStock: row.AllowNegativeStock,
		DefaultTipPercents: row.DefaultTipPercents,
	}, nil
}

// DefaultLocation returns the organization's default location.
func (r *TenantRepo) DefaultLocation(ctx context.Context, orgID string) (*domain.Location, error) {
	var row locationRow
	if err := collectOne(ctx, r.DB, defaultLocationQuery, orgID, &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("get default location: %w", err)
	}
	return &domain.Location{ID: row.ID, Name: row.Name, Address: row.Address}, nil
}

// PartnerByID returns a partner regardless of status; the context loader owns
// the active check so it can fail closed with the right condition.
func (r *TenantRepo) PartnerByID(ctx context.Context, id string) (*domain.Partner, error) {
	var row partnerRow
	if err := collectOne(ctx, r.DB, partnerByIDQuery, id, &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &domain.Partner{
		ID:         row.ID,
		Name:       row.Name,
		Slug:       row.Slug,
		Status:     domain.PartnerStatus(row.Status),
		LogoURL:    row.LogoURL,
		BrandColor: row.BrandColor,
	}, nil
}

type orgRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Slug    string `db:"slug"`
	LogoURL string `db:"logo_url"`
}

type settingsRow struct {
	Currency           *string `db:"currency"`
	Timezone           *string `db:"timezone"`
	TaxRateBasisPoints *int    `db:"tax_rate_bps"`
	TaxInclusive       *bool   `db:"tax_inclusive"`
	ReceiptHeader      *string `db:"receipt_header"`
	ReceiptFooter      *string `db:"receipt_footer"`
	ShowLogoOnReceipt  *bool   `db:"show_logo_on_receipt"`
	RequirePIN         *bool   `db:"require_pin"`
	AllowNegativeStock *bool   `db:"allow_negative_stock"`
	DefaultTipPercents []int   `db:"default_tip_percents"`
}

type locationRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Address string `db:"address"`
}

type partnerRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Slug       string `db:"slug"`
	Status     string `db:"status"`
	LogoURL    string `db:"logo_url"`
	BrandColor string `db:"brand_color"`
}
