package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowpos/pos-api/internal/data/pgxutil"
	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// PinRepo implements the atomic PIN-verification procedure: tenant code + PIN
// in, a complete OrgMemberPIN bundle out. All reads run on one connection so
// the bundle is internally consistent. PINs are stored only as bcrypt hashes
// and the raw value never leaves this function.
type PinRepo struct {
	DB *sql.DB
}

func NewPinRepo(db *sql.DB) *PinRepo { return &PinRepo{DB: db} }

const (
	pinOrgQuery = `
		SELECT id, name, slug, logo_url, active
		FROM organizations
		WHERE slug = $1`

	pinMembersQuery = `
		SELECT id, email, display_name, role, pin_hash
		FROM org_members
		WHERE org_id = $1 AND active AND pin_hash IS NOT NULL`
)

func (r *PinRepo) VerifyPIN(ctx context.Context, tenantCode, pin string) (domain.PinBundle, error) {
	if tenantCode == "" || pin == "" {
		return domain.PinBundle{}, domain.ErrPINNotFound
	}

	var bundle domain.PinBundle
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		org, err := r.lookupOrg(ctx, conn, tenantCode)
		if err != nil {
			return err
		}

		member, err := r.matchMember(ctx, conn, org.ID, pin)
		if err != nil {
			return err
		}

		settings, err := r.settingsRow(ctx, conn, org.ID)
		if err != nil {
			return err
		}
		org.Settings = domain.MergeOrgSettings(settings)

		loc, err := r.defaultLocation(ctx, conn, org.ID)
		if err != nil {
			return err
		}

		member.Organization = *org
		member.Location = *loc
		bundle = domain.PinBundle{
			Member:       *member,
			Organization: *org,
			Location:     *loc,
		}
		return nil
	})
	if err != nil {
		return domain.PinBundle{}, err
	}
	return bundle, nil
}

func (r *PinRepo) lookupOrg(ctx context.Context, conn *pgx.Conn, slug string) (*domain.Organization, error) {
	rows, err := conn.Query(ctx, pinOrgQuery, slug)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	defer rows.Close()

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[pinOrgRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPINNotFound
		}
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if !row.Active {
		return nil, domain.ErrTenantInactive
	}
	return &domain.Organization{ID: row.ID, Name: row.Name, Slug: row.Slug, LogoURL: row.LogoURL}, nil
}

// matchMember compares the PIN against every active member with a PIN set.
// Linear bcrypt comparison is fine at POS staff counts.
func (r *PinRepo) matchMember(ctx context.Context, conn *pgx.Conn, orgID, pin string) (*domain.OrgMember, error) {
	rows, err := conn.Query(ctx, pinMembersQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pin members: %w", err)
	}
	defer rows.Close()

	candidates, err := pgx.CollectRows(rows, pgx.RowToStructByName[pinMemberRow])
	if err != nil {
		return nil, fmt.Errorf("list pin members: %w", err)
	}

	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(c.PinHash), []byte(pin)) == nil {
			return &domain.OrgMember{
				ID:          c.ID,
				Email:       c.Email,
				DisplayName: c.DisplayName,
				Role:        c.Role,
			}, nil
		}
	}
	return nil, domain.ErrPINNotFound
}

func (r *PinRepo) settingsRow(ctx context.Context, conn *pgx.Conn, orgID string) (*domain.OrgSettingsRow, error) {
	rows, err := conn.Query(ctx, settingsByOrgQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("get organization settings: %w", err)
	}
	defer rows.Close()

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[settingsRow])
	if err != nil {
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

func (r *PinRepo) defaultLocation(ctx context.Context, conn *pgx.Conn, orgID string) (*domain.Location, error) {
	rows, err := conn.Query(ctx, defaultLocationQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("get default location: %w", err)
	}
	defer rows.Close()

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[locationRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("get default location: %w", err)
	}
	return &domain.Location{ID: row.ID, Name: row.Name, Address: row.Address}, nil
}

type pinOrgRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Slug    string `db:"slug"`
	LogoURL string `db:"logo_url"`
	Active  bool   `db:"active"`
}

type pinMemberRow struct {
	ID          string            `db:"id"`
	Email       string            `db:"email"`
	DisplayName string            `db:"display_name"`
	Role        domain.MemberRole `db:"role"`
	PinHash     string            `db:"pin_hash"`
}
