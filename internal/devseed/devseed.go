// Package devseed populates a development database with a working set of
// identity records: a platform admin, a partner with an operator, and an
// organization with settings, a location, and PIN-enabled members.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent: rows that already exist are skipped.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	failures := 0
	failures += seedAdmins(ctx, db, logger)
	failures += seedPartners(ctx, db, logger)
	if err := seedOrganization(ctx, db, logger); err != nil {
		return err
	}
	failures += seedMembers(ctx, db, logger)

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// isDuplicate reports whether err is a unique constraint violation, which
// during seeding means the record was created by a previous run.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func seedAdmins(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	admins := []struct {
		principalID string
		email       string
		displayName string
	}{
		{"dev-admin-1", "admin@flowpos.dev", "Dev Admin"},
	}

	failures := 0
	for _, a := range admins {
		_, err := db.ExecContext(ctx, `
			INSERT INTO platform_admins (principal_id, email, display_name, active)
			VALUES ($1, $2, $3, TRUE)`,
			a.principalID, a.email, a.displayName)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded platform admin", "email", a.email)
		case isDuplicate(err):
			logger.InfoContext(ctx, "platform admin already exists", "email", a.email)
		default:
			logger.ErrorContext(ctx, "failed to seed platform admin", "email", a.email, "error", err)
			failures++
		}
	}
	return failures
}

func seedPartners(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	failures := 0

	var partnerID string
	err := db.QueryRowContext(ctx, `
		INSERT INTO partners (name, slug, status, brand_color)
		VALUES ('Dev Retail Partners', 'dev-retail', 'active', '#2d6cdf')
		RETURNING id`).Scan(&partnerID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "seeded partner", "slug", "dev-retail")
	case isDuplicate(err):
		logger.InfoContext(ctx, "partner already exists", "slug", "dev-retail")
		if qerr := db.QueryRowContext(ctx,
			`SELECT id FROM partners WHERE slug = 'dev-retail'`).Scan(&partnerID); qerr != nil {
			logger.ErrorContext(ctx, "failed to look up existing partner", "error", qerr)
			return failures + 1
		}
	default:
		logger.ErrorContext(ctx, "failed to seed partner", "error", err)
		return failures + 1
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO partner_operators (principal_id, partner_id, email, display_name, role)
		VALUES ('dev-operator-1', $1, 'operator@flowpos.dev', 'Dev Operator', 'operator')`,
		partnerID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "seeded partner operator", "email", "operator@flowpos.dev")
	case isDuplicate(err):
		logger.InfoContext(ctx, "partner operator already exists", "email", "operator@flowpos.dev")
	default:
		logger.ErrorContext(ctx, "failed to seed partner operator", "error", err)
		failures++
	}

	return failures
}

func seedOrganization(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	var orgID string
	err := db.QueryRowContext(ctx, `
		INSERT INTO organizations (name, slug, logo_url, active)
		VALUES ('Dev Coffee Co', 'dev-coffee', 'https://cdn.flowpos.dev/logos/dev-coffee.png', TRUE)
		RETURNING id`).Scan(&orgID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "seeded organization", "slug", "dev-coffee")
	case isDuplicate(err):
		logger.InfoContext(ctx, "organization already exists", "slug", "dev-coffee")
		return nil
	default:
		return fmt.Errorf("seed organization: %w", err)
	}

	if _, err = db.ExecContext(ctx, `
		INSERT INTO organization_settings (org_id, currency, timezone, tax_rate_bps, require_pin)
		VALUES ($1, 'USD', 'America/New_York', 875, TRUE)`, orgID); err != nil && !isDuplicate(err) {
		return fmt.Errorf("seed organization settings: %w", err)
	}

	if _, err = db.ExecContext(ctx, `
		INSERT INTO locations (org_id, name, address)
		VALUES ($1, 'Main Street', '1 Main St')`, orgID); err != nil {
		return fmt.Errorf("seed location: %w", err)
	}

	return nil
}

func seedMembers(ctx context.Context, db *sql.DB, logger *slog.Logger) int {
	var orgID string
	if err := db.QueryRowContext(ctx,
		`SELECT id FROM organizations WHERE slug = 'dev-coffee'`).Scan(&orgID); err != nil {
		logger.ErrorContext(ctx, "failed to look up dev organization", "error", err)
		return 1
	}

	// Anonymous PIN members have no unique key, so skip the whole batch when
	// the org already has members.
	var memberCount int
	if err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM org_members WHERE org_id = $1`, orgID).Scan(&memberCount); err != nil {
		logger.ErrorContext(ctx, "failed to count org members", "error", err)
		return 1
	}
	if memberCount > 0 {
		logger.InfoContext(ctx, "org members already seeded", "count", memberCount)
		return 0
	}

	members := []struct {
		principalID *string
		email       string
		displayName string
		role        string
		pin         string
	}{
		{strPtr("dev-member-1"), "owner@flowpos.dev", "Dev Owner", "owner", "1111"},
		{nil, "manager@flowpos.dev", "Dev Manager", "manager", "2222"},
		{nil, "barista@flowpos.dev", "Dev Barista", "staff", "3333"},
	}

	failures := 0
	for _, m := range members {
		hash, err := bcrypt.GenerateFromPassword([]byte(m.pin), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorContext(ctx, "failed to hash member pin", "member", m.displayName, "error", err)
			failures++
			continue
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO org_members (org_id, principal_id, email, display_name, role, pin_hash, active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)`,
			orgID, m.principalID, m.email, m.displayName, m.role, string(hash))
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded org member", "member", m.displayName, "role", m.role)
		case isDuplicate(err):
			logger.InfoContext(ctx, "org member already exists", "member", m.displayName)
		default:
			logger.ErrorContext(ctx, "failed to seed org member", "member", m.displayName, "error", err)
			failures++
		}
	}
	return failures
}

func strPtr(s string) *string { return &s }
