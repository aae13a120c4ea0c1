package data_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowpos/pos-api/internal/data"
	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/testutil"
)

type identityFixture struct {
	PartnerID    string
	OrgID        string
	FirstLocID   string
	MemberID     string
	PinMemberID  string
	SuspendedOrg string
}

// seedIdentityFixture inserts a partner, an organization with settings and two
// locations, and directory rows for each actor class.
func seedIdentityFixture(t *testing.T, db *sql.DB) identityFixture {
	t.Helper()
	ctx := context.Background()
	var fx identityFixture

	_, err := db.ExecContext(ctx, `
		INSERT INTO platform_admins (principal_id, email, display_name, active)
		VALUES ('p-admin', 'root@example.com', 'Root', TRUE),
		       ('p-admin-inactive', 'gone@example.com', 'Gone', FALSE)`)
	require.NoError(t, err)

	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO partners (name, slug, status, brand_color)
		VALUES ('Retail Partners', 'retail-partners', 'active', '#123456')
		RETURNING id`).Scan(&fx.PartnerID))

	_, err = db.ExecContext(ctx, `
		INSERT INTO partner_operators (principal_id, email, display_name, role, partner_id, active)
		VALUES ('p-op', 'op@example.com', 'Op', 'operator', $1, TRUE)`, fx.PartnerID)
	require.NoError(t, err)

	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO organizations (name, slug, logo_url, active)
		VALUES ('Acme Coffee', 'acme-cafe', 'https://cdn.acme.test/logo.png', TRUE)
		RETURNING id`).Scan(&fx.OrgID))

	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO organizations (name, slug, active)
		VALUES ('Closed Cafe', 'closed-cafe', FALSE)
		RETURNING id`).Scan(&fx.SuspendedOrg))

	_, err = db.ExecContext(ctx, `
		INSERT INTO organization_settings (org_id, currency, tax_rate_bps)
		VALUES ($1, 'EUR', 1900)`, fx.OrgID)
	require.NoError(t, err)

	// Two locations with explicit timestamps; the older one is the default.
	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO locations (org_id, name, address, created_at)
		VALUES ($1, 'Main Street', '1 Main St', $2)
		RETURNING id`, fx.OrgID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Scan(&fx.FirstLocID))
	_, err = db.ExecContext(ctx, `
		INSERT INTO locations (org_id, name, address, created_at)
		VALUES ($1, 'Harbor', '2 Dock Rd', $2)`,
		fx.OrgID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	pinHash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO org_members (principal_id, email, display_name, role, org_id, active)
		VALUES ('p-member', 'staff@example.com', 'Staff', 'staff', $1, TRUE)
		RETURNING id`, fx.OrgID).Scan(&fx.MemberID))

	require.NoError(t, db.QueryRowContext(ctx, `
		INSERT INTO org_members (email, display_name, role, org_id, pin_hash, active)
		VALUES ('barista@example.com', 'Barista', 'manager', $1, $2, TRUE)
		RETURNING id`, fx.OrgID, string(pinHash)).Scan(&fx.PinMemberID))

	return fx
}

func TestDirectoryRepos(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		fx := seedIdentityFixture(t, db)
		ctx := context.Background()

		t.Run("admin probe hits active rows only", func(t *testing.T) {
			repo := data.NewAdminRepo(db)

			rec, err := repo.FindByPrincipalID(ctx, "p-admin")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, "root@example.com", rec.Email)

			rec, err = repo.FindByPrincipalID(ctx, "p-admin-inactive")
			require.NoError(t, err)
			assert.Nil(t, rec)
		})

		t.Run("operator probe carries partner id", func(t *testing.T) {
			rec, err := data.NewOperatorRepo(db).FindByPrincipalID(ctx, "p-op")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, fx.PartnerID, rec.PartnerID)
			assert.Equal(t, "operator", rec.Role)
		})

		t.Run("member probe returns role and org", func(t *testing.T) {
			rec, err := data.NewMemberRepo(db).FindByPrincipalID(ctx, "p-member")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, domain.MemberRoleStaff, rec.Role)
			assert.Equal(t, fx.OrgID, rec.OrgID)
		})

		t.Run("miss is nil record, nil error", func(t *testing.T) {
			rec, err := data.NewMemberRepo(db).FindByPrincipalID(ctx, "nobody")
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	})
}

func TestTenantRepo(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		fx := seedIdentityFixture(t, db)
		repo := data.NewTenantRepo(db)
		ctx := context.Background()

		t.Run("organization lookups", func(t *testing.T) {
			org, err := repo.OrganizationByID(ctx, fx.OrgID)
			require.NoError(t, err)
			assert.Equal(t, "acme-cafe", org.Slug)
			assert.Equal(t, "https://cdn.acme.test/logo.png", org.LogoURL)

			org, err = repo.OrganizationBySlug(ctx, "acme-cafe")
			require.NoError(t, err)
			assert.Equal(t, fx.OrgID, org.ID)
			assert.Equal(t, "https://cdn.acme.test/logo.png", org.LogoURL)
		})

		t.Run("inactive organization is not found", func(t *testing.T) {
			_, err := repo.OrganizationBySlug(ctx, "closed-cafe")
			assert.ErrorIs(t, err, data.ErrOrganizationNotFound)
		})

		t.Run("settings row is partial", func(t *testing.T) {
			row, err := repo.SettingsByOrgID(ctx, fx.OrgID)
			require.NoError(t, err)
			require.NotNil(t, row)
			require.NotNil(t, row.Currency)
			assert.Equal(t, "EUR", *row.Currency)
			assert.Nil(t, row.Timezone)

			merged := domain.MergeOrgSettings(row)
			assert.Equal(t, "EUR", merged.Currency)
			assert.Equal(t, "UTC", merged.Timezone)
		})

		t.Run("no settings row returns nil", func(t *testing.T) {
			row, err := repo.SettingsByOrgID(ctx, fx.SuspendedOrg)
			require.NoError(t, err)
			assert.Nil(t, row)
		})

		t.Run("default location is the oldest", func(t *testing.T) {
			loc, err := repo.DefaultLocation(ctx, fx.OrgID)
			require.NoError(t, err)
			assert.Equal(t, fx.FirstLocID, loc.ID)
			assert.Equal(t, "Main Street", loc.Name)
		})

		t.Run("org without locations", func(t *testing.T) {
			_, err := repo.DefaultLocation(ctx, fx.SuspendedOrg)
			assert.ErrorIs(t, err, data.ErrLocationNotFound)
		})

		t.Run("partner load includes status", func(t *testing.T) {
			partner, err := repo.PartnerByID(ctx, fx.PartnerID)
			require.NoError(t, err)
			assert.Equal(t, domain.PartnerStatusActive, partner.Status)
			assert.Equal(t, "#123456", partner.BrandColor)
		})
	})
}

func TestPinRepo(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		fx := seedIdentityFixture(t, db)
		repo := data.NewPinRepo(db)
		ctx := context.Background()

		t.Run("valid pin returns full bundle", func(t *testing.T) {
			bundle, err := repo.VerifyPIN(ctx, "acme-cafe", "4321")
			require.NoError(t, err)
			assert.Equal(t, fx.PinMemberID, bundle.Member.ID)
			assert.Equal(t, domain.MemberRoleManager, bundle.Member.Role)
			assert.Equal(t, "acme-cafe", bundle.Organization.Slug)
			assert.Equal(t, "https://cdn.acme.test/logo.png", bundle.Organization.LogoURL)
			assert.Equal(t, "EUR", bundle.Organization.Settings.Currency)
			assert.Equal(t, fx.FirstLocID, bundle.Location.ID)
		})

		t.Run("wrong pin", func(t *testing.T) {
			_, err := repo.VerifyPIN(ctx, "acme-cafe", "9999")
			assert.ErrorIs(t, err, domain.ErrPINNotFound)
		})

		t.Run("unknown tenant", func(t *testing.T) {
			_, err := repo.VerifyPIN(ctx, "ghost-cafe", "4321")
			assert.ErrorIs(t, err, domain.ErrPINNotFound)
		})

		t.Run("inactive tenant", func(t *testing.T) {
			_, err := repo.VerifyPIN(ctx, "closed-cafe", "4321")
			assert.ErrorIs(t, err, domain.ErrTenantInactive)
		})

		t.Run("empty inputs fail fast", func(t *testing.T) {
			_, err := repo.VerifyPIN(ctx, "", "4321")
			assert.ErrorIs(t, err, domain.ErrPINNotFound)
			_, err = repo.VerifyPIN(ctx, "acme-cafe", "")
			assert.ErrorIs(t, err, domain.ErrPINNotFound)
		})
	})
}
