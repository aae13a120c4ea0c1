package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowpos/pos-api/internal/data/pgxutil"
	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/ports"
)

// Directory repos back the identity classifier's tenant-scoped probes. Each
// probe filters to active rows server-side and reports "no match" as a nil
// record, never as an error: the classifier treats only I/O failures as
// failures.

// AdminRepo probes the platform_admins table.
type AdminRepo struct {
	DB *sql.DB
}

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

const adminByPrincipalQuery = `
	SELECT id, email, display_name
	FROM platform_admins
	WHERE principal_id = $1 AND active`

func (r *AdminRepo) FindByPrincipalID(ctx context.Context, principalID string) (*ports.AdminRecord, error) {
	var rec adminRow
	err := collectOne(ctx, r.DB, adminByPrincipalQuery, principalID, &rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("probe platform_admins: %w", err)
	}
	return &ports.AdminRecord{ID: rec.ID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

// OperatorRepo probes the partner_operators table.
type OperatorRepo struct {
	DB *sql.DB
}

func NewOperatorRepo(db *sql.DB) *OperatorRepo { return &OperatorRepo{DB: db} }

const operatorByPrincipalQuery = `
	SELECT id, email, display_name, role, partner_id
	FROM partner_operators
	WHERE principal_id = $1 AND active`

func (r *OperatorRepo) FindByPrincipalID(ctx context.Context, principalID string) (*ports.OperatorRecord, error) {
	var rec operatorRow
	err := collectOne(ctx, r.DB, operatorByPrincipalQuery, principalID, &rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("probe partner_operators: %w", err)
	}
	return &ports.OperatorRecord{
		ID:          rec.ID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Role:        rec.Role,
		PartnerID:   rec.PartnerID,
	}, nil
}

// MemberRepo probes the org_members table.
type MemberRepo struct {
	DB *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberByPrincipalQuery = `
	SELECT id, email, display_name, role, org_id
	FROM org_members
	WHERE principal_id = $1 AND active`

func (r *MemberRepo) FindByPrincipalID(ctx context.Context, principalID string) (*ports.MemberRecord, error) {
	var rec memberRow
	err := collectOne(ctx, r.DB, memberByPrincipalQuery, principalID, &rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("probe org_members: %w", err)
	}
	return &ports.MemberRecord{
		ID:          rec.ID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Role:        rec.Role,
		OrgID:       rec.OrgID,
	}, nil
}

// row types for pgx.RowToStructByName

type adminRow struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
}

type operatorRow struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
	Role        string `db:"role"`
	PartnerID   string `db:"partner_id"`
}

type memberRow struct {
	ID          string            `db:"id"`
	Email       string            `db:"email"`
	DisplayName string            `db:"display_name"`
	Role        domain.MemberRole `db:"role"`
	OrgID       string            `db:"org_id"`
}

// collectOne runs a single-row query through the pgx bridge into dst.
func collectOne[T any](ctx context.Context, db *sql.DB, query, arg string, dst *T) error {
	return pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
		if err != nil {
			return err
		}
		*dst = out
		return nil
	})
}
