package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/ports"
)

// Classification is the outcome of probing the tenant directory for a
// verified principal. At most one record is non-nil, chosen by precedence.
type Classification struct {
	Class    domain.ActorClass
	Admin    *ports.AdminRecord
	Operator *ports.OperatorRecord
	Member   *ports.MemberRecord
}

// ClassifierOptions groups dependencies for Classifier.
type ClassifierOptions struct {
	Admins    ports.AdminDirectory
	Operators ports.OperatorDirectory
	Members   ports.MemberDirectory
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Classifier maps a verified principal to an actor class by probing the three
// directory tables concurrently. The probes are independent network calls, so
// they are issued in parallel; precedence is applied only after all complete,
// which keeps the result deterministic regardless of completion order.
type Classifier struct {
	admins    ports.AdminDirectory
	operators ports.OperatorDirectory
	members   ports.MemberDirectory
	timeout   time.Duration
	logger    *slog.Logger
}

const defaultLookupTimeout = 10 * time.Second

// NewClassifier constructs a Classifier.
func NewClassifier(opts ClassifierOptions) *Classifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		admins:    opts.Admins,
		operators: opts.Operators,
		members:   opts.Members,
		timeout:   timeout,
		logger:    logger.With("component", "classifier"),
	}
}

// Classify probes all three directories for principalID. A probe error or
// timeout fails the whole classification; a clean all-miss returns
// domain.ErrZombieSession so the caller can revoke the orphaned credential.
func (c *Classifier) Classify(ctx context.Context, principalID string) (Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		admin    *ports.AdminRecord
		operator *ports.OperatorRecord
		member   *ports.MemberRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := c.admins.FindByPrincipalID(gctx, principalID)
		if err != nil {
			return fmt.Errorf("admin probe: %w", err)
		}
		admin = rec
		return nil
	})
	g.Go(func() error {
		rec, err := c.operators.FindByPrincipalID(gctx, principalID)
		if err != nil {
			return fmt.Errorf("operator probe: %w", err)
		}
		operator = rec
		return nil
	})
	g.Go(func() error {
		rec, err := c.members.FindByPrincipalID(gctx, principalID)
		if err != nil {
			return fmt.Errorf("member probe: %w", err)
		}
		member = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return Classification{}, err
	}

	// Precedence: a principal present in more than one table resolves to the
	// most privileged class.
	switch {
	case admin != nil:
		return Classification{Class: domain.ActorPlatformAdmin, Admin: admin}, nil
	case operator != nil:
		return Classification{Class: domain.ActorPartnerOperator, Operator: operator}, nil
	case member != nil:
		return Classification{Class: domain.ActorOrgMember, Member: member}, nil
	default:
		c.logger.WarnContext(ctx, "verified principal has no directory record",
			"principal_id", principalID)
		return Classification{Class: domain.ActorNone}, domain.ErrZombieSession
	}
}
