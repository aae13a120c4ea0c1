package session

// Package session contains domain-level types for session identity resolution.
// It is pure and free of framework/adapter concerns.

import "time"

// ActorClass identifies which of the mutually exclusive authenticated-identity
// kinds a resolved session belongs to.
// Keep string form for easy persistence and logging.
type ActorClass string

const (
	ActorNone            ActorClass = "none"
	ActorPlatformAdmin   ActorClass = "platform_admin"
	ActorPartnerOperator ActorClass = "partner_operator"
	ActorOrgMember       ActorClass = "org_member"
	ActorOrgMemberPIN    ActorClass = "org_member_pin"
)

// Principal is the identity handle returned by the external credential
// provider after successful verification. Absent for the PIN flow.
type Principal struct {
	ID        string
	Email     string
	ExpiresAt time.Time // absolute expiry from the IdP token
}

// MemberRole is an organization member's authorization role.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "owner"
	MemberRoleManager MemberRole = "manager"
	MemberRoleStaff   MemberRole = "staff"
)

// PartnerStatus is the lifecycle state of a partner account.
// Only active partners may authenticate operators.
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusSuspended PartnerStatus = "suspended"
	PartnerStatusChurned   PartnerStatus = "churned"
)

// PlatformAdmin is the actor payload for platform administrators.
type PlatformAdmin struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Partner is a partner-operator's owning account, including branding.
type Partner struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Slug       string        `json:"slug"`
	Status     PartnerStatus `json:"status"`
	LogoURL    string        `json:"logo_url"`
	BrandColor string        `json:"brand_color"`
}

// PartnerOperator is the actor payload for partner-operator users.
type PartnerOperator struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	Partner     Partner `json:"partner"`
}

// Organization is a tenant, with its settings snapshot.
type Organization struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	LogoURL  string      `json:"logo_url"`
	Settings OrgSettings `json:"settings"`
}

// Location is a physical site belonging to an organization.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// OrgMember is the actor payload for organization members, for both the
// credential and the PIN flow.
type OrgMember struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"display_name"`
	Role         MemberRole   `json:"role"`
	Organization Organization `json:"organization"`
	Location     Location     `json:"location"`
}

// StoreConfig is tenant-selection state independent of any authenticated
// actor. It is created when a human resolves a tenant code and survives
// ordinary logout so a PIN terminal can switch actors without re-entering the
// code; only an explicit clear removes it.
type StoreConfig struct {
	OrgID   string `json:"org_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logo_url"`
}

// Session is the unit of truth for "who is currently authenticated" on one
// terminal. When Authenticated is true, ActorClass is not ActorNone and
// exactly one of Admin, Operator, Member is non-nil.
type Session struct {
	ActorClass  ActorClass `json:"actor_class"`
	PrincipalID string     `json:"principal_id,omitempty"`

	Authenticated bool `json:"authenticated"`

	// Verifying is true while a resolution attempt is in flight. At most one
	// attempt runs at a time; this is a mutex, not a counter.
	Verifying bool `json:"verifying"`

	// Verified is true once a resolution attempt has completed at least once
	// this process lifetime, success or failure. While false, callers must
	// treat the session as unknown, never as logged out.
	Verified bool `json:"verified"`

	Admin    *PlatformAdmin   `json:"admin,omitempty"`
	Operator *PartnerOperator `json:"operator,omitempty"`
	Member   *OrgMember       `json:"member,omitempty"`

	Store *StoreConfig `json:"store,omitempty"`
}

// PinBundle is the structured result of the atomic PIN-verification
// procedure: everything needed to populate an OrgMemberPIN session in one
// round trip. The PIN value itself is never part of the bundle.
type PinBundle struct {
	Member       OrgMember
	Organization Organization
	Location     Location
}

// ActorCount returns how many actor payloads are populated. Used to check the
// single-actor invariant.
func (s *Session) ActorCount() int {
	n := 0
	if s.Admin != nil {
		n++
	}
	if s.Operator != nil {
		n++
	}
	if s.Member != nil {
		n++
	}
	return n
}

// ClearActor removes every actor-specific field and flips the session to
// unauthenticated. StoreConfig and the lifecycle flags are untouched.
func (s *Session) ClearActor() {
	s.ActorClass = ActorNone
	s.PrincipalID = ""
	s.Authenticated = false
	s.Admin = nil
	s.Operator = nil
	s.Member = nil
}

// IsKnown reports whether at least one resolution attempt has completed.
func (s *Session) IsKnown() bool { return s.Verified }
