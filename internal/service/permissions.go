package service

import (
	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/ports"
)

// Permission names checked through HasPermission. Static data; the table is
// compiled in and never loaded over the network.
const (
	PermSaleCreate     = "sale.create"
	PermSaleRefund     = "sale.refund"
	PermReportsView    = "reports.view"
	PermSettingsManage = "org.settings.manage"
	PermMembersManage  = "org.members.manage"
	PermPartnerOrgs    = "partner.orgs.manage"
	PermPlatformManage = "platform.manage"
)

// StaticPermissions is the compiled-in permission table. Platform admins hold
// every permission; operators act on their partner's organizations; member
// grants narrow by role.
type StaticPermissions struct {
	memberGrants map[domain.MemberRole]map[string]bool
	operator     map[string]bool
}

var _ ports.PermissionTable = (*StaticPermissions)(nil)

// NewStaticPermissions builds the permission table.
func NewStaticPermissions() *StaticPermissions {
	return &StaticPermissions{
		operator: set(PermPartnerOrgs, PermReportsView),
		memberGrants: map[domain.MemberRole]map[string]bool{
			domain.MemberRoleOwner: set(
				PermSaleCreate, PermSaleRefund, PermReportsView,
				PermSettingsManage, PermMembersManage,
			),
			domain.MemberRoleManager: set(
				PermSaleCreate, PermSaleRefund, PermReportsView, PermMembersManage,
			),
			domain.MemberRoleStaff: set(PermSaleCreate),
		},
	}
}

// Allowed reports whether the given actor class and role hold the permission.
func (p *StaticPermissions) Allowed(class domain.ActorClass, role domain.MemberRole, permission string) bool {
	switch class {
	case domain.ActorPlatformAdmin:
		return true
	case domain.ActorPartnerOperator:
		return p.operator[permission]
	case domain.ActorOrgMember, domain.ActorOrgMemberPIN:
		return p.memberGrants[role][permission]
	default:
		return false
	}
}

func set(perms ...string) map[string]bool {
	m := make(map[string]bool, len(perms))
	for _, perm := range perms {
		m[perm] = true
	}
	return m
}
