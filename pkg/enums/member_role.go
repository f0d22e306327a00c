package enums

// MemberRole is a user's permission level inside one store.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

var memberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleMember,
}

// MemberRoles lists every role, owner first.
func MemberRoles() []MemberRole {
	return append([]MemberRole(nil), memberRoles...)
}

func (m MemberRole) String() string {
	return string(m)
}

func (m MemberRole) IsValid() bool {
	return oneOf(m, memberRoles)
}

// CanManageStore reports whether the role may edit the store profile.
func (m MemberRole) CanManageStore() bool {
	return m == MemberRoleOwner || m == MemberRoleAdmin
}

func ParseMemberRole(value string) (MemberRole, error) {
	return parse("member role", value, memberRoles)
}
