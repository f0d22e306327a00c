package enums

// MembershipStatus tracks a membership from invite to removal. Only active
// memberships let a user act in the store.
type MembershipStatus string

const (
	MembershipStatusInvited MembershipStatus = "invited"
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusRemoved MembershipStatus = "removed"
)

var membershipStatuses = []MembershipStatus{
	MembershipStatusInvited,
	MembershipStatusActive,
	MembershipStatusRemoved,
}

func (m MembershipStatus) String() string {
	return string(m)
}

func (m MembershipStatus) IsValid() bool {
	return oneOf(m, membershipStatuses)
}

// GrantsAccess reports whether the member may switch to and work in the store.
func (m MembershipStatus) GrantsAccess() bool {
	return m == MembershipStatusActive
}

func ParseMembershipStatus(value string) (MembershipStatus, error) {
	return parse("membership status", value, membershipStatuses)
}
