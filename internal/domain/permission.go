package domain

// Capability is a channel-scoped permission managed on ticket channels.
type Capability uint32

const (
	CapabilityView Capability = 1 << iota
	CapabilitySend
	CapabilityReadHistory
)

// CapabilityAll covers everything a ticket participant needs.
const CapabilityAll = CapabilityView | CapabilitySend | CapabilityReadHistory

// SubjectKind identifies the principal a grant applies to.
type SubjectKind string

const (
	SubjectEveryone SubjectKind = "everyone"
	SubjectMember   SubjectKind = "member"
	SubjectRole     SubjectKind = "role"
)

// PermissionGrant maps a principal to allowed and denied capabilities on a
// single channel.
type PermissionGrant struct {
	SubjectID   string
	SubjectKind SubjectKind
	Allow       Capability
	Deny        Capability
}

// TicketGrants returns the grant set every new ticket channel receives:
// deny-all for everyone, full access for the owner and the support role.
func TicketGrants(guildID, ownerID, supportRoleID string) []PermissionGrant {
	return []PermissionGrant{
		{SubjectID: guildID, SubjectKind: SubjectEveryone, Deny: CapabilityView},
		{SubjectID: ownerID, SubjectKind: SubjectMember, Allow: CapabilityAll},
		{SubjectID: supportRoleID, SubjectKind: SubjectRole, Allow: CapabilityAll},
	}
}

// MemberGrant returns the grant used when support adds an extra participant
// to an existing ticket.
func MemberGrant(userID string) PermissionGrant {
	return PermissionGrant{SubjectID: userID, SubjectKind: SubjectMember, Allow: CapabilityAll}
}
