// Package directory defines the read-only directory contract the reconciler
// consumes, with LDAP, Google Workspace and in-memory implementations.
package directory

// Group is one directory group as returned by a backend. Description carries
// the group's free-form metadata (for add-in groups, the manifest URL).
type Group struct {
	Name        string
	Description string
}

// Member is one raw membership entry. Type distinguishes users from nested
// groups, contacts and other non-user objects; backends normalize it to
// lowercase.
type Member struct {
	AccountID string
	Type      string
}

const MemberTypeUser = "user"

// Client is the directory surface the reconciler depends on. Implementations
// never mutate the directory.
type Client interface {
	// ListGroups returns the groups whose name matches pattern. Pattern
	// supports a trailing-style "*" wildcard in all backends.
	ListGroups(pattern string) ([]Group, error)

	// ListGroupMembers enumerates the direct members of the named group.
	ListGroupMembers(groupName string) ([]Member, error)

	// ResolveUserAddress maps a member account id to its mail address. An
	// empty address with a nil error means the account has no mailbox.
	ResolveUserAddress(accountID string) (string, error)
}
