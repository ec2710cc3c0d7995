package directory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/jdtower/addin-sync/internal/ldapclient"
)

// LDAPDirectory reads groups and users from Active Directory over LDAP.
type LDAPDirectory struct {
	client *ldapclient.LDAPClient
}

func NewLDAPDirectory(client *ldapclient.LDAPClient) *LDAPDirectory {
	return &LDAPDirectory{client: client}
}

func (d *LDAPDirectory) ListGroups(pattern string) ([]Group, error) {
	filter := fmt.Sprintf("(&(objectClass=group)(cn=%s))", escapeKeepWildcards(pattern))
	attributes := []string{"cn", "description"}

	searchReq := ldap.NewSearchRequest(
		d.client.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		attributes,
		nil,
	)

	result, err := d.client.Conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("LDAP group search failed: %w", err)
	}

	groups := make([]Group, 0, len(result.Entries))
	for _, entry := range result.Entries {
		groups = append(groups, Group{
			Name:        entry.GetAttributeValue("cn"),
			Description: entry.GetAttributeValue("description"),
		})
	}
	return groups, nil
}

func (d *LDAPDirectory) ListGroupMembers(groupName string) ([]Member, error) {
	filter := fmt.Sprintf("(&(objectClass=group)(cn=%s))", ldap.EscapeFilter(groupName))

	searchReq := ldap.NewSearchRequest(
		d.client.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1, 0, false,
		filter,
		[]string{"member"},
		nil,
	)

	result, err := d.client.Conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("LDAP member search failed: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("group not found with CN: %s", groupName)
	}

	memberDNs := result.Entries[0].GetAttributeValues("member")
	members := make([]Member, 0, len(memberDNs))
	for _, dn := range memberDNs {
		members = append(members, Member{
			AccountID: dn,
			Type:      d.memberType(dn),
		})
	}
	return members, nil
}

func (d *LDAPDirectory) ResolveUserAddress(accountID string) (string, error) {
	entry, err := d.baseSearch(accountID, []string{"mail"})
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", nil
	}
	return entry.GetAttributeValue("mail"), nil
}

// memberType classifies a member DN by its objectClass. Unreachable or
// unknown entries come back as "other" and are filtered out upstream.
func (d *LDAPDirectory) memberType(dn string) string {
	entry, err := d.baseSearch(dn, []string{"objectClass"})
	if err != nil || entry == nil {
		return "other"
	}
	for _, class := range entry.GetAttributeValues("objectClass") {
		switch strings.ToLower(class) {
		case "group":
			return "group"
		case "user", "person", "inetorgperson":
			return MemberTypeUser
		}
	}
	return "other"
}

func (d *LDAPDirectory) baseSearch(dn string, attributes []string) (*ldap.Entry, error) {
	searchReq := ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1, 0, false,
		"(objectClass=*)",
		attributes,
		nil,
	)

	result, err := d.client.Conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("LDAP lookup failed for %s: %w", dn, err)
	}
	if len(result.Entries) == 0 {
		return nil, nil
	}
	return result.Entries[0], nil
}

// escapeKeepWildcards escapes filter metacharacters but preserves "*" so the
// caller-supplied group pattern keeps its wildcard semantics.
func escapeKeepWildcards(pattern string) string {
	return strings.ReplaceAll(ldap.EscapeFilter(pattern), `\2a`, "*")
}
