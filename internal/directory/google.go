package directory

import (
	"context"
	"fmt"
	"strings"

	admin "google.golang.org/api/admin/directory/v1"
)

// GoogleDirectory reads groups and users from Google Workspace via the Admin
// SDK. Group names are matched client-side because the directory API's query
// syntax has no glob support.
type GoogleDirectory struct {
	ctx context.Context
	svc *admin.Service

	// group name -> group email, filled by ListGroups; the Admin SDK keys
	// member listings by group email, not display name.
	groupEmails map[string]string
}

func NewGoogleDirectory(ctx context.Context, svc *admin.Service) *GoogleDirectory {
	return &GoogleDirectory{
		ctx:         ctx,
		svc:         svc,
		groupEmails: make(map[string]string),
	}
}

func (d *GoogleDirectory) ListGroups(pattern string) ([]Group, error) {
	var groups []Group

	call := d.svc.Groups.List().Customer("my_customer").MaxResults(500)
	err := call.Pages(d.ctx, func(page *admin.Groups) error {
		for _, g := range page.Groups {
			if !matchPattern(g.Name, pattern) {
				continue
			}
			d.groupEmails[g.Name] = g.Email
			groups = append(groups, Group{
				Name:        g.Name,
				Description: g.Description,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list Workspace groups: %w", err)
	}
	return groups, nil
}

func (d *GoogleDirectory) ListGroupMembers(groupName string) ([]Member, error) {
	email, ok := d.groupEmails[groupName]
	if !ok {
		return nil, fmt.Errorf("unknown group %q (not seen by ListGroups)", groupName)
	}

	var members []Member
	err := d.svc.Members.List(email).Pages(d.ctx, func(page *admin.Members) error {
		for _, m := range page.Members {
			id := m.Email
			if id == "" {
				id = m.Id
			}
			members = append(members, Member{
				AccountID: id,
				Type:      strings.ToLower(m.Type),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", email, err)
	}
	return members, nil
}

func (d *GoogleDirectory) ResolveUserAddress(accountID string) (string, error) {
	user, err := d.svc.Users.Get(accountID).Context(d.ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed user lookup for %s: %w", accountID, err)
	}
	return user.PrimaryEmail, nil
}

// matchPattern supports the trailing "*" glob used by group patterns plus
// exact matches; both sides compare case-insensitively.
func matchPattern(name, pattern string) bool {
	name = strings.ToLower(name)
	pattern = strings.ToLower(pattern)
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pattern
}
