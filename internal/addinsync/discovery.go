package addinsync

import (
	"strings"

	"github.com/jdtower/addin-sync/internal/directory"
	"github.com/jdtower/addin-sync/tools"
)

// Discovery turns directory groups matching the add-in naming convention into
// reconciliation targets.
type Discovery struct {
	dir    directory.Client
	prefix string
	stats  *RunStats
}

func NewDiscovery(dir directory.Client, prefix string, stats *RunStats) *Discovery {
	return &Discovery{dir: dir, prefix: prefix, stats: stats}
}

// Discover lists groups matching pattern and builds a target per group that
// carries the structural name, a manifest URL and resolvable members. A
// failed group listing is logged and counted but yields zero targets rather
// than aborting the run.
func (d *Discovery) Discover(pattern string) []Target {
	groups, err := d.dir.ListGroups(pattern)
	if err != nil {
		tools.Log.WithError(err).Error("Group discovery failed")
		d.stats.Errors.Add(1)
		return nil
	}

	var targets []Target
	for _, group := range groups {
		addInID, environment, ok := ParseGroupName(group.Name, d.prefix)
		if !ok {
			// Not an add-in group, just shares the naming prefix.
			continue
		}

		if strings.TrimSpace(group.Description) == "" {
			tools.Log.WithField("group", group.Name).Warn("Group has no description, skipping")
			continue
		}

		manifestURL := extractManifestURL(group.Description)
		if manifestURL == "" {
			tools.Log.WithField("group", group.Name).Warn("Group description has no manifest URL, skipping")
			continue
		}

		members, err := d.resolveMembers(group.Name)
		if err != nil {
			tools.Log.WithError(err).Errorf("Failed to enumerate members of %s", group.Name)
			d.stats.Errors.Add(1)
			continue
		}

		targets = append(targets, Target{
			GroupName:   group.Name,
			AddInID:     addInID,
			Environment: environment,
			ManifestURL: manifestURL,
			Current:     members,
			Previous:    make(map[string]struct{}),
		})
		d.stats.GroupsFound.Add(1)
	}

	tools.Log.Infof("Discovered %d add-in target(s) for pattern %q", len(targets), pattern)
	return targets
}

// resolveMembers enumerates a group, keeps user-type entries and maps each to
// a mail address. Members without an address are skipped with a warning; they
// are not errors.
func (d *Discovery) resolveMembers(groupName string) (map[string]struct{}, error) {
	entries, err := d.dir.ListGroupMembers(groupName)
	if err != nil {
		return nil, err
	}

	members := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Type != directory.MemberTypeUser {
			tools.Log.WithFields(map[string]interface{}{
				"group":  groupName,
				"member": entry.AccountID,
				"type":   entry.Type,
			}).Debug("Skipping non-user member")
			continue
		}

		addr, err := d.dir.ResolveUserAddress(entry.AccountID)
		if err != nil || addr == "" {
			tools.Log.WithFields(map[string]interface{}{
				"group":  groupName,
				"member": entry.AccountID,
			}).Warn("Member has no resolvable mail address, skipping")
			continue
		}
		members[tools.NormalizeAddress(addr)] = struct{}{}
	}
	return members, nil
}
