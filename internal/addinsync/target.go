// Package addinsync reconciles add-in intent groups from a directory against
// per-user installations on the mail platform.
package addinsync

import "strings"

// Target is one discovered add-in group with its resolved membership.
// Current holds this run's directory membership; Previous is filled from the
// persisted snapshot before reconciliation.
type Target struct {
	GroupName   string
	AddInID     string
	Environment string
	ManifestURL string
	Current     map[string]struct{}
	Previous    map[string]struct{}
}

// ParseGroupName splits "<prefix>-<addInId>-<environment>". The final
// hyphen-delimited segment is the environment; everything between the prefix
// and it is the add-in id, so ids may themselves contain hyphens. Names
// without that structure report ok=false.
func ParseGroupName(name, prefix string) (addInID, environment string, ok bool) {
	rest, found := strings.CutPrefix(name, prefix+"-")
	if !found {
		return "", "", false
	}

	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// extractManifestURL pulls the first http(s) URL out of a group description.
// Descriptions are free-form; the convention is the manifest URL plus
// whatever prose an admin left around it.
func extractManifestURL(description string) string {
	for _, field := range strings.Fields(description) {
		if strings.HasPrefix(field, "https://") || strings.HasPrefix(field, "http://") {
			return strings.TrimRight(field, ".,;")
		}
	}
	return ""
}
