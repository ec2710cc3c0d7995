package addinsync

import (
	"slices"

	"github.com/jdtower/addin-sync/tools"
)

// Diff returns the addresses present in current but not previous (toAdd) and
// in previous but not current (toRemove). Pure and idempotent: diffing again
// with previous := current yields two empty slices. Results are sorted so
// apply order and logs are deterministic.
func Diff(current, previous map[string]struct{}) (toAdd, toRemove []string) {
	for addr := range current {
		if _, ok := previous[addr]; !ok {
			toAdd = append(toAdd, addr)
		}
	}
	for addr := range previous {
		if _, ok := current[addr]; !ok {
			toRemove = append(toRemove, addr)
		}
	}
	slices.Sort(toAdd)
	slices.Sort(toRemove)
	return toAdd, toRemove
}

// MemberSet normalizes a list of addresses into a set; duplicates collapse.
func MemberSet(addrs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		normalized := tools.NormalizeAddress(addr)
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// SortedMembers renders a member set as a sorted slice for persistence.
func SortedMembers(set map[string]struct{}) []string {
	members := tools.MapKeys(set)
	slices.Sort(members)
	return members
}
