package directory

import (
	"fmt"
	"sync"
)

// MemoryDirectory is the simulated directory backend used by sim mode and
// tests. Groups keep insertion order so discovery order is deterministic.
type MemoryDirectory struct {
	mu        sync.Mutex
	groups    []Group
	members   map[string][]Member
	addresses map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		members:   make(map[string][]Member),
		addresses: make(map[string]string),
	}
}

// AddUser registers an account with a mail address. An empty address models a
// user with no mailbox.
func (d *MemoryDirectory) AddUser(accountID, address string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses[accountID] = address
}

// AddGroup registers a group and its member entries.
func (d *MemoryDirectory) AddGroup(name, description string, members ...Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups = append(d.groups, Group{Name: name, Description: description})
	d.members[name] = append(d.members[name], members...)
}

func (d *MemoryDirectory) ListGroups(pattern string) ([]Group, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Group
	for _, g := range d.groups {
		if matchPattern(g.Name, pattern) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) ListGroupMembers(groupName string) ([]Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.members[groupName]
	if !ok {
		return nil, fmt.Errorf("group not found: %s", groupName)
	}
	out := make([]Member, len(members))
	copy(out, members)
	return out, nil
}

func (d *MemoryDirectory) ResolveUserAddress(accountID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	addr, ok := d.addresses[accountID]
	if !ok {
		return "", fmt.Errorf("account not found: %s", accountID)
	}
	return addr, nil
}
