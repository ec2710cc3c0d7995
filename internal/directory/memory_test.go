package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectoryPatternMatch(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddGroup("app-exchangeaddin-crm-prod", "desc")
	dir.AddGroup("app-exchangeaddin-erp-test", "desc")
	dir.AddGroup("regular-group", "")

	groups, err := dir.ListGroups("app-exchangeaddin-*")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "app-exchangeaddin-crm-prod", groups[0].Name)

	all, err := dir.ListGroups("*")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	exact, err := dir.ListGroups("regular-group")
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestMemoryDirectoryMembersAndAddresses(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddUser("u1", "alice@x.com")
	dir.AddGroup("g", "desc", Member{AccountID: "u1", Type: MemberTypeUser})

	members, err := dir.ListGroupMembers("g")
	require.NoError(t, err)
	require.Len(t, members, 1)

	addr, err := dir.ResolveUserAddress("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", addr)

	_, err = dir.ListGroupMembers("missing")
	assert.Error(t, err)

	_, err = dir.ResolveUserAddress("ghost")
	assert.Error(t, err)
}
