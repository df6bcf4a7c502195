package websocket_test

import (
	"testing"

	"setlist-sync/internal/domain"
	ws "setlist-sync/internal/infrastructure/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	conn := newFakeConn("c1", "u1")

	groups.Join(conn, domain.SetlistGroup("42"))
	groups.Join(conn, domain.SetlistGroup("42"))

	members := groups.MembersOf(domain.SetlistGroup("42"))
	assert.Len(t, members, 1)
}

func TestLeaveIsIdempotent(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	conn := newFakeConn("c1", "u1")

	// Leaving a group never joined is a no-op, not an error.
	groups.Leave(conn, domain.SetlistGroup("42"))

	groups.Join(conn, domain.SetlistGroup("42"))
	groups.Leave(conn, domain.SetlistGroup("42"))
	groups.Leave(conn, domain.SetlistGroup("42"))

	assert.Empty(t, groups.MembersOf(domain.SetlistGroup("42")))
}

func TestAutoJoin(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	conn := newFakeConn("c1", "u1")

	groups.AutoJoin(conn, "u1", []string{"b1", "b2"})

	assert.Len(t, groups.MembersOf(domain.UserGroup("u1")), 1)
	assert.Len(t, groups.MembersOf(domain.BandGroup("b1")), 1)
	assert.Len(t, groups.MembersOf(domain.BandGroup("b2")), 1)
	assert.ElementsMatch(t, []string{"user:u1", "band:b1", "band:b2"}, groups.GroupsOf(conn))
}

func TestDropConnectionRemovesFromEveryGroup(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	conn := newFakeConn("c1", "u1")
	other := newFakeConn("c2", "u2")

	groups.AutoJoin(conn, "u1", []string{"b1"})
	groups.Join(conn, domain.SetlistGroup("42"))
	groups.Join(other, domain.SetlistGroup("42"))

	groups.DropConnection(conn)

	for _, groupID := range []string{
		domain.UserGroup("u1"),
		domain.BandGroup("b1"),
		domain.SetlistGroup("42"),
	} {
		for _, member := range groups.MembersOf(groupID) {
			require.NotEqual(t, "c1", member.ID(), "dropped connection still in %s", groupID)
		}
	}

	// Other members are untouched.
	assert.Len(t, groups.MembersOf(domain.SetlistGroup("42")), 1)
	assert.Empty(t, groups.GroupsOf(conn))
}

func TestMembersOfUnknownGroup(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	assert.Empty(t, groups.MembersOf(domain.SetlistGroup("nope")))
}

func TestMembersOfReturnsSnapshot(t *testing.T) {
	groups := ws.NewGroupManager(nopLogger{})
	conn := newFakeConn("c1", "u1")
	groups.Join(conn, domain.BandGroup("b1"))

	snapshot := groups.MembersOf(domain.BandGroup("b1"))
	groups.DropConnection(conn)

	// The snapshot taken before the disconnect is still usable; delivery to
	// the now-closed connection is the caller's tolerated no-op.
	require.Len(t, snapshot, 1)
	assert.Equal(t, "c1", snapshot[0].ID())
}
