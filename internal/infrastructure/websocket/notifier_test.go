package websocket_test

import (
	"testing"

	"setlist-sync/internal/domain"
	ws "setlist-sync/internal/infrastructure/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifierFixture() (*ws.PresenceRegistry, *ws.GroupManager, *ws.Notifier) {
	presence := ws.NewPresenceRegistry(nopLogger{})
	groups := ws.NewGroupManager(nopLogger{})
	return presence, groups, ws.NewNotifier(presence, groups, nopLogger{})
}

func TestNotifyUserDelivers(t *testing.T) {
	presence, _, notifier := newNotifierFixture()
	conn := newFakeConn("c1", "u1")
	presence.Register("u1", conn)

	delivered := notifier.NotifyUser("u1", domain.EventSongUpdated,
		map[string]interface{}{"songId": "s1"})

	assert.True(t, delivered)
	events := conn.received()
	require.Len(t, events, 1)
	assert.Equal(t, "song-updated", events[0]["type"])
	assert.Equal(t, "s1", events[0]["songId"])
	assert.NotNil(t, events[0]["timestamp"])
}

func TestNotifyUserGhost(t *testing.T) {
	_, _, notifier := newNotifierFixture()

	delivered := notifier.NotifyUser("ghost-id", domain.EventSongUpdated, map[string]interface{}{})
	assert.False(t, delivered)
}

func TestNotifyUserDeadConnection(t *testing.T) {
	presence, _, notifier := newNotifierFixture()
	conn := newFakeConn("c1", "u1")
	conn.Close()
	presence.Register("u1", conn)

	delivered := notifier.NotifyUser("u1", domain.EventSongUpdated, nil)
	assert.False(t, delivered)
}

func TestNotifyBandReachesAllMembers(t *testing.T) {
	presence, groups, notifier := newNotifierFixture()

	u1 := newFakeConn("c1", "u1")
	u2 := newFakeConn("c2", "u2")
	u3 := newFakeConn("c3", "u3")

	presence.Register("u1", u1)
	groups.AutoJoin(u1, "u1", []string{"b1"})
	presence.Register("u2", u2)
	groups.AutoJoin(u2, "u2", []string{"b1"})
	presence.Register("u3", u3)
	groups.AutoJoin(u3, "u3", []string{"b9"})

	notifier.NotifyBand("b1", domain.EventSongUpdated, map[string]interface{}{
		"songId": "s1",
		"title":  "New Title",
	})

	for _, conn := range []*fakeConn{u1, u2} {
		events := conn.received()
		require.Len(t, events, 1, "band member %s", conn.UserID())
		assert.Equal(t, "song-updated", events[0]["type"])
		assert.Equal(t, "New Title", events[0]["title"])
	}
	assert.Empty(t, u3.received(), "unrelated user must receive nothing")
}

func TestNotifySetlistZeroMembersIsNoop(t *testing.T) {
	_, _, notifier := newNotifierFixture()

	assert.NotPanics(t, func() {
		notifier.NotifySetlist("empty", domain.EventSetlistUpdated, map[string]interface{}{"x": 1})
	})
}

func TestNotifySetlistDelivers(t *testing.T) {
	_, groups, notifier := newNotifierFixture()
	viewer := newFakeConn("c1", "u1")
	groups.Join(viewer, domain.SetlistGroup("42"))

	notifier.NotifySetlist("42", domain.EventSetlistUpdated,
		map[string]interface{}{"setlistId": "42", "changes": map[string]interface{}{"name": "New"}})

	events := viewer.received()
	require.Len(t, events, 1)
	assert.Equal(t, "setlist-updated", events[0]["type"])
	assert.Equal(t, "42", events[0]["setlistId"])
}
