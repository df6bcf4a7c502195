package domain

import (
	"strings"
	"time"
)

// EventKind names an outbound broadcast event.
type EventKind string

const (
	EventSetlistUpdated EventKind = "setlist-updated"
	EventSongUpdated    EventKind = "song-updated"
)

// Inbound message types accepted on the websocket.
const (
	MsgJoinSetlist   = "join-setlist"
	MsgLeaveSetlist  = "leave-setlist"
	MsgUpdateSetlist = "update-setlist"
	MsgUpdateSong    = "update-song"
)

// targetField maps an event kind to the envelope key carrying the resource id.
var targetField = map[EventKind]string{
	EventSetlistUpdated: "setlistId",
	EventSongUpdated:    "songId",
}

func KnownEventKind(kind EventKind) bool {
	_, ok := targetField[kind]
	return ok
}

// NewEvent builds the wire envelope for an outbound event. The timestamp is
// assigned here, at routing time, and updatedBy is always the authenticated
// sender identity.
func NewEvent(kind EventKind, targetID, updatedBy string, changes interface{}) map[string]interface{} {
	evt := map[string]interface{}{
		"type":      string(kind),
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	}
	if updatedBy != "" {
		evt["updatedBy"] = updatedBy
	}
	if key, ok := targetField[kind]; ok && targetID != "" {
		evt[key] = targetID
	}
	return evt
}

// Group id namespaces. A group is a named broadcast channel; connections join
// and leave groups, and events fan out to the current members.
const (
	GroupPrefixUser    = "user"
	GroupPrefixBand    = "band"
	GroupPrefixSetlist = "setlist"
)

func UserGroup(userID string) string       { return GroupPrefixUser + ":" + userID }
func BandGroup(bandID string) string       { return GroupPrefixBand + ":" + bandID }
func SetlistGroup(setlistID string) string { return GroupPrefixSetlist + ":" + setlistID }

// ValidGroupID reports whether the id uses one of the three known namespaces
// and carries a non-empty resource id.
func ValidGroupID(groupID string) bool {
	prefix, rest, found := strings.Cut(groupID, ":")
	if !found || rest == "" {
		return false
	}
	switch prefix {
	case GroupPrefixUser, GroupPrefixBand, GroupPrefixSetlist:
		return true
	}
	return false
}
