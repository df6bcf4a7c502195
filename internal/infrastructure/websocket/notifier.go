package websocket

import (
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"
)

// Notifier is the server-initiated push surface used by the request handlers
// after a successful mutation. The caller may not hold a live connection at
// all, so no sender is excluded. Every call is best-effort: delivery failures
// are absorbed here and never fail the mutation that triggered the push.
type Notifier struct {
	presence *PresenceRegistry
	groups   *GroupManager
	log      logger.Logger
}

func NewNotifier(presence *PresenceRegistry, groups *GroupManager, log logger.Logger) *Notifier {
	return &Notifier{
		presence: presence,
		groups:   groups,
		log:      log,
	}
}

var _ domain.Notifier = (*Notifier)(nil)

// NotifyUser pushes an event to the user's current connection. Returns false
// if the user has no active connection or the send failed.
func (n *Notifier) NotifyUser(userID string, kind domain.EventKind, payload map[string]interface{}) bool {
	conn, ok := n.presence.Lookup(userID)
	if !ok {
		return false
	}
	if err := conn.Send(envelope(kind, payload)); err != nil {
		n.log.Warn("Failed to notify user", "user_id", userID, "error", err)
		return false
	}
	return true
}

// NotifyBand fans an event out to every connected member of the band. Zero
// members is a silent no-op.
func (n *Notifier) NotifyBand(bandID string, kind domain.EventKind, payload map[string]interface{}) {
	n.broadcast(domain.BandGroup(bandID), kind, payload)
}

// NotifySetlist fans an event out to every connection viewing the setlist.
func (n *Notifier) NotifySetlist(setlistID string, kind domain.EventKind, payload map[string]interface{}) {
	n.broadcast(domain.SetlistGroup(setlistID), kind, payload)
}

func (n *Notifier) broadcast(groupID string, kind domain.EventKind, payload map[string]interface{}) {
	event := envelope(kind, payload)
	for _, member := range n.groups.MembersOf(groupID) {
		if err := member.Send(event); err != nil {
			n.log.Warn("Recipient unreachable",
				"connection_id", member.ID(), "group", groupID, "error", err)
		}
	}
}

// envelope merges the payload into the wire object alongside the event type
// and a server timestamp.
func envelope(kind domain.EventKind, payload map[string]interface{}) map[string]interface{} {
	event := map[string]interface{}{
		"type":      string(kind),
		"timestamp": time.Now().UTC(),
	}
	for k, v := range payload {
		event[k] = v
	}
	return event
}
