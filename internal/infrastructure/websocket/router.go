package websocket

import (
	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"
)

// EventRouter fans inbound edit events out to a broadcast group, excluding the
// connection that sent them. Inbound events are fire-and-forget: malformed
// ones are dropped with a warning, never answered.
type EventRouter struct {
	groups *GroupManager
	log    logger.Logger
}

func NewEventRouter(groups *GroupManager, log logger.Logger) *EventRouter {
	return &EventRouter{
		groups: groups,
		log:    log,
	}
}

// Route stamps the event with the authenticated sender identity and a server
// timestamp, then delivers it to every member of the group except source.
// Per-recipient send failures are logged and swallowed; one unreachable
// recipient never affects the others.
func (r *EventRouter) Route(source domain.Connection, kind domain.EventKind, groupID, targetID string, changes interface{}) {
	if !domain.ValidGroupID(groupID) || !domain.KnownEventKind(kind) {
		r.log.Warn("Dropping malformed event", "error", domain.ErrMalformedEvent,
			"kind", string(kind), "group", groupID, "user_id", source.UserID())
		return
	}

	event := domain.NewEvent(kind, targetID, source.UserID(), changes)

	for _, member := range r.groups.MembersOf(groupID) {
		if member.ID() == source.ID() {
			continue
		}
		if err := member.Send(event); err != nil {
			r.log.Warn("Recipient unreachable",
				"connection_id", member.ID(), "user_id", member.UserID(),
				"group", groupID, "error", err)
		}
	}
}
