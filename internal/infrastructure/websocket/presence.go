package websocket

import (
	"sync"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"
)

// PresenceRegistry maps a user identity to its current connection. A user has
// at most one current mapping; reconnecting supersedes the previous session
// without closing it (the superseded connection is handed back to the caller).
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[string]domain.Connection
	log    logger.Logger
}

func NewPresenceRegistry(log logger.Logger) *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[string]domain.Connection),
		log:    log,
	}
}

// Register records conn as the user's current connection and returns the
// connection it displaced, if any.
func (r *PresenceRegistry) Register(userID string, conn domain.Connection) domain.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.byUser[userID]
	r.byUser[userID] = conn

	r.log.Info("Connection registered", "user_id", userID, "connection_id", conn.ID())
	return prev
}

// Unregister removes the mapping only if it still points at exactly this
// connection. A stale unregister from a superseded session is a no-op, so a
// newer session's mapping is never clobbered.
func (r *PresenceRegistry) Unregister(userID string, conn domain.Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byUser[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(r.byUser, userID)

	r.log.Info("Connection unregistered", "user_id", userID, "connection_id", conn.ID())
	return true
}

func (r *PresenceRegistry) Lookup(userID string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byUser[userID]
	return conn, ok
}

// ActiveUsers lists every user with a live connection.
func (r *PresenceRegistry) ActiveUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}
