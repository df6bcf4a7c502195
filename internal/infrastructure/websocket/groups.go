package websocket

import (
	"sync"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"
)

// GroupManager tracks which connections belong to which broadcast groups.
// Membership is many-to-many; a group with no members is deleted rather than
// kept around empty.
type GroupManager struct {
	mu     sync.RWMutex
	groups map[string]map[string]domain.Connection // groupID -> connID -> conn
	byConn map[string]map[string]struct{}          // connID -> groupIDs
	log    logger.Logger
}

func NewGroupManager(log logger.Logger) *GroupManager {
	return &GroupManager{
		groups: make(map[string]map[string]domain.Connection),
		byConn: make(map[string]map[string]struct{}),
		log:    log,
	}
}

// AutoJoin puts a freshly registered connection into its personal group and
// into one group per band membership. Band memberships are read once at
// connect time; changes made afterwards do not retrofit open connections.
func (m *GroupManager) AutoJoin(conn domain.Connection, userID string, bandIDs []string) {
	m.Join(conn, domain.UserGroup(userID))
	for _, bandID := range bandIDs {
		m.Join(conn, domain.BandGroup(bandID))
	}
}

// Join adds the connection to a group. Joining a group it is already in is a
// no-op.
func (m *GroupManager) Join(conn domain.Connection, groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.groups[groupID] == nil {
		m.groups[groupID] = make(map[string]domain.Connection)
	}
	m.groups[groupID][conn.ID()] = conn

	if m.byConn[conn.ID()] == nil {
		m.byConn[conn.ID()] = make(map[string]struct{})
	}
	m.byConn[conn.ID()][groupID] = struct{}{}

	m.log.Debug("Joined group", "connection_id", conn.ID(), "group", groupID)
}

// Leave removes the connection from a group. Leaving a group it is not in is
// a no-op.
func (m *GroupManager) Leave(conn domain.Connection, groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveLocked(conn.ID(), groupID)
}

func (m *GroupManager) leaveLocked(connID, groupID string) {
	if members, ok := m.groups[groupID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.groups, groupID)
		}
	}
	if groupIDs, ok := m.byConn[connID]; ok {
		delete(groupIDs, groupID)
		if len(groupIDs) == 0 {
			delete(m.byConn, connID)
		}
	}
}

// MembersOf returns a snapshot of the group's current members. Callers fan
// out over the snapshot outside the lock, so a concurrent disconnect at worst
// means a send to a just-closed connection, which its Send absorbs.
func (m *GroupManager) MembersOf(groupID string) []domain.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.groups[groupID]
	if !ok {
		return nil
	}

	snapshot := make([]domain.Connection, 0, len(members))
	for _, conn := range members {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// DropConnection removes the connection from every group it joined. Called on
// disconnect.
func (m *GroupManager) DropConnection(conn domain.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for groupID := range m.byConn[conn.ID()] {
		m.leaveLocked(conn.ID(), groupID)
	}
	delete(m.byConn, conn.ID())

	m.log.Debug("Dropped connection from all groups", "connection_id", conn.ID())
}

// GroupsOf lists the groups a connection currently belongs to.
func (m *GroupManager) GroupsOf(conn domain.Connection) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groupIDs := make([]string, 0, len(m.byConn[conn.ID()]))
	for groupID := range m.byConn[conn.ID()] {
		groupIDs = append(groupIDs, groupID)
	}
	return groupIDs
}
