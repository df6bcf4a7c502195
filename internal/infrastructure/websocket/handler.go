package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is enforced by the CORS layer in front
	},
}

// Authenticator resolves a bearer credential to a user, or fails.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Handler accepts websocket connections: it authenticates the handshake,
// registers presence, auto-joins the personal and band groups, then serves the
// inbound message loop until the client goes away.
type Handler struct {
	auth     Authenticator
	bands    domain.BandRepository
	presence *PresenceRegistry
	groups   *GroupManager
	router   *EventRouter
	log      logger.Logger
}

func NewHandler(auth Authenticator, bands domain.BandRepository,
	presence *PresenceRegistry, groups *GroupManager, router *EventRouter,
	log logger.Logger) *Handler {
	return &Handler{
		auth:     auth,
		bands:    bands,
		presence: presence,
		groups:   groups,
		router:   router,
		log:      log,
	}
}

// inboundMessage is the shape of every frame a client may send.
type inboundMessage struct {
	Type      string          `json:"type"`
	SetlistID string          `json:"setlistId,omitempty"`
	SongID    string          `json:"songId,omitempty"`
	BandID    string          `json:"bandId,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
}

// HandleConnection upgrades the request after the credential checks out. The
// token travels in the handshake (Authorization header or token query param),
// never in a message body. On auth failure the connection is rejected before
// any presence entry exists.
func (h *Handler) HandleConnection(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.auth.Authenticate(ctx, bearerToken(c))
	if err != nil {
		h.log.Warn("Rejected websocket connection", "remote_addr", c.RealIP(), "error", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
	}

	// Band memberships are read once, here. Later changes do not retrofit
	// this connection's groups.
	bandIDs, err := h.bands.BandIDsForUser(ctx, user.ID)
	if err != nil {
		h.log.Error("Failed to load band memberships", "user_id", user.ID, "error", err)
		bandIDs = nil
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return nil
	}

	conn := NewConnection(ws, user.ID, h.log)

	if superseded := h.presence.Register(user.ID, conn); superseded != nil {
		// The old session keeps its group subscriptions; only direct user
		// notifications move to the new connection.
		h.log.Warn("Session superseded", "user_id", user.ID,
			"old_connection_id", superseded.ID(), "new_connection_id", conn.ID())
	}
	h.groups.AutoJoin(conn, user.ID, bandIDs)

	h.log.Info("User connected", "user_id", user.ID, "connection_id", conn.ID(), "bands", len(bandIDs))

	go conn.writePump()
	h.readLoop(conn)
	return nil
}

func (h *Handler) readLoop(conn *Connection) {
	defer func() {
		h.presence.Unregister(conn.UserID(), conn)
		h.groups.DropConnection(conn)
		conn.Close()
		h.log.Info("User disconnected", "user_id", conn.UserID(), "connection_id", conn.ID())
	}()

	conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Read failed", "connection_id", conn.ID(), "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("Dropping unparseable message", "connection_id", conn.ID(), "error", err)
			continue
		}

		h.dispatch(conn, msg)
	}
}

func (h *Handler) dispatch(conn *Connection, msg inboundMessage) {
	switch msg.Type {
	case domain.MsgJoinSetlist:
		if msg.SetlistID == "" {
			h.log.Warn("join-setlist without setlistId", "connection_id", conn.ID())
			return
		}
		h.groups.Join(conn, domain.SetlistGroup(msg.SetlistID))
		h.log.Info("User joined setlist", "user_id", conn.UserID(), "setlist_id", msg.SetlistID)

	case domain.MsgLeaveSetlist:
		if msg.SetlistID == "" {
			return
		}
		h.groups.Leave(conn, domain.SetlistGroup(msg.SetlistID))
		h.log.Info("User left setlist", "user_id", conn.UserID(), "setlist_id", msg.SetlistID)

	case domain.MsgUpdateSetlist:
		if msg.SetlistID == "" {
			h.log.Warn("update-setlist without setlistId", "connection_id", conn.ID())
			return
		}
		h.router.Route(conn, domain.EventSetlistUpdated,
			domain.SetlistGroup(msg.SetlistID), msg.SetlistID, msg.Changes)

	case domain.MsgUpdateSong:
		if msg.SongID == "" || msg.BandID == "" {
			h.log.Warn("update-song without songId or bandId", "connection_id", conn.ID())
			return
		}
		h.router.Route(conn, domain.EventSongUpdated,
			domain.BandGroup(msg.BandID), msg.SongID, msg.Changes)

	default:
		h.log.Warn("Dropping unknown message type",
			"type", msg.Type, "connection_id", conn.ID(), "user_id", conn.UserID())
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}
