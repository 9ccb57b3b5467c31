package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/audit"
	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/hub"
	"github.com/emoncse/bugtracker/internal/service"
	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/middleware"
)

// WSHandler owns the websocket endpoints: the global session at
// /ws/tracker and the room-scoped session at /ws/tracker/:project_id.
type WSHandler struct {
	hub         *hub.Hub
	access      service.AccessService
	broadcaster service.Broadcaster
	recorder    *audit.Recorder
	opts        hub.Options
	upgrader    websocket.Upgrader
	logger      zerolog.Logger
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(h *hub.Hub, access service.AccessService, broadcaster service.Broadcaster, recorder *audit.Recorder, opts hub.Options) *WSHandler {
	return &WSHandler{
		hub:         h,
		access:      access,
		broadcaster: broadcaster,
		recorder:    recorder,
		opts:        opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.L().With().Str("component", "ws").Logger(),
	}
}

// HandleGlobal serves a room-less session: connect, acknowledge, answer
// pings and test messages. No room is ever joined.
func (h *WSHandler) HandleGlobal(c *gin.Context) {
	h.serve(c, "")
}

// HandleProject serves a room-scoped session. Room admission is decided
// before the upgrade: a caller without project access gets a 403 and no
// websocket is ever established.
func (h *WSHandler) HandleProject(c *gin.Context) {
	projectID := c.Param("project_id")
	userID := middleware.GetUserID(c)

	allowed, err := h.access.CanAccessProject(c.Request.Context(), projectID, userID)
	if err != nil {
		h.logger.Error().Err(err).Str(log.FieldProjectID, projectID).Msg("access check failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if !allowed {
		h.recorder.JoinDenied(userID, projectID)
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	h.serve(c, projectID)
}

func (h *WSHandler) serve(c *gin.Context, projectID string) {
	userID := middleware.GetUserID(c)
	username := middleware.GetUsername(c)
	email := middleware.GetEmail(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	session := domain.NewSession(uuid.New().String())
	session.Authenticate(userID, username, email)

	client := hub.NewClient(session.ID, session, h.hub, conn, h.opts)
	h.hub.Register(client)

	// The ack must be the first frame the client sees, so it is queued
	// before the room join makes the connection reachable by broadcasts.
	ack := &domain.ConnectionEstablishedMessage{
		Type:      domain.MsgTypeConnectionEstablished,
		Message:   "Connected to bug tracker",
		User:      username,
		ProjectID: projectID,
	}
	if err := client.SendMessage(ack); err != nil {
		h.logger.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("ack dropped")
	}

	if projectID != "" {
		h.hub.JoinRoom(domain.RoomKey(projectID), client)
	}
	h.recorder.Connected(session)

	go client.WritePump()
	go func() {
		client.ReadPump(h.dispatch)
		h.recorder.Disconnected(session)
	}()
}

// dispatch routes one validated inbound frame. Validation failures earn
// an error frame; the connection stays open either way.
func (h *WSHandler) dispatch(client *hub.Client, frame map[string]interface{}) {
	msgType, err := domain.ValidateInbound(frame)
	if err != nil {
		client.SendError(err.Error())
		return
	}

	switch msgType {
	case domain.MsgTypePing:
		h.handlePing(client)
	case domain.MsgTypeTypingStart:
		h.handleTyping(client, true)
	case domain.MsgTypeTypingStop:
		h.handleTyping(client, false)
	case domain.MsgTypeTestMessage:
		h.handleTestMessage(client, frame)
	case domain.MsgTypeTestProjectMessage:
		h.handleTestProjectMessage(client, frame)
	default:
		// Accepted protocol surface without a handler (the reserved
		// join/leave types). Log and move on.
		userID, _ := client.Session.User()
		h.logger.Debug().
			Str(log.FieldUserID, userID).
			Str("msg_type", msgType).
			Msg("unhandled message type")
	}
}

func (h *WSHandler) handlePing(client *hub.Client) {
	_ = client.SendMessage(&domain.PongMessage{
		Type:      domain.MsgTypePong,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTyping broadcasts a typing indicator to the session's room. The
// originating user never receives their own indicator, across every
// connection they hold.
func (h *WSHandler) handleTyping(client *hub.Client, isTyping bool) {
	if !client.Session.InRoom() {
		return
	}

	client.Session.SetTyping(isTyping)
	userID, username := client.Session.User()

	indicator := &domain.TypingIndicatorMessage{
		Type:     domain.MsgTypeTypingIndicator,
		UserID:   userID,
		Username: username,
		IsTyping: isTyping,
	}
	if err := h.broadcaster.Broadcast(client.Session.Room(), indicator, userID); err != nil {
		h.logger.Warn().Err(err).Str(log.FieldRoomKey, client.Session.Room()).Msg("typing broadcast failed")
	}
}

func (h *WSHandler) handleTestMessage(client *hub.Client, frame map[string]interface{}) {
	_, username := client.Session.User()
	_ = client.SendMessage(&domain.TestResponseMessage{
		Type:      domain.MsgTypeTestResponse,
		Message:   frameText(frame),
		User:      username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *WSHandler) handleTestProjectMessage(client *hub.Client, frame map[string]interface{}) {
	if !client.Session.InRoom() {
		client.SendError("not connected to a project room")
		return
	}

	_, username := client.Session.User()
	_ = client.SendMessage(&domain.TestProjectResponseMessage{
		Type:      domain.MsgTypeTestProjectResponse,
		Message:   frameText(frame),
		ProjectID: projectIDFromRoom(client.Session.Room()),
		User:      username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func frameText(frame map[string]interface{}) string {
	if msg, ok := frame["message"].(string); ok {
		return msg
	}
	return ""
}

func projectIDFromRoom(roomKey string) string {
	const prefix = "project_"
	if len(roomKey) > len(prefix) && roomKey[:len(prefix)] == prefix {
		return roomKey[len(prefix):]
	}
	return roomKey
}
