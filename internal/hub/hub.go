package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/pkg/log"
)

// ErrSendBufferFull is returned when a client's outbound queue is full
// and the frame was dropped.
var ErrSendBufferFull = errors.New("send buffer full")

// Hub tracks every live connection and the room each one belongs to, and
// fans broadcast frames out to room members. All membership mutation goes
// through the mutex so joins, leaves and broadcasts never race.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	logger  zerolog.Logger
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		logger:  log.L().With().Str("component", "hub").Logger(),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	h.logger.Debug().
		Str(log.FieldClientID, c.ID).
		Int("total_clients", len(h.clients)).
		Msg("client registered")
}

// Unregister removes a connection from the hub and from its room, if any.
// Safe to call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	h.removeFromRoomLocked(c)
	close(c.Send)

	h.logger.Debug().
		Str(log.FieldClientID, c.ID).
		Int("total_clients", len(h.clients)).
		Msg("client unregistered")
}

// JoinRoom admits a client to a room, creating the room on first join.
// A client already in another room is moved. Idempotent for repeat joins
// of the same room.
func (h *Hub) JoinRoom(roomKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current := c.Session.Room(); current != "" && current != roomKey {
		h.leaveRoomLocked(current, c)
	}

	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[roomKey] = members
	}
	members[c.ID] = c
	c.Session.JoinRoom(roomKey)

	h.logger.Debug().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldRoomKey, roomKey).
		Int("room_size", len(members)).
		Msg("client joined room")
}

// LeaveRoom removes a client from a room. The last member out deletes the
// room. A no-op when the client is not a member.
func (h *Hub) LeaveRoom(roomKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(roomKey, c)
}

func (h *Hub) leaveRoomLocked(roomKey string, c *Client) {
	members, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	if _, ok := members[c.ID]; !ok {
		return
	}
	delete(members, c.ID)
	if len(members) == 0 {
		delete(h.rooms, roomKey)
	}
	c.Session.JoinRoom("")

	h.logger.Debug().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldRoomKey, roomKey).
		Msg("client left room")
}

func (h *Hub) removeFromRoomLocked(c *Client) {
	roomKey := c.Session.Room()
	if roomKey == "" {
		return
	}
	h.leaveRoomLocked(roomKey, c)
}

// Broadcast marshals a frame and delivers it to every member of a room
// except connections belonging to excludeUserID. Pass an empty
// excludeUserID to reach everyone. Broadcasting to a missing or empty
// room is a no-op.
func (h *Hub) Broadcast(roomKey string, message interface{}, excludeUserID string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	h.BroadcastRaw(roomKey, data, excludeUserID)
	return nil
}

// BroadcastRaw delivers an already-encoded frame to a room. Slow members
// whose queues are full miss the frame; the room moves on without them.
// The read lock is held across the sends: Unregister closes Send under
// the write lock, so a member can never be closed mid-delivery. The
// sends are non-blocking, so holding the lock cannot stall on a peer.
func (h *Hub) BroadcastRaw(roomKey string, data []byte, excludeUserID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[roomKey]
	if !ok {
		return
	}

	delivered := 0
	for _, member := range members {
		userID, _ := member.Session.User()
		if excludeUserID != "" && userID == excludeUserID {
			continue
		}
		select {
		case member.Send <- data:
			delivered++
		default:
			h.logger.Warn().
				Str(log.FieldClientID, member.ID).
				Str(log.FieldRoomKey, roomKey).
				Msg("member queue full, frame dropped")
		}
	}

	h.logger.Debug().
		Str(log.FieldRoomKey, roomKey).
		Int("delivered", delivered).
		Msg("broadcast")
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
