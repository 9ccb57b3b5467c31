package pubsub

import "fmt"

// Channel naming conventions for the tracker event bus.
const (
	// Per-room broadcast relay channel; one channel per project room.
	channelRoom = "tracker:room:%s"

	// Pattern matching every room channel, used by the relay subscriber.
	PatternAllRooms = "tracker:room:*"
)

// Event types published on room channels.
const (
	EventRoomBroadcast = "room_broadcast"
)

// RoomChannel returns the relay channel name for a room key.
func RoomChannel(roomKey string) string {
	return fmt.Sprintf(channelRoom, roomKey)
}

// RoomBroadcastPayload carries one websocket frame across instances.
type RoomBroadcastPayload struct {
	// ExcludeUserID suppresses delivery to sessions of the originating
	// user (typing indicator echo suppression).
	ExcludeUserID string `json:"exclude_user_id,omitempty"`

	// Frame is the JSON-encoded websocket frame to deliver as-is.
	Frame []byte `json:"frame"`
}
