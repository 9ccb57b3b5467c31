package domain

import "fmt"

// WebSocket message types from client.
const (
	MsgTypePing               = "ping"
	MsgTypeTypingStart        = "typing_start"
	MsgTypeTypingStop         = "typing_stop"
	MsgTypeTestMessage        = "test_message"
	MsgTypeTestProjectMessage = "test_project_message"

	// Reserved protocol surface: accepted by the validator but not routed
	// to any handler. Room membership is driven by the connection
	// lifecycle, not by explicit messages.
	MsgTypeJoinProjectRoom  = "join_project_room"
	MsgTypeLeaveProjectRoom = "leave_project_room"
)

// WebSocket message types to client.
const (
	MsgTypeConnectionEstablished = "connection_established"
	MsgTypeError                 = "error"
	MsgTypePong                  = "pong"
	MsgTypeTypingIndicator       = "typing_indicator"
	MsgTypeNotification          = "notification"
	MsgTypeActivityUpdate        = "activity_update"
	MsgTypeTestResponse          = "test_response"
	MsgTypeTestProjectResponse   = "test_project_response"
)

// acceptedMessageTypes is the full inbound protocol surface. A frame whose
// type is outside this set fails validation and earns an error frame; an
// accepted type without a handler is logged and ignored.
var acceptedMessageTypes = map[string]struct{}{
	MsgTypePing:               {},
	MsgTypeTypingStart:        {},
	MsgTypeTypingStop:         {},
	MsgTypeTestMessage:        {},
	MsgTypeTestProjectMessage: {},
	MsgTypeJoinProjectRoom:    {},
	MsgTypeLeaveProjectRoom:   {},
}

// ValidateInbound checks a decoded inbound frame and returns its message
// type. The returned error message is safe to echo to the sender in an
// error frame.
func ValidateInbound(frame map[string]interface{}) (string, error) {
	raw, ok := frame["type"]
	if !ok {
		return "", fmt.Errorf("missing required field: type")
	}

	msgType, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field type must be a string")
	}

	if _, ok := acceptedMessageTypes[msgType]; !ok {
		return "", fmt.Errorf("invalid message type: %s", msgType)
	}

	return msgType, nil
}

// Server -> Client frames.

// ConnectionEstablishedMessage acknowledges a successful connect. ProjectID
// is set only for room-scoped sessions.
type ConnectionEstablishedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	User      string `json:"user"`
	ProjectID string `json:"project_id,omitempty"`
}

// ErrorMessage reports a recoverable protocol error; the connection stays
// open.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorMessage builds an error frame.
func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Message: message,
	}
}

// PongMessage answers a ping.
type PongMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// TypingIndicatorMessage tells room members someone started or stopped
// typing. Never delivered back to the originating user.
type TypingIndicatorMessage struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// NotificationMessage carries a domain event to room members.
type NotificationMessage struct {
	Type             string                 `json:"type"`
	NotificationType EventKind              `json:"notification_type"`
	Data             map[string]interface{} `json:"data"`
}

// ActivityUpdateMessage streams a persisted activity record to room
// members.
type ActivityUpdateMessage struct {
	Type         string    `json:"type"`
	ActivityData *Activity `json:"activity_data"`
}

// TestResponseMessage answers a test_message frame on the global endpoint.
type TestResponseMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// TestProjectResponseMessage answers a test_project_message frame on a
// room-scoped endpoint.
type TestProjectResponseMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}
