package domain

import (
	"sync"
	"time"
)

// Session holds the per-connection state: the authenticated identity, the
// room the connection is admitted to (empty for the global endpoint) and
// the typing flag. Safe for concurrent use; the read pump and the hub
// touch it from different goroutines.
type Session struct {
	ID            string
	UserID        string
	Username      string
	Email         string
	Authenticated bool
	RoomKey       string
	Typing        bool
	CreatedAt     time.Time
	LastActiveAt  time.Time
	mu            sync.RWMutex
}

// NewSession creates a session for a new connection.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Authenticate attaches the identity extracted from the handshake context.
func (s *Session) Authenticate(userID, username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.Email = email
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

// IsAuthenticated reports whether an identity is attached.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

// JoinRoom records admission to a room.
func (s *Session) JoinRoom(roomKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RoomKey = roomKey
	s.LastActiveAt = time.Now()
}

// Room returns the room key, empty for global sessions.
func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RoomKey
}

// InRoom reports whether the session is admitted to a room.
func (s *Session) InRoom() bool {
	return s.Room() != ""
}

// SetTyping updates the typing flag.
func (s *Session) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Typing = typing
	s.LastActiveAt = time.Now()
}

// IsTyping reports the typing flag.
func (s *Session) IsTyping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Typing
}

// User returns the identity pair attached to the session.
func (s *Session) User() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID, s.Username
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
