package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/pkg/log"
)

// Options bounds the read and write pumps. Zero values fall back to the
// defaults below.
type Options struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	return o
}

// MessageHandler processes one decoded inbound frame from a client.
type MessageHandler func(client *Client, frame map[string]interface{})

// Client is one websocket connection registered with the hub. The read
// pump and write pump each own one side of the connection; everything
// else talks to the client through the Send channel.
type Client struct {
	ID      string
	Session *domain.Session
	hub     *Hub
	conn    *websocket.Conn
	Send    chan []byte
	opts    Options
	logger  zerolog.Logger
}

// NewClient wraps an upgraded connection. The caller still has to
// Register it with the hub.
func NewClient(id string, session *domain.Session, h *Hub, conn *websocket.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		ID:      id,
		Session: session,
		hub:     h,
		conn:    conn,
		Send:    make(chan []byte, opts.SendBuffer),
		opts:    opts,
		logger: log.L().With().
			Str(log.FieldClientID, id).
			Logger(),
	}
}

// SendMessage marshals a frame and queues it for the write pump. A full
// queue drops the frame rather than blocking the caller.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		c.logger.Warn().Msg("send buffer full, dropping frame")
		return ErrSendBufferFull
	}
}

// SendError queues an error frame for the peer.
func (c *Client) SendError(message string) {
	_ = c.SendMessage(domain.NewErrorMessage(message))
}

// ReadPump reads frames off the connection until it closes, handing each
// decoded frame to the handler. It unregisters the client on exit. Runs
// on its own goroutine, one per connection.
func (c *Client) ReadPump(handler MessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		c.Session.Touch()

		var frame map[string]interface{}
		if err := json.Unmarshal(data, &frame); err != nil {
			c.SendError("Invalid JSON format")
			continue
		}

		handler(c, frame)
	}
}

// WritePump drains the Send channel onto the connection and keeps the
// peer alive with pings. Runs on its own goroutine, one per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
