// internal/ws/client.go
//
// One feed connection: readPump detects disconnects and enforces pong
// deadlines, writePump delivers broadcasts and pings.

package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/emojitapper/backend/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The leaderboard API is CORS-open; the feed matches.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one subscribed feed connection.
type Client struct {
	hub   *Hub
	board string
	conn  *websocket.Conn
	send  chan []byte
	log   zerolog.Logger
}

// Serve upgrades the request and attaches it to the hub as a viewer of the
// given board. Returns once the upgrade handshake is done; pumps run in
// their own goroutines.
func Serve(hub *Hub, f storage.Filter, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:   hub,
		board: boardKey(f),
		conn:  conn,
		send:  make(chan []byte, 64),
		log:   hub.log.With().Str("board", f.Game+"/"+f.Mode+"/"+f.Platform).Logger(),
	}
	hub.register <- c
	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
		c.log.Debug().Msg("feed connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// discard client frames; the feed is one-way
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Msg("feed write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
