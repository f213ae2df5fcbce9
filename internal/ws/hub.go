// internal/ws/hub.go
//
// Hub owning feed subscriptions. One goroutine serializes register,
// unregister, and broadcast; clients that cannot keep up are dropped.

package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/emojitapper/backend/internal/leaderboard"
	"github.com/emojitapper/backend/internal/storage"
)

type boardMessage struct {
	key  string
	data []byte
}

// Hub fans accepted submissions out to subscribed feed clients.
type Hub struct {
	log zerolog.Logger

	clientsByBoard map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan boardMessage
}

// NewHub constructs a Hub and starts its dispatch loop.
func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		log:            log,
		clientsByBoard: make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan boardMessage, 256),
	}
	go h.run()
	return h
}

// Publish pushes one accepted submission to every viewer of its board.
func (h *Hub) Publish(f storage.Filter, hs leaderboard.HighScore) {
	b, err := json.Marshal(Envelope{Type: "score_submitted", Payload: hs})
	if err != nil {
		h.log.Error().Err(err).Msg("feed marshal failed")
		return
	}
	h.broadcast <- boardMessage{key: boardKey(f), data: b}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			if _, ok := h.clientsByBoard[c.board]; !ok {
				h.clientsByBoard[c.board] = make(map[*Client]bool)
			}
			h.clientsByBoard[c.board][c] = true
			h.log.Debug().Str("board", c.board).Msg("feed client registered")

		case c := <-h.unregister:
			if clients, ok := h.clientsByBoard[c.board]; ok {
				if clients[c] {
					delete(clients, c)
					close(c.send)
				}
				if len(clients) == 0 {
					delete(h.clientsByBoard, c.board)
				}
			}
			h.log.Debug().Str("board", c.board).Msg("feed client unregistered")

		case msg := <-h.broadcast:
			for c := range h.clientsByBoard[msg.key] {
				select {
				case c.send <- msg.data:
				default:
					// slow client, drop it
					delete(h.clientsByBoard[msg.key], c)
					close(c.send)
				}
			}
		}
	}
}
