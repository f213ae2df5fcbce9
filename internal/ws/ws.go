// internal/ws/ws.go
//
// Websocket live feed of accepted score submissions. Viewers subscribe to
// one board (game/mode/platform triple); every stored submission for that
// board is pushed as a score_submitted envelope.
//
// The feed is one-way: client frames are read only to detect disconnects.

package ws

import (
	"time"

	"github.com/emojitapper/backend/internal/storage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Envelope is the wire format of every feed message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// boardKey collapses a filter into the hub's subscription key.
func boardKey(f storage.Filter) string {
	return f.Game + "\x00" + f.Mode + "\x00" + f.Platform
}
