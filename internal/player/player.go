package player

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is a browser attached to a game session.
type Player struct {
	ID       string
	Conn     Connection
	JoinedAt time.Time

	writeMu sync.Mutex
}

func NewPlayer(id string, conn Connection) *Player {
	return &Player{ID: id, Conn: conn, JoinedAt: time.Now()}
}

// Send writes v as a JSON text frame. Safe for concurrent use.
func (p *Player) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}
