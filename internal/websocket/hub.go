package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client merepresentasikan klien WebSocket.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// Hub menyiarkan event task (created/updated/deleted) ke semua klien.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

// NewHub membuat instance Hub baru.
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish mengirim event tanpa blocking. Event jatuh begitu saja kalau
// buffer penuh atau hub tidak jalan (misalnya di test).
func (h *Hub) Publish(event string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
	}
}

// Run menjalankan loop Hub untuk mengelola register, unregister, dan Broadcast.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					// Lepas langsung, kirim ke channel Unregister dari
					// loop ini sendiri bakal deadlock
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
