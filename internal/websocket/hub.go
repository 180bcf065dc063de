package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"picstream/internal/models"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow clients are dropped rather than stalling the hub.
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastPic queues a new-pic message for every connected client. The
// message is dropped when nothing drains the hub.
func (h *Hub) BroadcastPic(pic models.Pic) {
	msg, err := json.Marshal(Message{Action: "new_pic", Payload: pic})
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
	}
}
