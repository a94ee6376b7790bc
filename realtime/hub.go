package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed over the websocket. The UI switches on these to decide
// which views to refresh.
const (
	EventCollectionUpdated = "collection.updated"
	EventCollectionError   = "collection.error"
	EventPhotoUpdated      = "photo.updated"
	EventPhotoDeleted      = "photo.deleted"
	EventUploadFinished    = "upload.finished"
	EventUploadFailed      = "upload.failed"
	EventEditFinished      = "edit.finished"
)

// Event is a state-change message pushed to connected UI clients.
type Event struct {
	Type      string                 `json:"type"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

const writeWait = 10 * time.Second

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop drains the client's send queue until it closes or a write fails.
func (c *Client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Hub fans events out to the websocket clients of the local bridge. Only the
// configured UI origin may connect from a browser.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
	mu         sync.Mutex
}

// NewHub creates a hub that accepts browser connections from allowedOrigin.
// Requests without an Origin header (non-browser clients) are always allowed.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}
	return h
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.drop(client)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer; disconnect rather than block the hub
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Notify builds and broadcasts an event. It satisfies the Notifier interfaces
// of the gallery controller and the uploader.
func (h *Hub) Notify(eventType string, extra map[string]interface{}) {
	h.BroadcastEvent(Event{
		Type:      eventType,
		Extra:     extra,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Hub) BroadcastEvent(event Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("realtime: failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- encoded:
	default:
		log.Printf("realtime: dropping event, broadcast channel full")
	}
}

// ServeWS upgrades the connection, registers the client and blocks reading
// until the peer disconnects. Inbound messages carry no meaning and are
// discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade error: %v", err)
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 256)}
	h.register <- client
	go client.writeLoop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister <- client
}
