package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"debatearena/services"
	"debatearena/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Room holds the connections subscribed to one debate.
type Room struct {
	Clients map[*websocket.Conn]*Client
	Mutex   sync.Mutex
}

// Client is a connected participant or spectator.
type Client struct {
	Conn         *websocket.Conn
	UserID       string
	Username     string
	IsTyping     bool
	LastActivity time.Time

	// writeMu serializes writers: gorilla/websocket supports only one
	// concurrent writer per connection.
	writeMu sync.Mutex
}

// writeJSON is the single outbound path for a connection. Broadcasts
// and direct replies both go through it.
func (c *Client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Message is the inbound event envelope.
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Hub tracks debate rooms and provides room-scoped broadcast. It
// implements services.Broadcaster.
type Hub struct {
	rooms map[string]*Room
	mu    sync.Mutex
}

var defaultHub = &Hub{rooms: make(map[string]*Room)}

// DefaultHub returns the process-wide hub.
func DefaultHub() *Hub {
	return defaultHub
}

func (h *Hub) room(debateID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, exists := h.rooms[debateID]
	if !exists {
		room = &Room{Clients: make(map[*websocket.Conn]*Client)}
		h.rooms[debateID] = room
		log.Printf("Created new room: %s", debateID)
	}
	return room
}

func (h *Hub) dropIfEmpty(debateID string, room *Room) {
	room.Mutex.Lock()
	empty := len(room.Clients) == 0
	room.Mutex.Unlock()
	if empty {
		h.mu.Lock()
		delete(h.rooms, debateID)
		h.mu.Unlock()
		log.Printf("Room %s deleted as it became empty", debateID)
	}
}

// BroadcastToDebate sends an event to every connection in the debate's
// room. Write failures only affect the broken connection.
func (h *Hub) BroadcastToDebate(debateID string, event string, payload interface{}) {
	h.mu.Lock()
	room, exists := h.rooms[debateID]
	h.mu.Unlock()
	if !exists {
		return
	}

	response := map[string]interface{}{
		"type":    event,
		"payload": payload,
	}
	room.Mutex.Lock()
	defer room.Mutex.Unlock()
	for _, client := range room.Clients {
		if err := client.writeJSON(response); err != nil {
			log.Printf("WebSocket write error in room %s: %v", debateID, err)
		}
	}
}

func (h *Hub) broadcastToOthers(room *Room, sender *websocket.Conn, event string, payload interface{}) {
	response := map[string]interface{}{
		"type":    event,
		"payload": payload,
	}
	room.Mutex.Lock()
	defer room.Mutex.Unlock()
	for conn, client := range room.Clients {
		if conn == sender {
			continue
		}
		if err := client.writeJSON(response); err != nil {
			log.Printf("WebSocket write error: %v", err)
		}
	}
}

// Handler upgrades an authenticated connection and joins it to the
// debate's room. Finalization events are delegated to the coordinator,
// which broadcasts the authoritative outcome back through the hub.
func Handler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		log.Println("WebSocket connection failed: missing token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := utils.ValidateJWTToken(token)
	if err != nil {
		log.Printf("WebSocket connection failed: invalid token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	roomID := c.Query("room")
	if roomID == "" {
		log.Println("WebSocket connection failed: missing room parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing room parameter"})
		return
	}
	debateID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room parameter"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	hub := defaultHub
	room := hub.room(roomID)

	client := &Client{
		Conn:         conn,
		UserID:       claims.UserID,
		Username:     claims.DisplayName,
		LastActivity: time.Now(),
	}
	room.Mutex.Lock()
	room.Clients[conn] = client
	log.Printf("Client %s joined room %s (total clients: %d)", client.Username, roomID, len(room.Clients))
	room.Mutex.Unlock()

	defer func() {
		room.Mutex.Lock()
		delete(room.Clients, conn)
		room.Mutex.Unlock()
		conn.Close()
		hub.dropIfEmpty(roomID, room)
		hub.broadcastToOthers(room, conn, "user-left", map[string]interface{}{
			"userId":   client.UserID,
			"username": client.Username,
		})
	}()

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			log.Printf("WebSocket read error in room %s: %v", roomID, err)
			return
		}

		room.Mutex.Lock()
		client.LastActivity = time.Now()
		room.Mutex.Unlock()

		handleEvent(hub, room, conn, client, debateID, message)
	}
}

func handleEvent(hub *Hub, room *Room, conn *websocket.Conn, client *Client, debateID primitive.ObjectID, message Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch message.Type {
	case "join-debate":
		hub.broadcastToOthers(room, conn, "user-joined", map[string]interface{}{
			"userId":   client.UserID,
			"username": client.Username,
		})
	case "leave-debate":
		hub.broadcastToOthers(room, conn, "user-left", map[string]interface{}{
			"userId":   client.UserID,
			"username": client.Username,
		})
	case "request-finalization", "approve-finalization":
		// The coordinator broadcasts finalization-requested or
		// debate-finalized itself once the state change lands.
		if _, err := services.Coordinator().RequestFinalization(ctx, debateID, client.UserID); err != nil {
			sendError(client, err)
			return
		}
		if message.Type == "approve-finalization" {
			hub.broadcastToOthers(room, conn, "finalization-approved", map[string]interface{}{
				"approvedBy": client.Username,
			})
		}
	case "reject-finalization":
		if err := services.Coordinator().RejectFinalization(ctx, debateID, client.UserID); err != nil {
			sendError(client, err)
		}
	case "typing", "stop-typing":
		client.IsTyping = message.Type == "typing"
		hub.broadcastToOthers(room, conn, "typing", map[string]interface{}{
			"userId":   client.UserID,
			"username": client.Username,
			"isTyping": client.IsTyping,
		})
	default:
		log.Printf("Unknown message type '%s' from %s in room %s", message.Type, client.Username, debateID.Hex())
	}
}

func sendError(client *Client, err error) {
	response := map[string]interface{}{
		"type":    "error",
		"payload": map[string]interface{}{"message": err.Error()},
	}
	if writeErr := client.writeJSON(response); writeErr != nil {
		log.Printf("WebSocket write error: %v", writeErr)
	}
}
