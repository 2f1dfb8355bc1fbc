package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"quizgenius/models"

	"github.com/gorilla/websocket"
)

// Hub fans live game events out to the websocket clients of each game.
type Hub struct {
	clients     map[*Client]bool
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	gameService *GameService
}

type Client struct {
	hub        *Hub
	id         string
	socket     *websocket.Conn
	send       chan []byte
	gamePin    string
	playerID   uint
	playerName string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(gameService *GameService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		gameService: gameService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s for game %s (player %d: %s)", client.id, client.gamePin, client.playerID, client.playerName)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client unregistered: %s for game %s (player %d: %s)", client.id, client.gamePin, client.playerID, client.playerName)

				// The host connects with player ID 0; when the host leaves
				// the game cannot continue.
				if client.playerID == 0 {
					log.Printf("Host disconnected from game %s", client.gamePin)
					if h.gameService != nil {
						if err := h.gameService.UpdateGameStatus(client.gamePin, "finished"); err != nil {
							log.Printf("Error updating game status after host disconnect: %v", err)
						} else {
							h.BroadcastToGame(client.gamePin, "game_end", map[string]interface{}{
								"message": "The host has left the game. The quiz has ended.",
								"reason":  "host_disconnected",
							})
						}
					}
				}
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) BroadcastToGame(gamePin string, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if strings.EqualFold(client.gamePin, gamePin) {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(h.clients, client)
			}
		}
	}
	h.mutex.Unlock()
}

func (h *Hub) BroadcastPlayerUpdate(gamePin string, player models.Player, action string) {
	h.BroadcastToGame(gamePin, "player_update", map[string]interface{}{
		"action": action, // "joined" or "left"
		"player": player,
	})
}

// SendGameStateSync pushes the authoritative game state to one client, used
// when a client connects or reconnects mid-game.
func (h *Hub) SendGameStateSync(client *Client) {
	if h.gameService == nil {
		return
	}

	gameState, err := h.gameService.GetCurrentGameState(client.gamePin)
	if err != nil {
		log.Printf("Error getting game state for client %s: %v", client.id, err)
		return
	}

	message := Message{
		Type: "game_state_sync",
		Payload: map[string]interface{}{
			"game_status":            gameState.Status,
			"current_question_index": gameState.CurrentQuestionIndex,
			"current_question":       gameState.CurrentQuestion,
			"players":                gameState.Players,
		},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling game state sync message: %v", err)
		return
	}

	select {
	case client.send <- data:
	default:
		close(client.send)
		h.mutex.Lock()
		delete(h.clients, client)
		h.mutex.Unlock()
	}
}

func (h *Hub) GetConnectedPlayers(gamePin string) []uint {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var playerIDs []uint
	for client := range h.clients {
		if strings.EqualFold(client.gamePin, gamePin) {
			playerIDs = append(playerIDs, client.playerID)
		}
	}
	return playerIDs
}

func (h *Hub) IsPlayerConnected(gamePin string, playerID uint) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if strings.EqualFold(client.gamePin, gamePin) && client.playerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) IsHostConnected(gamePin string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if strings.EqualFold(client.gamePin, gamePin) && client.playerID == 0 {
			return true
		}
	}
	return false
}

func (h *Hub) RegisterClient(conn *websocket.Conn, gamePin string, playerID uint, playerName string) *Client {
	client := &Client{
		hub:        h,
		id:         generateClientID(),
		socket:     conn,
		send:       make(chan []byte, 256),
		gamePin:    gamePin,
		playerID:   playerID,
		playerName: playerName,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		response := Message{
			Type:    "pong",
			Payload: "pong",
		}
		data, _ := json.Marshal(response)
		c.send <- data

	case "join_game", "player_ready", "request_game_state":
		log.Printf("Player %d (%s) requested state sync in game %s", c.playerID, c.playerName, c.gamePin)
		c.hub.SendGameStateSync(c)

	case "leave_game":
		log.Printf("Player %d (%s) left game %s via WebSocket", c.playerID, c.playerName, c.gamePin)

	default:
		log.Printf("Unknown message type: %s from player %d (%s) in game %s", msg.Type, c.playerID, c.playerName, c.gamePin)
	}
}

func generateClientID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "client_" + hex.EncodeToString(bytes)
}
