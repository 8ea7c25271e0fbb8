package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"teamcollab-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// clusterEnvelope is what instances exchange over Redis.
type clusterEnvelope struct {
	Origin         string          `json:"origin"`
	ConversationId int64           `json:"conversation_id"`
	Message        json.RawMessage `json:"message"`
}

type Hub struct {
	// Rooms: ConversationID -> connected clients
	rooms map[int64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// instance tags our own publications so they are not delivered twice
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.ConversationID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.ConversationID] = room
			}
			room[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client joined conversation", map[string]interface{}{
				"client_id":       client.ID,
				"user_id":         client.UserID,
				"conversation_id": client.ConversationID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.ConversationID]; ok {
				if _, member := room[client]; member {
					delete(room, client)
					close(client.Send)
				}
				if len(room) == 0 {
					delete(h.rooms, client.ConversationID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client left conversation", map[string]interface{}{
				"client_id":       client.ID,
				"conversation_id": client.ConversationID,
			})
		}
	}
}

// Push sends a frame to every client of the conversation on every instance.
func (h *Hub) Push(conversationId int64, messageType MessageType, data interface{}) {
	payload, err := json.Marshal(Frame{Type: messageType, ConversationId: conversationId, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"error": err.Error(), "type": messageType})
		return
	}

	h.deliver(conversationId, payload)

	if h.rdb != nil {
		envelope, _ := json.Marshal(clusterEnvelope{Origin: h.instance, ConversationId: conversationId, Message: payload})
		if err := h.rdb.Publish(context.Background(), clusterChannel, envelope).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish frame to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliver writes to local clients. A client whose buffer is full is dropped.
func (h *Hub) deliver(conversationId int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[conversationId] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) roomSize(conversationId int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationId])
}

// subscribeToRedis relays frames published by other instances to local clients.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var envelope clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if envelope.Origin == h.instance {
				continue
			}
			h.deliver(envelope.ConversationId, envelope.Message)
		}
	}
}
