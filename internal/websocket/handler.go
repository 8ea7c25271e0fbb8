package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches the connection to the conversation room and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID, conversationID int64) {
	client := &Client{
		ID:             uuid.New(),
		Hub:            hub,
		Conn:           c,
		UserID:         userID,
		ConversationID: conversationID,
		Send:           make(chan []byte, sendBuffer),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
