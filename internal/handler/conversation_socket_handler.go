package handler

import (
	"strings"

	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/service"
	internalWS "teamcollab-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const socketModule = "ConversationSocket"

type ConversationSocketHandler struct {
	conversations service.IConversationService
	hub           *internalWS.Hub
	logger        logger.ILogger
}

func NewConversationSocketHandler(conversations service.IConversationService, hub *internalWS.Hub, log logger.ILogger) *ConversationSocketHandler {
	return &ConversationSocketHandler{
		conversations: conversations,
		hub:           hub,
		logger:        log,
	}
}

func (h *ConversationSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/conversation/:id", h.ServeWs)
}

// ServeWs upgrades a conversation member's connection and joins it to the conversation room.
func (h *ConversationSocketHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a WebSocket handshake, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	userID, err := serverutils.ParseUserToken(tokenStr)
	if err != nil {
		h.logger.Warn(socketModule, "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	conversationID, err := serverutils.ParamId(c, "id")
	if err != nil {
		return err
	}
	if err := h.conversations.Authorize(c.UserContext(), userID, conversationID); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(socketModule, "Starting WebSocket session", map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
		})
		internalWS.ServeWs(h.hub, conn, userID, conversationID)
		h.logger.Info(socketModule, "WebSocket session ended", map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
		})
	})(c)
}
