package websocket

// MessageType tags every frame pushed to conversation clients.
type MessageType string

const (
	TypeTurbo             MessageType = "TURBO"
	TypeClosed            MessageType = "CLOSED"
	TypeMessage           MessageType = "MESSAGE"
	TypeMessageProcessing MessageType = "MESSAGE_PROCESSING"
	TypeMessageWaiting    MessageType = "MESSAGE_WAITING"
	TypeThinking          MessageType = "THINKING"
	TypeNote              MessageType = "NOTE"
	TypeActionItem        MessageType = "ACTION_ITEM"
)

type Frame struct {
	Type           MessageType `json:"type"`
	ConversationId int64       `json:"conversation_id"`
	Data           interface{} `json:"data"`
}
