package orchestration

import "teamcollab-be/internal/entity"

// Responder is the assistant a reply is generated for.
type Responder struct {
	Assistant *entity.Assistant
	Tone      *entity.AssistantTone
}

// ChatContext is the bundle handed to prompt building: purpose, project overview and
// recent history in chronological order.
type ChatContext struct {
	Purpose         string
	ProjectOverview string
	Messages        []*entity.Message
	Assistants      []*entity.Assistant
	Responder       *Responder
}

// LatestMessage returns the chronologically last message, or nil.
func (c *ChatContext) LatestMessage() *entity.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// WithResponder returns a shallow copy of c bound to r.
func (c *ChatContext) WithResponder(r Responder) *ChatContext {
	cp := *c
	cp.Responder = &r
	return &cp
}

type MessageResponse struct {
	Content string
	Metrics *entity.Metrics
	Message *entity.Message
}
