package service

import (
	"context"
	"encoding/json"

	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber    message.Subscriber
	topicName     string
	conversations IConversationService
	logger        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	conversations IConversationService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:    subscriber,
		topicName:     topicName,
		conversations: conversations,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always Acks: failed pipelines are reported to the room, never retried.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var job dto.MessageCreatedJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal job", map[string]interface{}{
			"job_id": msg.UUID,
			"error":  err.Error(),
		})
		return
	}

	if err := cs.conversations.HandleIncoming(ctx, job.MessageId); err != nil {
		cs.logger.Error(consumerModule, "Failed to handle incoming message", map[string]interface{}{
			"job_id":          msg.UUID,
			"message_id":      job.MessageId,
			"conversation_id": job.ConversationId,
			"error":           err.Error(),
		})
		return
	}

	cs.logger.Debug(consumerModule, "Message handled", map[string]interface{}{
		"job_id":     msg.UUID,
		"message_id": job.MessageId,
	})
}
