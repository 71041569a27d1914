package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/internal/repository/contract"
	"github.com/furkantngr/ragchatbot/pkg/rag"
	"github.com/furkantngr/ragchatbot/pkg/refresh"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// conversationConsumer drains the conversation-log topic and persists
// each record. At-most-once: every message is acked regardless of
// outcome, a failed write is only reported to the diagnostic log.
type conversationConsumer struct {
	pubSub *gochannel.GoChannel
	logs   contract.LogRepository
	log    logger.ILogger
}

func NewConversationConsumer(pubSub *gochannel.GoChannel, logs contract.LogRepository, log logger.ILogger) IConsumerService {
	return &conversationConsumer{pubSub: pubSub, logs: logs, log: log}
}

func (c *conversationConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, dto.TopicConversationLogged)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (c *conversationConsumer) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.ConversationLoggedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.log.Error("consumer", "invalid conversation log payload", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	entry := &entity.ConversationLog{
		Id:          uuid.New(),
		UserQuery:   payload.Query,
		BotResponse: payload.Response,
		ContextUsed: payload.ContextUsed,
		ModelName:   payload.ModelName,
		IpAddress:   payload.IpAddress,
	}
	if err := c.logs.CreateConversation(ctx, entry); err != nil {
		c.log.Error("consumer", "could not persist conversation log", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// publishConsumer runs the slow half of a publish: extract, chunk,
// embed, index, then nudge the peers. The triggering HTTP call has
// already returned by the time this runs.
type publishConsumer struct {
	pubSub   *gochannel.GoChannel
	engine   *rag.Engine
	notifier *refresh.Notifier
	log      logger.ILogger
}

func NewPublishConsumer(pubSub *gochannel.GoChannel, engine *rag.Engine, notifier *refresh.Notifier, log logger.ILogger) IConsumerService {
	return &publishConsumer{pubSub: pubSub, engine: engine, notifier: notifier, log: log}
}

func (c *publishConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, dto.TopicDocumentPublished)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (c *publishConsumer) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.DocumentPublishedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.log.Error("consumer", "invalid publish task payload", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	added, err := c.engine.Ingest(ctx, payload.Path)
	if err != nil {
		c.log.Error("consumer", "ingestion failed", map[string]interface{}{
			"file":  payload.Filename,
			"error": err.Error(),
		})
		return
	}
	if !added {
		c.log.Warn("consumer", "published document produced no chunks", map[string]interface{}{
			"file": payload.Filename,
		})
		return
	}

	c.log.Info("consumer", "document indexed, notifying peers", map[string]interface{}{
		"file": payload.Filename,
	})
	c.notifier.Broadcast(ctx)
}
