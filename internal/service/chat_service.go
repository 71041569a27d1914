package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/pkg/rag"
	"github.com/furkantngr/ragchatbot/pkg/rag/prompt"
)

type IChatService interface {
	Ask(ctx context.Context, query, mode, ipAddress string) (string, error)
	Refresh(ctx context.Context) error
}

type chatService struct {
	engine *rag.Engine
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewChatService(engine *rag.Engine, pubSub *gochannel.GoChannel, log logger.ILogger) IChatService {
	return &chatService{
		engine: engine,
		pubSub: pubSub,
		log:    log,
	}
}

// Ask answers the query in the requested mode, then hands the audit
// record to the task queue. Logging never blocks or fails the answer.
// A not-ready system only returns the placeholder; those exchanges are
// not audited.
func (s *chatService) Ask(ctx context.Context, query, mode, ipAddress string) (string, error) {
	if !s.engine.Ready() {
		return rag.NotReadyMessage, nil
	}

	m := prompt.ParseMode(mode)

	answer, err := s.engine.Answer(ctx, query, m)
	if err != nil {
		return "", err
	}

	contextLabel := "PDF (Fast Mode)"
	if m == prompt.ModeThinking {
		contextLabel = "PDF (Thinking Mode)"
	}

	s.publishConversation(dto.ConversationLoggedMessage{
		Query:       query,
		Response:    answer,
		ContextUsed: contextLabel,
		ModelName:   s.engine.ActiveModel(),
		IpAddress:   ipAddress,
	})

	return answer, nil
}

// Refresh reinitializes the session; this is the refresh-signal
// receiver's work.
func (s *chatService) Refresh(ctx context.Context) error {
	return s.engine.Initialize(ctx)
}

func (s *chatService) publishConversation(msg dto.ConversationLoggedMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("chat", "could not marshal conversation log", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	wm := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(dto.TopicConversationLogged, wm); err != nil {
		// Best-effort: a lost audit row never fails the answer.
		s.log.Error("chat", "could not enqueue conversation log", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
