package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/pkg/embedding"
	"github.com/furkantngr/ragchatbot/pkg/links"
	"github.com/furkantngr/ragchatbot/pkg/llm"
	"github.com/furkantngr/ragchatbot/pkg/rag"
	"github.com/furkantngr/ragchatbot/pkg/rag/prompt"
	"github.com/furkantngr/ragchatbot/pkg/textsplit"
	"github.com/furkantngr/ragchatbot/pkg/vectorstore"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (stubEmbedder) Model() string { return "stub-embedder" }

type emptyStore struct{}

func (emptyStore) Add(context.Context, []textsplit.Chunk) (int, error) { return 0, nil }
func (emptyStore) Search(context.Context, string, int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}
func (emptyStore) Count(context.Context) (int64, error)       { return 0, nil }
func (emptyStore) DeleteSource(context.Context, string) error { return nil }

type stubLLM struct{ model string }

func (s stubLLM) Generate(context.Context, string) (string, error) {
	return "generated by " + s.model, nil
}

func (s stubLLM) Model() string { return s.model }

type staticSettings struct{ model string }

func (s staticSettings) ActiveModel() string { return s.model }

type staticPrompts struct{}

func (staticPrompts) Load(prompt.Mode) string { return "C: {context}\nQ: {question}" }

// readyEngine builds an initialized engine backed by stubs, so Ask
// exercises the full answer-then-audit path without Postgres or Ollama.
func readyEngine(t *testing.T) *rag.Engine {
	t.Helper()

	engine := rag.NewEngine(rag.Deps{
		Settings: staticSettings{model: "gemma3:12b"},
		Prompts:  staticPrompts{},
		Links:    links.NewAnnotator(nil),
		Splitter: textsplit.NewRecursiveSplitter(1024, 200),
		TopK:     4,
		Log:      logger.NewNopLogger(),
		NewEmbedder: func() embedding.Provider {
			return stubEmbedder{}
		},
		OpenStore: func(context.Context, embedding.Provider) (vectorstore.Store, error) {
			return emptyStore{}, nil
		},
		NewLLM: func(model string) llm.Provider {
			return stubLLM{model: model}
		},
	})
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestAskBeforeSessionReady(t *testing.T) {
	nop := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, dto.TopicConversationLogged)
	if err != nil {
		t.Fatal(err)
	}

	engine := rag.NewEngine(rag.Deps{Log: nop})
	svc := NewChatService(engine, pubSub, nop)

	answer, err := svc.Ask(ctx, "how much annual leave?", "fast", "10.0.0.7")
	if err != nil {
		t.Fatalf("Ask() before init error = %v", err)
	}
	if answer != rag.NotReadyMessage {
		t.Fatalf("Ask() before init = %q, want the not-ready message", answer)
	}

	// The placeholder reply is not a conversation; nothing is audited.
	select {
	case msg := <-messages:
		msg.Ack()
		t.Fatalf("not-ready exchange was audited: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAskAuditsAnswer(t *testing.T) {
	nop := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, dto.TopicConversationLogged)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewChatService(readyEngine(t), pubSub, nop)

	answer, err := svc.Ask(ctx, "how much annual leave?", "fast", "10.0.0.7")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "generated by gemma3:12b" {
		t.Errorf("Ask() = %q, want the backend output", answer)
	}

	payload := receiveConversation(t, messages)
	if payload.Query != "how much annual leave?" {
		t.Errorf("audit query = %q", payload.Query)
	}
	if payload.Response != answer {
		t.Errorf("audit response = %q, want %q", payload.Response, answer)
	}
	if payload.ContextUsed != "PDF (Fast Mode)" {
		t.Errorf("audit context label = %q, want PDF (Fast Mode)", payload.ContextUsed)
	}
	if payload.ModelName != "gemma3:12b" {
		t.Errorf("audit model = %q, want gemma3:12b", payload.ModelName)
	}
	if payload.IpAddress != "10.0.0.7" {
		t.Errorf("audit ip = %q", payload.IpAddress)
	}
}

func TestAskLabelsThinkingMode(t *testing.T) {
	nop := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, dto.TopicConversationLogged)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewChatService(readyEngine(t), pubSub, nop)
	if _, err := svc.Ask(ctx, "explain the procedure", "thinking", "10.0.0.7"); err != nil {
		t.Fatal(err)
	}

	payload := receiveConversation(t, messages)
	if payload.ContextUsed != "PDF (Thinking Mode)" {
		t.Errorf("audit context label = %q, want PDF (Thinking Mode)", payload.ContextUsed)
	}
}

func receiveConversation(t *testing.T, messages <-chan *message.Message) dto.ConversationLoggedMessage {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		var payload dto.ConversationLoggedMessage
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatal(err)
		}
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("no conversation log was enqueued")
		return dto.ConversationLoggedMessage{}
	}
}

func TestConversationConsumerPersists(t *testing.T) {
	nop := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	logs := &memLogRepo{}
	consumer := NewConversationConsumer(pubSub, logs, nop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Consume(ctx); err != nil {
		t.Fatal(err)
	}

	payload, err := json.Marshal(dto.ConversationLoggedMessage{
		Query:     "test query",
		Response:  "test answer",
		ModelName: "gemma3:12b",
		IpAddress: "10.0.0.7",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := pubSub.Publish(dto.TopicConversationLogged, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		logs.mu.Lock()
		n := len(logs.conversations)
		logs.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("conversation was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	logs.mu.Lock()
	defer logs.mu.Unlock()
	rec := logs.conversations[0]
	if rec.UserQuery != "test query" || rec.BotResponse != "test answer" {
		t.Errorf("persisted record = %+v", rec)
	}
	if rec.ModelName != "gemma3:12b" || rec.IpAddress != "10.0.0.7" {
		t.Errorf("persisted metadata = %+v", rec)
	}
}

func TestConversationConsumerSkipsBadPayload(t *testing.T) {
	nop := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	logs := &memLogRepo{}
	consumer := NewConversationConsumer(pubSub, logs, nop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Consume(ctx); err != nil {
		t.Fatal(err)
	}

	if err := pubSub.Publish(dto.TopicConversationLogged, message.NewMessage(watermill.NewUUID(), []byte("{broken"))); err != nil {
		t.Fatal(err)
	}
	// A good message after the bad one must still land: the bad payload
	// is acked and dropped, not retried forever.
	payload, _ := json.Marshal(dto.ConversationLoggedMessage{Query: "after"})
	if err := pubSub.Publish(dto.TopicConversationLogged, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		logs.mu.Lock()
		n := len(logs.conversations)
		logs.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("good message after a bad payload was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	logs.mu.Lock()
	defer logs.mu.Unlock()
	if logs.conversations[0].UserQuery != "after" {
		t.Errorf("persisted query = %q, want the good message only", logs.conversations[0].UserQuery)
	}
}
