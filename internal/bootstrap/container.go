package bootstrap

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"github.com/furkantngr/ragchatbot/internal/config"
	"github.com/furkantngr/ragchatbot/internal/controller"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/internal/repository/implementation"
	"github.com/furkantngr/ragchatbot/internal/service"
	"github.com/furkantngr/ragchatbot/pkg/embedding"
	"github.com/furkantngr/ragchatbot/pkg/links"
	"github.com/furkantngr/ragchatbot/pkg/llm"
	ollamallm "github.com/furkantngr/ragchatbot/pkg/llm/ollama"
	"github.com/furkantngr/ragchatbot/pkg/pdfloader"
	"github.com/furkantngr/ragchatbot/pkg/rag"
	"github.com/furkantngr/ragchatbot/pkg/rag/prompt"
	"github.com/furkantngr/ragchatbot/pkg/refresh"
	"github.com/furkantngr/ragchatbot/pkg/settings"
	"github.com/furkantngr/ragchatbot/pkg/textsplit"
	"github.com/furkantngr/ragchatbot/pkg/vectorstore"
)

// ChatContainer wires the user-facing chat process.
type ChatContainer struct {
	ChatController  controller.IChatController
	ConsumerService service.IConsumerService
	Engine          *rag.Engine
	Logger          logger.ILogger
}

// AdminContainer wires the administrative process.
type AdminContainer struct {
	AdminController controller.IAdminController
	ConsumerService service.IConsumerService
	Engine          *rag.Engine
	Logger          logger.ILogger
}

// newEngine builds the RAG engine with its production collaborators.
// Both processes own an independent engine instance; consistency
// between them travels through the refresh signal, never shared memory.
func newEngine(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger, prompts *prompt.Store, settingsStore *settings.Store) *rag.Engine {
	loader := pdfloader.NewLoader(sysLogger)
	splitter := textsplit.NewRecursiveSplitter(textsplit.DefaultChunkSize, textsplit.DefaultOverlap)

	chunkRepo := implementation.NewChunkEmbeddingRepository(db)
	collectionRepo := implementation.NewCollectionRepository(db)

	return rag.NewEngine(rag.Deps{
		Settings: settingsStore,
		Prompts:  prompts,
		Links:    links.NewAnnotator(cfg.Links),
		Splitter: splitter,
		TopK:     cfg.Retrieval.TopK,
		Log:      sysLogger,

		NewEmbedder: func() embedding.Provider {
			return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbedBatchSize)
		},
		OpenStore: func(ctx context.Context, embedder embedding.Provider) (vectorstore.Store, error) {
			return vectorstore.Open(ctx, vectorstore.OpenParams{
				Chunks:      chunkRepo,
				Collections: collectionRepo,
				Embedder:    embedder,
				Loader:      loader,
				Splitter:    splitter,
				LivePath:    cfg.Corpus.LivePath,
				Dimensions:  cfg.Ai.EmbedDimensions,
				Logger:      sysLogger,
			})
		},
		NewLLM: func(model string) llm.Provider {
			return ollamallm.NewOllamaProvider(
				cfg.Ai.OllamaBaseURL,
				model,
				llm.WithTemperature(cfg.Ai.Temperature),
				llm.WithNumCtx(cfg.Ai.NumCtx),
				llm.WithNumThread(cfg.Ai.NumThread),
			)
		},
		LoadFile: loader.LoadFile,
	})
}

func NewChatContainer(db *gorm.DB, cfg *config.Config) *ChatContainer {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	prompts := prompt.NewStore(cfg.Corpus.PromptFastPath, cfg.Corpus.PromptThinkingPath, sysLogger)
	settingsStore := settings.NewStore(cfg.Corpus.SettingsPath, cfg.Ai.DefaultChatModel, cfg.Ai.OllamaBaseURL, sysLogger)
	engine := newEngine(db, cfg, sysLogger, prompts, settingsStore)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	logRepo := implementation.NewLogRepository(db)

	chatService := service.NewChatService(engine, pubSub, sysLogger)

	return &ChatContainer{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: service.NewConversationConsumer(pubSub, logRepo, sysLogger),
		Engine:          engine,
		Logger:          sysLogger,
	}
}

func NewAdminContainer(db *gorm.DB, cfg *config.Config) *AdminContainer {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	prompts := prompt.NewStore(cfg.Corpus.PromptFastPath, cfg.Corpus.PromptThinkingPath, sysLogger)
	settingsStore := settings.NewStore(cfg.Corpus.SettingsPath, cfg.Ai.DefaultChatModel, cfg.Ai.OllamaBaseURL, sysLogger)
	engine := newEngine(db, cfg, sysLogger, prompts, settingsStore)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	logRepo := implementation.NewLogRepository(db)
	notifier := refresh.NewNotifier(cfg.App.PeerRefreshURLs, sysLogger)

	adminService := service.NewAdminService(
		cfg.Corpus.StagingPath,
		cfg.Corpus.LivePath,
		engine,
		prompts,
		settingsStore,
		notifier,
		logRepo,
		pubSub,
		sysLogger,
	)
	authService := service.NewAuthService(cfg.App.UsersPath, cfg.App.JWTSecret, sysLogger)

	return &AdminContainer{
		AdminController: controller.NewAdminController(adminService, authService),
		ConsumerService: service.NewPublishConsumer(pubSub, engine, notifier, sysLogger),
		Engine:          engine,
		Logger:          sysLogger,
	}
}
