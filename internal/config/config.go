package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/furkantngr/ragchatbot/pkg/links"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Corpus    CorpusConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Links     []links.Link
}

type AppConfig struct {
	ChatPort           string
	AdminPort          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	// PeerRefreshURLs are the /api/refresh endpoints of the other live
	// processes. A mutating process notifies every one of them.
	PeerRefreshURLs []string
	JWTSecret       string
	UsersPath       string
}

type DatabaseConfig struct {
	Connection string
}

type CorpusConfig struct {
	LivePath           string
	StagingPath        string
	PromptFastPath     string
	PromptThinkingPath string
	SettingsPath       string
}

type AIConfig struct {
	OllamaBaseURL    string
	EmbeddingModel   string
	EmbedDimensions  int
	DefaultChatModel string
	Temperature      float64
	NumCtx           int
	NumThread        int
	EmbedBatchSize   int
}

type RetrievalConfig struct {
	TopK int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			ChatPort:           getEnv("CHAT_PORT", "8000"),
			AdminPort:          getEnv("ADMIN_PORT", "8001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			PeerRefreshURLs:    splitCSV(getEnv("PEER_REFRESH_URLS", "")),
			JWTSecret:          getEnv("JWT_SECRET", "change-me"),
			UsersPath:          getEnv("USERS_PATH", "users.json"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Corpus: CorpusConfig{
			LivePath:           getEnv("LIVE_DOCUMENTS_PATH", "data/documents"),
			StagingPath:        getEnv("STAGING_DOCUMENTS_PATH", "data/staging"),
			PromptFastPath:     getEnv("PROMPT_FAST_PATH", "data/prompt_fast.txt"),
			PromptThinkingPath: getEnv("PROMPT_THINKING_PATH", "data/prompt_thinking.txt"),
			SettingsPath:       getEnv("SETTINGS_PATH", "data/settings.json"),
		},
		Ai: AIConfig{
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "bge-m3"),
			EmbedDimensions:  getEnvAsInt("EMBEDDING_DIMENSIONS", 1024),
			DefaultChatModel: getEnv("DEFAULT_CHAT_MODEL", "gemma3:12b"),
			Temperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.1),
			NumCtx:           getEnvAsInt("LLM_NUM_CTX", 4096),
			NumThread:        getEnvAsInt("LLM_NUM_THREAD", 8),
			EmbedBatchSize:   getEnvAsInt("EMBED_BATCH_SIZE", 32),
		},
		Retrieval: RetrievalConfig{
			TopK: getEnvAsInt("RETRIEVER_TOP_K", 4),
		},
		Links: defaultLinks(),
	}

	ensureDirs(cfg.Corpus.LivePath, cfg.Corpus.StagingPath)
	return cfg
}

// defaultLinks is the keyword table consulted by the link annotator.
// Order matters: matches are reported in table order.
func defaultLinks() []links.Link {
	return []links.Link{
		{Keyword: "okr", URL: "http://intranet:180/"},
		{Keyword: "kaizen", URL: "http://intranet:20255/"},
		{Keyword: "lessons learned", URL: "http://intranet:20255/"},
		{Keyword: "epcr", URL: "http://intranet:20259/"},
		{Keyword: "e-pcr", URL: "http://intranet:20259/"},
		{Keyword: "inventory", URL: "http://intranet:167/"},
		{Keyword: "erm", URL: "http://intranet:166/"},
		{Keyword: "contact", URL: "http://intranet:112/"},
		{Keyword: "kpi", URL: "http://intranet:99/"},
	}
}

func ensureDirs(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := os.MkdirAll(p, 0o755); err != nil {
				log.Printf("Warn: could not create directory %s: %v", p, err)
			}
		}
	}
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
