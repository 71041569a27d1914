package settings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
)

const availableModelsKey = "available_models"

// fallbackModels is returned when the model server cannot be reached.
var fallbackModels = []string{"gemma3:12b", "gemma2:9b", "llama3.2", "mistral", "qwen2.5"}

type settingsFile struct {
	ChatModel string `json:"chat_model"`
}

// Store persists the single active-model setting and lists the models
// the runtime has installed.
type Store struct {
	path          string
	defaultModel  string
	ollamaBaseURL string
	client        *http.Client
	cache         *gocache.Cache
	log           logger.ILogger
}

func NewStore(path, defaultModel, ollamaBaseURL string, log logger.ILogger) *Store {
	return &Store{
		path:          path,
		defaultModel:  defaultModel,
		ollamaBaseURL: ollamaBaseURL,
		client:        &http.Client{Timeout: 2 * time.Second},
		cache:         gocache.New(time.Hour, 10*time.Minute),
		log:           log,
	}
}

// ActiveModel reads the persisted model name. A missing or unreadable
// file resolves to the default, never to an error.
func (s *Store) ActiveModel() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.defaultModel
	}
	var parsed settingsFile
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.ChatModel == "" {
		return s.defaultModel
	}
	return parsed.ChatModel
}

// SetActiveModel persists the selection. The caller is responsible for
// reinitializing sessions afterward so the change takes effect.
func (s *Store) SetActiveModel(model string) error {
	data, err := json.MarshalIndent(settingsFile{ChatModel: model}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.cache.Delete(availableModelsKey)
	return nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// AvailableModels asks the model server which models are installed.
// The answer is cached for an hour; an unreachable server yields a
// static fallback list instead of an error.
func (s *Store) AvailableModels() []string {
	if cached, ok := s.cache.Get(availableModelsKey); ok {
		return cached.([]string)
	}

	res, err := s.client.Get(s.ollamaBaseURL + "/api/tags")
	if err != nil {
		s.log.Warn("settings", "model server unreachable, using fallback list", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackModels
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		s.log.Warn("settings", "model server returned error status", map[string]interface{}{
			"status": res.StatusCode,
		})
		return fallbackModels
	}

	var parsed ollamaTagsResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fallbackModels
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return fallbackModels
	}

	s.cache.Set(availableModelsKey, names, gocache.DefaultExpiration)
	return names
}
