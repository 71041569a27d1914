package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/furkantngr/ragchatbot/pkg/llm"
)

type OllamaProvider struct {
	baseURL   string
	modelName string
	options   llm.Options
	client    *http.Client
}

var _ llm.Provider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string, opts ...llm.Option) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	options := llm.Options{
		Temperature: 0.1,
		NumCtx:      4096,
		NumThread:   8,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &OllamaProvider{
		baseURL:   baseURL,
		modelName: modelName,
		options:   options,
		client: &http.Client{
			// Ollama can be slow on first request due to model loading.
			Timeout: 300 * time.Second,
		},
	}
}

func (o *OllamaProvider) Model() string { return o.modelName }

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	NumThread   int     `json:"num_thread,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs a non-streaming completion and returns the model output
// verbatim.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  o.modelName,
		Prompt: prompt,
		Stream: false,
		Options: &ollamaOptions{
			Temperature: o.options.Temperature,
			NumCtx:      o.options.NumCtx,
			NumThread:   o.options.NumThread,
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewBuffer(payloadJSON))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error: status %d, body: %s", res.StatusCode, string(resBody))
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return parsed.Response, nil
}
