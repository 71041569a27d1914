package rag

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/pkg/embedding"
	"github.com/furkantngr/ragchatbot/pkg/links"
	"github.com/furkantngr/ragchatbot/pkg/llm"
	"github.com/furkantngr/ragchatbot/pkg/pdfloader"
	"github.com/furkantngr/ragchatbot/pkg/rag/prompt"
	"github.com/furkantngr/ragchatbot/pkg/textsplit"
	"github.com/furkantngr/ragchatbot/pkg/vectorstore"
)

// NotReadyMessage is the user-visible reply while no session is
// published yet. A not-ready system is not an error condition.
const NotReadyMessage = "The system is getting ready, please try again in a moment..."

// SettingsSource yields the currently selected chat model.
type SettingsSource interface {
	ActiveModel() string
}

// PromptSource yields the template for a mode, seeding defaults.
type PromptSource interface {
	Load(mode prompt.Mode) string
}

// Deps wires the engine to its collaborators. The factory fields exist
// because Initialize constructs fresh backends every time it runs: that
// is the one mechanism that picks up a changed model, edited prompts,
// or a rebuilt index.
type Deps struct {
	Settings SettingsSource
	Prompts  PromptSource
	Links    *links.Annotator
	Splitter *textsplit.RecursiveSplitter
	TopK     int
	Log      logger.ILogger

	NewEmbedder func() embedding.Provider
	OpenStore   func(ctx context.Context, embedder embedding.Provider) (vectorstore.Store, error)
	NewLLM      func(model string) llm.Provider
	LoadFile    func(path string) []pdfloader.TextUnit
}

// Session is one immutable snapshot of everything needed to answer:
// embedder, open store, both prompt templates, the generation backend
// bound to the active model. It is built fully aside and then published
// in one atomic swap, so concurrent readers never observe a half-built
// session.
type Session struct {
	embedder       embedding.Provider
	store          vectorstore.Store
	topK           int
	promptFast     string
	promptThinking string
	model          string
	llm            llm.Provider
}

func (s *Session) promptFor(mode prompt.Mode) string {
	if mode == prompt.ModeThinking {
		return s.promptThinking
	}
	return s.promptFast
}

// Engine owns the process-wide session handle.
type Engine struct {
	deps    Deps
	initMu  sync.Mutex
	session atomic.Pointer[Session]
}

func NewEngine(deps Deps) *Engine {
	if deps.TopK <= 0 {
		deps.TopK = 4
	}
	return &Engine{deps: deps}
}

// Initialize builds a complete new session and publishes it. Safe to
// call repeatedly; concurrent calls are serialized, and in-flight
// answers keep using the previous session until the swap.
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	model := e.deps.Settings.ActiveModel()
	e.deps.Log.Info("rag", "initializing session", map[string]interface{}{
		"model": model,
	})

	embedder := e.deps.NewEmbedder()
	store, err := e.deps.OpenStore(ctx, embedder)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}

	next := &Session{
		embedder:       embedder,
		store:          store,
		topK:           e.deps.TopK,
		promptFast:     e.deps.Prompts.Load(prompt.ModeFast),
		promptThinking: e.deps.Prompts.Load(prompt.ModeThinking),
		model:          model,
		llm:            e.deps.NewLLM(model),
	}

	e.session.Store(next)
	e.deps.Log.Info("rag", "session ready", map[string]interface{}{
		"model": model,
		"top_k": next.topK,
	})
	return nil
}

// Ready reports whether a session has been published.
func (e *Engine) Ready() bool {
	return e.session.Load() != nil
}

// ActiveModel returns the model the current session generates with.
func (e *Engine) ActiveModel() string {
	if s := e.session.Load(); s != nil {
		return s.model
	}
	return ""
}

// Store exposes the currently open index, or nil before the first
// Initialize. Ingestion and unpublish act on this same open instance.
func (e *Engine) Store() vectorstore.Store {
	if s := e.session.Load(); s != nil {
		return s.store
	}
	return nil
}

// Answer runs the mode's chain: assemble context, render the template,
// invoke the generation backend. A backend failure propagates; there is
// no sensible default answer text.
func (e *Engine) Answer(ctx context.Context, query string, mode prompt.Mode) (string, error) {
	s := e.session.Load()
	if s == nil {
		return NotReadyMessage, nil
	}

	contextText, err := e.assembleContext(ctx, s, query)
	if err != nil {
		return "", fmt.Errorf("assemble context: %w", err)
	}

	rendered := prompt.Render(s.promptFor(mode), contextText, query)
	answer, err := s.llm.Generate(ctx, rendered)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// Ingest indexes one approved document into the open store. It reports
// whether any chunks were added. Prompts and the generation backend are
// not refreshed here; callers needing that also call Initialize.
func (e *Engine) Ingest(ctx context.Context, path string) (bool, error) {
	if !e.Ready() {
		if err := e.Initialize(ctx); err != nil {
			return false, err
		}
	}
	s := e.session.Load()

	units := e.deps.LoadFile(path)
	if len(units) == 0 {
		return false, nil
	}

	added, err := s.store.Add(ctx, e.deps.Splitter.Split(units))
	if err != nil {
		return false, fmt.Errorf("ingest %s: %w", path, err)
	}
	e.deps.Log.Info("rag", "document ingested", map[string]interface{}{
		"file":   units[0].Source,
		"chunks": added,
	})
	return added > 0, nil
}
