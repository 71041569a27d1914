package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
)

// Mode selects which prompt template, and therefore which answering
// style, a request uses.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeThinking Mode = "thinking"
)

// ParseMode maps arbitrary client input onto a known mode. Anything
// unrecognized falls back to fast.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeThinking)) {
		return ModeThinking
	}
	return ModeFast
}

// DefaultFast answers tersely from context alone.
const DefaultFast = `You are a corporate assistant. Your only task is to provide information.
Use only the information in the 'Context' below.
Start the answer directly. Be short, clear and to the point.

Context: {context}
Question: {question}
Answer:`

// DefaultThinking analyzes the context before answering.
const DefaultThinking = `You are a senior analyst and corporate advisor.
Your task:
1. Analyze the 'Context' information below in detail.
2. Before answering, relate the information in the context to the question.
3. Think step by step and give a detailed, comprehensive explanation.
4. If there are procedures, explain them item by item.

Context (Documents):
{context}

Question:
{question}

Detailed Analysis and Answer:`

// Store loads and persists the per-mode prompt templates. A missing or
// empty file resolves to the hardcoded default, which is written back
// so the admin surface never shows an empty template.
type Store struct {
	fastPath     string
	thinkingPath string
	log          logger.ILogger
}

func NewStore(fastPath, thinkingPath string, log logger.ILogger) *Store {
	return &Store{
		fastPath:     fastPath,
		thinkingPath: thinkingPath,
		log:          log,
	}
}

func (s *Store) pathFor(mode Mode) string {
	if mode == ModeThinking {
		return s.thinkingPath
	}
	return s.fastPath
}

func defaultFor(mode Mode) string {
	if mode == ModeThinking {
		return DefaultThinking
	}
	return DefaultFast
}

// Load reads the template for mode, seeding the default on first use.
func (s *Store) Load(mode Mode) string {
	path := s.pathFor(mode)

	data, err := os.ReadFile(path)
	if err == nil {
		if content := strings.TrimSpace(string(data)); content != "" {
			return content
		}
	} else if !os.IsNotExist(err) {
		s.log.Warn("prompt", "could not read prompt file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	text := defaultFor(mode)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		s.log.Warn("prompt", "could not seed default prompt", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	return text
}

// Save overwrites the template for mode. It does not reinitialize any
// session; the caller triggers that so the edit takes effect.
func (s *Store) Save(mode Mode, text string) error {
	if err := os.WriteFile(s.pathFor(mode), []byte(text), 0o644); err != nil {
		return fmt.Errorf("save %s prompt: %w", mode, err)
	}
	return nil
}

// Render substitutes the two template placeholders.
func Render(template, context, question string) string {
	r := strings.NewReplacer(
		"{context}", context,
		"{question}", question,
	)
	return r.Replace(template)
}
