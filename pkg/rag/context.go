package rag

import (
	"context"
	"fmt"
	"strings"
)

const (
	linkBlockHeader = "[ACCESS LINKS FOUND BY THE SYSTEM]:"
	linkBlockFooter = "(Answer the user by giving them this link.)"
)

// assembleContext builds the single context string the prompt template
// renders: retrieved chunk texts joined by blank lines, most similar
// first, followed by a delimited link block when the query mentions a
// known application keyword.
func (e *Engine) assembleContext(ctx context.Context, s *Session, query string) (string, error) {
	results, err := s.store.Search(ctx, query, s.topK)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(results))
	sources := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
		sources[i] = r.Source
	}
	pdfContext := strings.Join(texts, "\n\n")

	matched := e.deps.Links.Match(query)

	e.deps.Log.Debug("rag", "context assembled", map[string]interface{}{
		"query":   query,
		"sources": sources,
		"links":   len(matched),
	})

	if len(matched) == 0 {
		return pdfContext, nil
	}

	var sb strings.Builder
	sb.WriteString(pdfContext)
	sb.WriteString("\n\n")
	sb.WriteString(linkBlockHeader)
	sb.WriteString("\n")
	for _, l := range matched {
		sb.WriteString(fmt.Sprintf("- %s access link: %s\n", strings.ToUpper(l.Keyword), l.URL))
	}
	sb.WriteString(linkBlockFooter)
	sb.WriteString("\n")
	return sb.String(), nil
}
