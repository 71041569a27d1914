package embedding

import "context"

// Provider turns text into dense vectors. Implementations must return
// one unit-length vector per input, in input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Model identifies the embedding model. A vector store is bound to
	// exactly one model identity for its whole lifetime.
	Model() string
}
