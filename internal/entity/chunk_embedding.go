package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkEmbedding is the domain view of one stored vector record.
type ChunkEmbedding struct {
	Id           uuid.UUID
	Document     string
	Embedding    []float32
	Source       string
	Page         int
	CollectionId uuid.UUID
	CreatedAt    time.Time
}

// Collection is the domain view of a vector index and the embedding
// model identity bound to it.
type Collection struct {
	Id             uuid.UUID
	Name           string
	EmbeddingModel string
	Dimensions     int
	CreatedAt      time.Time
}
