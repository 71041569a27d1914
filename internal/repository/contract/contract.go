package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/furkantngr/ragchatbot/internal/entity"
)

// ScoredChunk pairs a stored record with its cosine similarity to a
// query vector.
type ScoredChunk struct {
	Chunk      *entity.ChunkEmbedding
	Similarity float64
}

type ChunkEmbeddingRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.ChunkEmbedding) error
	SearchSimilar(ctx context.Context, collectionId uuid.UUID, embedding []float32, limit int) ([]*ScoredChunk, error)
	Count(ctx context.Context, collectionId uuid.UUID) (int64, error)
	DeleteBySource(ctx context.Context, collectionId uuid.UUID, source string) error
}

type CollectionRepository interface {
	FindByName(ctx context.Context, name string) (*entity.Collection, error)
	Create(ctx context.Context, collection *entity.Collection) error
}

type LogRepository interface {
	CreateConversation(ctx context.Context, log *entity.ConversationLog) error
	CreateAdminAction(ctx context.Context, log *entity.AdminLog) error
	ListAdminActions(ctx context.Context, limit int) ([]*entity.AdminLog, error)
}
