package mapper

import (
	"github.com/pgvector/pgvector-go"

	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/model"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToModel(e *entity.ChunkEmbedding) *model.ChunkEmbedding {
	return &model.ChunkEmbedding{
		Id:           e.Id,
		Document:     e.Document,
		Embedding:    pgvector.NewVector(e.Embedding),
		Source:       e.Source,
		Page:         e.Page,
		CollectionId: e.CollectionId,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *ChunkEmbeddingMapper) ToEntity(mo *model.ChunkEmbedding) *entity.ChunkEmbedding {
	return &entity.ChunkEmbedding{
		Id:           mo.Id,
		Document:     mo.Document,
		Embedding:    mo.Embedding.Slice(),
		Source:       mo.Source,
		Page:         mo.Page,
		CollectionId: mo.CollectionId,
		CreatedAt:    mo.CreatedAt,
	}
}

func (m *ChunkEmbeddingMapper) CollectionToEntity(mo *model.Collection) *entity.Collection {
	return &entity.Collection{
		Id:             mo.Id,
		Name:           mo.Name,
		EmbeddingModel: mo.EmbeddingModel,
		Dimensions:     mo.Dimensions,
		CreatedAt:      mo.CreatedAt,
	}
}

func (m *ChunkEmbeddingMapper) CollectionToModel(e *entity.Collection) *model.Collection {
	return &model.Collection{
		Id:             e.Id,
		Name:           e.Name,
		EmbeddingModel: e.EmbeddingModel,
		Dimensions:     e.Dimensions,
		CreatedAt:      e.CreatedAt,
	}
}
