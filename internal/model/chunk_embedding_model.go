package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChunkEmbedding struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Document     string          `gorm:"type:text"`
	Embedding    pgvector.Vector `gorm:"type:vector(1024)"` // bge-m3 uses 1024 dimensions
	Source       string          `gorm:"type:text;not null;index"`
	Page         int             `gorm:"default:1"`
	CollectionId uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
