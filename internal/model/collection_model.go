package model

import (
	"time"

	"github.com/google/uuid"
)

// Collection binds a vector index to the embedding model that produced
// its vectors. One collection is owned by exactly one embedding model
// identity for its whole lifetime.
type Collection struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"type:text;not null;uniqueIndex"`
	EmbeddingModel string    `gorm:"type:text;not null"`
	Dimensions     int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Collection) TableName() string {
	return "vector_collections"
}
