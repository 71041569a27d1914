package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/furkantngr/ragchatbot/internal/model"
)

// Migrate prepares the schema both processes share: the pgvector
// extension, the vector index tables, and the audit tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector extension: %w", err)
	}
	return db.AutoMigrate(
		&model.Collection{},
		&model.ChunkEmbedding{},
		&model.ConversationLog{},
		&model.AdminLog{},
	)
}
