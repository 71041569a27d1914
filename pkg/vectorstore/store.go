package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/internal/repository/contract"
	"github.com/furkantngr/ragchatbot/pkg/embedding"
	"github.com/furkantngr/ragchatbot/pkg/pdfloader"
	"github.com/furkantngr/ragchatbot/pkg/textsplit"
)

// DefaultCollection is the single index this system uses. The design
// deliberately supports one embedding model per collection, never a mix.
const DefaultCollection = "documents"

// DefaultDimensions matches the vector(1024) column and the bge-m3
// embedding size.
const DefaultDimensions = 1024

// ErrEmbeddingModelMismatch is returned when an existing collection was
// built by a different embedding model than the one configured now.
// Mixing embeddings from two models in one index is undefined behavior,
// so opening such a store is refused outright.
var ErrEmbeddingModelMismatch = fmt.Errorf("vectorstore: collection was built with a different embedding model")

// ErrDimensionsMismatch is returned when an existing collection records
// a different vector dimensionality than the one configured now.
var ErrDimensionsMismatch = fmt.Errorf("vectorstore: collection was built with a different vector dimensionality")

// SearchResult is one retrieved record, most similar first.
type SearchResult struct {
	Text       string
	Source     string
	Page       int
	Similarity float64
}

// Store is the persistent similarity index over document chunks.
type Store interface {
	Add(ctx context.Context, chunks []textsplit.Chunk) (int, error)
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)
	Count(ctx context.Context) (int64, error)
	DeleteSource(ctx context.Context, source string) error
}

// PGStore implements Store on Postgres + pgvector.
type PGStore struct {
	chunks     contract.ChunkEmbeddingRepository
	embedder   embedding.Provider
	collection *entity.Collection
	dims       int
	log        logger.ILogger
	writeMu    sync.Mutex
}

var _ Store = &PGStore{}

// OpenParams carries everything Open needs to load or bootstrap the
// index.
type OpenParams struct {
	Chunks      contract.ChunkEmbeddingRepository
	Collections contract.CollectionRepository
	Embedder    embedding.Provider
	Loader      *pdfloader.Loader
	Splitter    *textsplit.RecursiveSplitter
	LivePath    string
	// Dimensions is the vector size the embedding model produces.
	// Recorded on the collection at creation and required to match on
	// every later open. Zero means DefaultDimensions.
	Dimensions int
	Logger     logger.ILogger
}

// Open loads the persisted index, or bootstraps it from the live
// document directory when none exists yet. An empty directory yields an
// empty (but persisted) index rather than a failure. An existing index
// recorded under a different embedding model is rejected.
func Open(ctx context.Context, p OpenParams) (*PGStore, error) {
	if p.Dimensions <= 0 {
		p.Dimensions = DefaultDimensions
	}

	col, err := p.Collections.FindByName(ctx, DefaultCollection)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	if col != nil {
		if col.EmbeddingModel != p.Embedder.Model() {
			return nil, fmt.Errorf("%w: store has %q, configured %q",
				ErrEmbeddingModelMismatch, col.EmbeddingModel, p.Embedder.Model())
		}
		if col.Dimensions != p.Dimensions {
			return nil, fmt.Errorf("%w: store has %d, configured %d",
				ErrDimensionsMismatch, col.Dimensions, p.Dimensions)
		}
		return &PGStore{
			chunks:     p.Chunks,
			embedder:   p.Embedder,
			collection: col,
			dims:       p.Dimensions,
			log:        p.Logger,
		}, nil
	}

	// First run: persist the collection identity, then index whatever
	// the live directory holds.
	col = &entity.Collection{
		Id:             uuid.New(),
		Name:           DefaultCollection,
		EmbeddingModel: p.Embedder.Model(),
		Dimensions:     p.Dimensions,
	}
	if err := p.Collections.Create(ctx, col); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	store := &PGStore{
		chunks:     p.Chunks,
		embedder:   p.Embedder,
		collection: col,
		dims:       p.Dimensions,
		log:        p.Logger,
	}

	units, err := p.Loader.LoadDirectory(p.LivePath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap corpus scan: %w", err)
	}
	if len(units) == 0 {
		p.Logger.Warn("vectorstore", "no readable PDFs in live directory, starting with empty index", map[string]interface{}{
			"path": p.LivePath,
		})
		return store, nil
	}

	added, err := store.Add(ctx, p.Splitter.Split(units))
	if err != nil {
		return nil, fmt.Errorf("bootstrap index: %w", err)
	}
	p.Logger.Info("vectorstore", "bootstrapped index from live directory", map[string]interface{}{
		"path":   p.LivePath,
		"chunks": added,
	})
	return store, nil
}

// Add embeds the chunks and appends them to the persisted index.
// Writers are serialized; searches are not blocked.
func (s *PGStore) Add(ctx context.Context, chunks []textsplit.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, vec := range vectors {
		if len(vec) != s.dims {
			return 0, fmt.Errorf("%w: embedder produced %d values for chunk %d, collection holds %d",
				ErrDimensionsMismatch, len(vec), i, s.dims)
		}
	}

	records := make([]*entity.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		records[i] = &entity.ChunkEmbedding{
			Id:           uuid.New(),
			Document:     c.Content,
			Embedding:    vectors[i],
			Source:       c.Source,
			Page:         c.Page,
			CollectionId: s.collection.Id,
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.chunks.CreateBulk(ctx, records); err != nil {
		return 0, fmt.Errorf("persist chunks: %w", err)
	}
	s.log.Debug("vectorstore", "appended chunks to index", map[string]interface{}{
		"chunks": len(records),
	})
	return len(records), nil
}

// Search embeds the query and returns the k nearest records by cosine
// similarity, most similar first.
func (s *PGStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.chunks.SearchSimilar(ctx, s.collection.Id, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, len(scored))
	for i, sc := range scored {
		results[i] = SearchResult{
			Text:       sc.Chunk.Document,
			Source:     sc.Chunk.Source,
			Page:       sc.Chunk.Page,
			Similarity: sc.Similarity,
		}
	}
	return results, nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	return s.chunks.Count(ctx, s.collection.Id)
}

// DeleteSource drops every chunk indexed from one source file. Used
// when a document is taken out of publication.
func (s *PGStore) DeleteSource(ctx context.Context, source string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.chunks.DeleteBySource(ctx, s.collection.Id, source)
}
