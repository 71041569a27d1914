package vectorstore

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/internal/repository/contract"
	"github.com/furkantngr/ragchatbot/pkg/pdfloader"
	"github.com/furkantngr/ragchatbot/pkg/textsplit"
)

// hashEmbedder produces a deterministic unit vector per input so equal
// texts always land on the same point.
type hashEmbedder struct{ model string }

func (h hashEmbedder) Model() string { return h.model }

func (h hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 4)
		for j, r := range strings.ToLower(text) {
			vec[j%4] += float32(r%13) / 13
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			vec[0] = 1
		} else {
			scale := 1 / math.Sqrt(norm)
			for j := range vec {
				vec[j] = float32(float64(vec[j]) * scale)
			}
		}
		out[i] = vec
	}
	return out, nil
}

type memChunkRepo struct {
	records []*entity.ChunkEmbedding
}

func (m *memChunkRepo) CreateBulk(_ context.Context, chunks []*entity.ChunkEmbedding) error {
	m.records = append(m.records, chunks...)
	return nil
}

func (m *memChunkRepo) SearchSimilar(_ context.Context, collectionId uuid.UUID, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	var scored []*contract.ScoredChunk
	for _, rec := range m.records {
		if rec.CollectionId != collectionId {
			continue
		}
		var dot float64
		for i := range embedding {
			if i < len(rec.Embedding) {
				dot += float64(embedding[i]) * float64(rec.Embedding[i])
			}
		}
		scored = append(scored, &contract.ScoredChunk{Chunk: rec, Similarity: dot})
	}
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].Similarity > scored[j-1].Similarity; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (m *memChunkRepo) Count(_ context.Context, collectionId uuid.UUID) (int64, error) {
	var n int64
	for _, rec := range m.records {
		if rec.CollectionId == collectionId {
			n++
		}
	}
	return n, nil
}

func (m *memChunkRepo) DeleteBySource(_ context.Context, collectionId uuid.UUID, source string) error {
	var kept []*entity.ChunkEmbedding
	for _, rec := range m.records {
		if rec.CollectionId == collectionId && rec.Source == source {
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return nil
}

type memCollectionRepo struct {
	collections []*entity.Collection
}

func (m *memCollectionRepo) FindByName(_ context.Context, name string) (*entity.Collection, error) {
	for _, c := range m.collections {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCollectionRepo) Create(_ context.Context, collection *entity.Collection) error {
	m.collections = append(m.collections, collection)
	return nil
}

func openParams(t *testing.T, chunks *memChunkRepo, cols *memCollectionRepo, model, livePath string) OpenParams {
	t.Helper()
	return OpenParams{
		Chunks:      chunks,
		Collections: cols,
		Embedder:    hashEmbedder{model: model},
		Loader:      pdfloader.NewLoader(logger.NewNopLogger()),
		Splitter:    textsplit.NewRecursiveSplitter(1024, 200),
		LivePath:    livePath,
		Dimensions:  4, // hashEmbedder emits 4-value vectors
		Logger:      logger.NewNopLogger(),
	}
}

func TestOpenBootstrapsEmptyDirectory(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	store, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatalf("Open() on empty directory error = %v", err)
	}

	// The collection identity is persisted even with nothing to index.
	if len(cols.collections) != 1 {
		t.Fatalf("persisted %d collections, want 1", len(cols.collections))
	}
	if cols.collections[0].Name != DefaultCollection {
		t.Errorf("collection name = %q, want %q", cols.collections[0].Name, DefaultCollection)
	}
	if cols.collections[0].EmbeddingModel != "bge-m3" {
		t.Errorf("collection model = %q, want bge-m3", cols.collections[0].EmbeddingModel)
	}
	if cols.collections[0].Dimensions != 4 {
		t.Errorf("collection dimensions = %d, want 4", cols.collections[0].Dimensions)
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	results, err := store.Search(context.Background(), "anything", 4)
	if err != nil {
		t.Fatalf("Search() on empty store error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty store = %d results, want 0", len(results))
	}
}

func TestOpenReusesExistingCollection(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	first, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Add(context.Background(), []textsplit.Chunk{
		{Content: "persisted across opens", Source: "a.pdf", Page: 1},
	}); err != nil {
		t.Fatal(err)
	}

	second, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if len(cols.collections) != 1 {
		t.Fatalf("second Open() created a duplicate collection, have %d", len(cols.collections))
	}

	n, err := second.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}

func TestOpenRejectsModelMismatch(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	if _, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir())); err != nil {
		t.Fatal(err)
	}

	_, err := Open(context.Background(), openParams(t, chunks, cols, "nomic-embed-text", t.TempDir()))
	if !errors.Is(err, ErrEmbeddingModelMismatch) {
		t.Fatalf("Open() with other model error = %v, want ErrEmbeddingModelMismatch", err)
	}
}

func TestOpenRejectsDimensionsMismatch(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	if _, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir())); err != nil {
		t.Fatal(err)
	}

	p := openParams(t, chunks, cols, "bge-m3", t.TempDir())
	p.Dimensions = 8
	_, err := Open(context.Background(), p)
	if !errors.Is(err, ErrDimensionsMismatch) {
		t.Fatalf("Open() with other dimensionality error = %v, want ErrDimensionsMismatch", err)
	}
}

func TestAddRejectsWrongVectorSize(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	p := openParams(t, chunks, cols, "bge-m3", t.TempDir())
	p.Dimensions = 8 // collection claims 8, hashEmbedder emits 4
	store, err := Open(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Add(context.Background(), []textsplit.Chunk{
		{Content: "mis-sized vector", Source: "a.pdf", Page: 1},
	})
	if !errors.Is(err, ErrDimensionsMismatch) {
		t.Fatalf("Add() with wrong vector size error = %v, want ErrDimensionsMismatch", err)
	}
	if len(chunks.records) != 0 {
		t.Error("mis-sized vectors were persisted")
	}
}

func TestAddThenSearch(t *testing.T) {
	chunks := &memChunkRepo{}
	cols := &memCollectionRepo{}

	store, err := Open(context.Background(), openParams(t, chunks, cols, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	added, err := store.Add(context.Background(), []textsplit.Chunk{
		{Content: "Annual leave policy for employees", Source: "hr.pdf", Page: 3},
		{Content: "Quarterly revenue figures and targets", Source: "finance.pdf", Page: 7},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added != 2 {
		t.Fatalf("Add() = %d, want 2", added)
	}

	results, err := store.Search(context.Background(), "Annual leave policy for employees", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	// The identical text embeds to the identical point, so it must win.
	if results[0].Text != "Annual leave policy for employees" {
		t.Errorf("Search() top result = %q, want the matching chunk", results[0].Text)
	}
	if results[0].Source != "hr.pdf" || results[0].Page != 3 {
		t.Errorf("Search() top result metadata = %q page %d, want hr.pdf page 3", results[0].Source, results[0].Page)
	}
}

func TestAddEmpty(t *testing.T) {
	store, err := Open(context.Background(), openParams(t, &memChunkRepo{}, &memCollectionRepo{}, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	added, err := store.Add(context.Background(), nil)
	if err != nil {
		t.Fatalf("Add(nil) error = %v", err)
	}
	if added != 0 {
		t.Errorf("Add(nil) = %d, want 0", added)
	}
}

func TestDeleteSource(t *testing.T) {
	chunks := &memChunkRepo{}
	store, err := Open(context.Background(), openParams(t, chunks, &memCollectionRepo{}, "bge-m3", t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Add(context.Background(), []textsplit.Chunk{
		{Content: "kept", Source: "keep.pdf", Page: 1},
		{Content: "removed one", Source: "unpublished.pdf", Page: 1},
		{Content: "removed two", Source: "unpublished.pdf", Page: 2},
	}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteSource(context.Background(), "unpublished.pdf"); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() after delete = %d, want 1", n)
	}
	for _, rec := range chunks.records {
		if rec.Source == "unpublished.pdf" {
			t.Error("unpublished source survived DeleteSource")
		}
	}
}
