// Package vectorstore implements the similarity index over one Chroma
// collection: embedding-aware insertion, approximate nearest-neighbor search
// with a manual exact-search fallback, and the admin operations re-ingestion
// needs.
package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github/itish2003/finsight/embedder"
	"github/itish2003/finsight/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
)

// Store wraps a single Chroma collection together with the embedding
// provider that populates it. One Store is constructed at startup and shared
// by every component that touches the index. Writes are serialized so a
// concurrent reader never observes a chunk whose embedding is still being
// written.
type Store struct {
	client     chromago.Client
	collection chromago.Collection
	embedder   embedder.Embedder
	name       string

	// smallCollection is the size at or below which the exact-search path is
	// taken outright: approximate indexes are unreliable on tiny, freshly
	// created collections, and exact search is cheap there.
	smallCollection int

	writeMu sync.Mutex
}

// New opens (or creates) the named collection and wraps it in a Store.
func New(ctx context.Context, client chromago.Client, name string, emb embedder.Embedder, smallCollection int) (*Store, error) {
	log.Printf("STORE: getting or creating collection %q", name)
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "finsight document collection"),
				chromago.NewStringAttribute("created_by", "vectorstore"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	return &Store{
		client:          client,
		collection:      collection,
		embedder:        emb,
		name:            name,
		smallCollection: smallCollection,
	}, nil
}

// Name returns the collection name. The retriever uses it as the cache scope.
func (s *Store) Name() string { return s.name }

// Count returns the number of chunks in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// Insert embeds and persists chunks, returning the ids actually written.
// Embedding runs as a batch first; a failed batch is salvaged per item so
// one oversized chunk does not sink the whole insert, with failures logged
// and skipped. Chunks that arrive with ids keep them and are upserted, so
// re-inserting the same set is idempotent.
func (s *Store) Insert(ctx context.Context, chunks []models.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	var (
		ids      []string
		docIDs   []chromago.DocumentID
		docTexts []string
		docEmbds []embeddings.Embedding
		docMetas []chromago.DocumentMetadata
		skipped  int
	)
	for i, ch := range chunks {
		if vectors[i] == nil {
			skipped++
			continue
		}
		id := ch.ID
		if id == "" {
			id = uuid.New().String()
		}
		ids = append(ids, id)
		docIDs = append(docIDs, chromago.DocumentID(id))
		docTexts = append(docTexts, ch.Text)
		docEmbds = append(docEmbds, embeddings.NewEmbeddingFromFloat32(vectors[i]))
		docMetas = append(docMetas, metadataFromMap(ch.Metadata))
	}
	if len(docIDs) == 0 {
		return nil, fmt.Errorf("%w: no chunks could be embedded", models.ErrEmbeddingUnavailable)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.collection.Upsert(ctx,
		chromago.WithIDs(docIDs...),
		chromago.WithTexts(docTexts...),
		chromago.WithEmbeddings(docEmbds...),
		chromago.WithMetadatas(docMetas...),
	)
	if err != nil {
		// One bad item can fail the whole batch; salvage per item.
		log.Printf("STORE: batch upsert failed (%v), retrying per item", err)
		ids = ids[:0]
		for i := range docIDs {
			itemErr := s.collection.Upsert(ctx,
				chromago.WithIDs(docIDs[i]),
				chromago.WithTexts(docTexts[i]),
				chromago.WithEmbeddings(docEmbds[i]),
				chromago.WithMetadatas(docMetas[i]),
			)
			if itemErr != nil {
				log.Printf("STORE: skipping chunk %s: upsert failed: %v", docIDs[i], itemErr)
				skipped++
				continue
			}
			ids = append(ids, string(docIDs[i]))
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("failed to insert any of %d chunks: %w", len(chunks), err)
		}
	}

	if skipped > 0 {
		log.Printf("STORE: inserted %d chunks into %q, skipped %d", len(ids), s.name, skipped)
	} else {
		log.Printf("STORE: inserted %d chunks into %q", len(ids), s.name)
	}
	return ids, nil
}

// embedAll embeds every text, salvaging what it can: a failed batch call is
// retried per item. The returned slice is index-aligned with texts; nil
// marks an item that could not be embedded.
func (s *Store) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if errors.Is(err, models.ErrQuotaOrAuth) || ctx.Err() != nil {
		return nil, err
	}
	log.Printf("STORE: batch embedding failed (%v), retrying per item", err)

	vectors = make([][]float32, len(texts))
	succeeded := 0
	for i, text := range texts {
		vec, embErr := embedder.EmbedWithRetry(ctx, s.embedder, text)
		if embErr != nil {
			if errors.Is(embErr, models.ErrQuotaOrAuth) {
				return nil, embErr
			}
			log.Printf("STORE: skipping chunk %d: embedding failed: %v", i, embErr)
			continue
		}
		vectors[i] = vec
		succeeded++
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("%w: all %d embedding calls failed", models.ErrEmbeddingUnavailable, len(texts))
	}
	return vectors, nil
}

// All returns every chunk in the collection, without embeddings.
func (s *Store) All(ctx context.Context) ([]models.Chunk, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	chunks := make([]models.Chunk, 0, len(ids))
	for i := range ids {
		chunk := models.Chunk{ID: string(ids[i])}
		if i < len(documents) {
			chunk.Text = documents[i].ContentString()
		}
		if i < len(metadatas) && metadatas[i] != nil {
			chunk.Metadata = metadataToMap(metadatas[i])
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Sample returns up to n chunks in insertion order, unranked, with a zero
// score. The retriever uses it as grounding of last resort when search
// itself is failing.
func (s *Store) Sample(ctx context.Context, n int) ([]models.RetrievalResult, error) {
	chunks, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sample collection: %w", err)
	}
	if len(chunks) == 0 {
		return nil, models.ErrCollectionEmpty
	}
	if n > 0 && len(chunks) > n {
		chunks = chunks[:n]
	}
	out := make([]models.RetrievalResult, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, models.RetrievalResult{Chunk: ch, Score: 0})
	}
	return out, nil
}

// Clear removes every document but keeps the collection itself, so the
// collection's identity survives a re-ingestion cycle.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	results, err := s.collection.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents for clear: %w", err)
	}
	ids := results.GetIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, chromago.WithIDsDelete(ids...)); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	log.Printf("STORE: cleared %d documents from %q", len(ids), s.name)
	return nil
}

// DeleteBySource removes every chunk whose source_file metadata matches
// path. Re-ingestion calls this before re-inserting a changed file.
func (s *Store) DeleteBySource(ctx context.Context, path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	where := chromago.EqString("source_file", path)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete documents for %s: %w", path, err)
	}
	return nil
}

// DeleteCollection drops the whole collection. The Store is unusable
// afterwards; callers rebuild it for re-ingestion from scratch.
func (s *Store) DeleteCollection(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.client.DeleteCollection(ctx, s.name); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", s.name, err)
	}
	log.Printf("STORE: deleted collection %q", s.name)
	return nil
}

// metadataToMap converts Chroma document metadata into a plain map. The
// metadata type exposes no accessor for all values at once, so it goes
// through a JSON round-trip.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	return metadataMap
}

// metadataFromMap converts a plain metadata map into the typed attribute
// form the Chroma client wants. Unsupported value types are stored in their
// string form.
func metadataFromMap(m map[string]interface{}) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, val))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(val)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, val))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(k, val))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(k, val))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(k, fmt.Sprintf("%v", val)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}
