package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github/itish2003/finsight/embedder"
	"github/itish2003/finsight/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// errNoUsableResults marks an indexed query that answered but produced
// nothing worth ranking; the exact path gets the final word.
var errNoUsableResults = errors.New("indexed search returned no usable results")

// entry is one stored chunk with its embedding, loaded for exact search.
type entry struct {
	chunk  models.Chunk
	vector []float32
}

// Search embeds the query and returns the top-k nearest chunks by cosine
// similarity. The approximate index serves the common case; the manual
// exact-search path takes over when the collection is tiny, when the index
// errors, or when it returns nothing usable. An empty collection returns
// ErrCollectionEmpty.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count collection before search: %w", err)
	}
	if count == 0 {
		return nil, models.ErrCollectionEmpty
	}

	queryVec, err := embedder.EmbedWithRetry(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if count <= s.smallCollection {
		return s.searchExact(ctx, queryVec, k)
	}

	results, err := s.searchIndexed(ctx, queryVec, k)
	if err != nil {
		log.Printf("STORE: indexed search failed (%v), falling back to exact search", err)
		return s.searchExact(ctx, queryVec, k)
	}
	return results, nil
}

// searchIndexed runs the approximate nearest-neighbor query against the
// Chroma index and converts cosine distances back into similarities.
func (s *Store) searchIndexed(ctx context.Context, queryVec []float32, k int) ([]models.RetrievalResult, error) {
	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(queryVec)),
		chromago.WithNResults(k),
		// The v2 client exports no constant for the distances projection,
		// but the server accepts it and the result carries distance groups.
		chromago.WithIncludeQuery(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.Include("distances")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()

	if len(documentGroups) == 0 || len(documentGroups[0]) == 0 {
		return nil, errNoUsableResults
	}

	out := make([]models.RetrievalResult, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		score := 0.0
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			// Chroma reports cosine distance; similarity is its complement.
			score = 1 - float64(distanceGroups[0][i])
		}
		chunk := models.Chunk{Text: doc.ContentString()}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			chunk.ID = string(idGroups[0][i])
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			chunk.Metadata = metadataToMap(metadataGroups[0][i])
		}
		out = append(out, models.RetrievalResult{Chunk: chunk, Score: score})
	}
	if len(out) == 0 {
		return nil, errNoUsableResults
	}
	return out, nil
}

// searchExact is the manual fallback path: load every stored (embedding,
// chunk) pair, score them against the query in process, sort descending and
// return the top k. Chunks whose stored embedding is missing are re-embedded
// from their raw text (one retry) and skipped only if that also fails.
func (s *Store) searchExact(ctx context.Context, queryVec []float32, k int) ([]models.RetrievalResult, error) {
	entries, err := s.loadAllWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection for exact search: %w", err)
	}
	if len(entries) == 0 {
		return nil, models.ErrCollectionEmpty
	}

	vectors := make([][]float32, len(entries))
	for i := range entries {
		vec := entries[i].vector
		if len(vec) == 0 {
			recomputed, embErr := embedder.EmbedWithRetry(ctx, s.embedder, entries[i].chunk.Text)
			if embErr != nil {
				log.Printf("STORE: skipping chunk %s in exact search: re-embedding failed: %v", entries[i].chunk.ID, embErr)
				continue
			}
			vec = recomputed
		}
		vectors[i] = vec
	}

	ranked := rankBySimilarity(queryVec, vectors, k)
	out := make([]models.RetrievalResult, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, models.RetrievalResult{Chunk: entries[c.idx].chunk, Score: c.score})
	}
	return out, nil
}

// loadAllWithEmbeddings fetches every document together with its stored
// embedding for the exact-search path.
func (s *Store) loadAllWithEmbeddings(ctx context.Context) ([]entry, error) {
	results, err := s.collection.Get(ctx,
		chromago.WithIncludeGet(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.IncludeEmbeddings),
	)
	if err != nil {
		return nil, err
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()
	embeds := results.GetEmbeddings()

	entries := make([]entry, 0, len(ids))
	for i := range ids {
		e := entry{chunk: models.Chunk{ID: string(ids[i])}}
		if i < len(documents) {
			e.chunk.Text = documents[i].ContentString()
		}
		if i < len(metadatas) && metadatas[i] != nil {
			e.chunk.Metadata = metadataToMap(metadatas[i])
		}
		if i < len(embeds) && embeds[i] != nil {
			e.vector = embeds[i].ContentAsFloat32()
		}
		entries = append(entries, e)
	}
	return entries, nil
}
