// Package retriever composes the vector store, a TTL'd LRU cache and a
// dynamic parameter policy into the context-retrieval step: question in,
// bounded scored result set out, plus the context-assembly formatting the
// generation step consumes.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github/itish2003/finsight/config"
	"github/itish2003/finsight/models"
)

// Index is the slice of the vector store the retriever depends on.
type Index interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error)
	Sample(ctx context.Context, n int) ([]models.RetrievalResult, error)
	Name() string
}

// Confidence levels assigned outside normal scoring: a cache hit was already
// validated once, a sampled result set was never ranked at all.
const (
	CachedConfidence  = 0.95
	SampledConfidence = 0.10
)

// Retrieval is the outcome of one retrieve call.
type Retrieval struct {
	Results    []models.RetrievalResult
	Confidence float64
	CacheHit   bool
	Sampled    bool
}

// Retriever answers "what context supports this question" with a bounded,
// scored result set.
type Retriever struct {
	index Index
	cache *resultCache
	cfg   config.RetrievalConfig
	ttl   time.Duration
}

// New builds a Retriever over the given index.
func New(index Index, cfg config.RetrievalConfig, ttl time.Duration) *Retriever {
	return &Retriever{
		index: index,
		cache: newResultCache(cfg.CacheSize),
		cfg:   cfg,
		ttl:   ttl,
	}
}

// Retrieve returns ranked context for a query plus a scalar confidence in
// [0,1]. Long queries widen the result count; low top-score confidence
// shrinks the result set instead of rejecting it, biasing generation toward
// an honest "not found" rather than weak-context hallucination. A failing
// index degrades to an unranked sample tagged with a low confidence.
// ErrCollectionEmpty passes through untouched: it means "no knowledge yet".
func (r *Retriever) Retrieve(ctx context.Context, query string) (Retrieval, error) {
	k := r.cfg.BaseResultCount
	if estimateTokens(query) > r.cfg.LongQueryTokenThreshold {
		// Longer, more specific questions benefit from a wider initial net.
		k = r.cfg.MaxResultCount
	}

	scope := r.index.Name()
	if cached, ok := r.cache.get(query, scope); ok {
		log.Printf("RETRIEVER: cache hit in scope %q", scope)
		return Retrieval{Results: cached, Confidence: CachedConfidence, CacheHit: true}, nil
	}

	results, err := r.index.Search(ctx, query, k)
	if err != nil {
		if errors.Is(err, models.ErrCollectionEmpty) {
			return Retrieval{}, err
		}
		// Search itself is failing; an unranked sample still grounds the
		// generation step, at the cost of relevance.
		log.Printf("RETRIEVER: search failed (%v), falling back to unranked sample", err)
		sampled, sampleErr := r.index.Sample(ctx, k)
		if sampleErr != nil {
			return Retrieval{}, fmt.Errorf("search failed with no sample fallback available: %w", err)
		}
		return Retrieval{Results: sampled, Confidence: SampledConfidence, Sampled: true}, nil
	}
	if len(results) == 0 {
		return Retrieval{}, nil
	}

	confidence := clamp01(results[0].Score)
	if confidence < r.cfg.ConfidenceThreshold {
		keep := int(math.Ceil(float64(len(results)) * r.cfg.LowConfidenceKeepRatio))
		if keep < 1 {
			keep = 1
		}
		if keep < len(results) {
			log.Printf("RETRIEVER: confidence %.3f below threshold %.3f, keeping %d of %d results",
				confidence, r.cfg.ConfidenceThreshold, keep, len(results))
			results = results[:keep]
		}
	}

	r.cache.put(query, scope, results, r.ttl)
	return Retrieval{Results: results, Confidence: confidence}, nil
}

// Invalidate drops every cached retrieval. Ingestion calls this after any
// collection mutation so stale results never outlive their chunks.
func (r *Retriever) Invalidate() {
	r.cache.purge()
	log.Printf("RETRIEVER: cache invalidated")
}

// estimateTokens approximates the token count of text at four characters per
// token, close enough for the long-query policy switch.
func estimateTokens(text string) int {
	return len(text) / 4
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
