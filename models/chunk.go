package models

// Chunk is a single unit of ingested text together with its provenance
// metadata (source file, page or chunk number, content hash). Chunks are
// immutable once inserted into the vector store; re-ingestion deletes and
// re-inserts them as a set.
type Chunk struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RetrievalResult pairs a chunk with its similarity score for one query.
// Result lists are ordered by descending score.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// SourceDocument represents a chunk of text and its origin, as surfaced to
// API callers alongside an answer.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
