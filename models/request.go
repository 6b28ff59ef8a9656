package models

type QueryRequest struct {
	Question string `json:"question"`
}

// IngestDocument is one ready-made record handed to the index by an
// ingestion caller: text plus provenance metadata, no file parsing here.
type IngestDocument struct {
	ID       string                 `json:"id,omitempty"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type InsertDocumentsRequest struct {
	Documents []IngestDocument `json:"documents"`
}

type ArtifactsRequest struct {
	Sections []SectionRequest `json:"sections"`
}
