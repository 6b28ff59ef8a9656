package models

type QueryResponse struct {
	Answer     string           `json:"answer"`
	Artifact   *Artifact        `json:"artifact,omitempty"`
	Confidence float64          `json:"confidence"`
	Sources    []SourceDocument `json:"sources,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type InsertDocumentsResponse struct {
	Message string   `json:"message"`
	IDs     []string `json:"ids"`
	Skipped int      `json:"skipped,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ListDocumentsResponse is the structure for the response of the GET
// /documents endpoint.
type ListDocumentsResponse struct {
	Count     int     `json:"count"`
	Documents []Chunk `json:"documents"`
}

type ArtifactsResponse struct {
	Sections []SectionResult `json:"sections"`
	Error    string          `json:"error,omitempty"`
}

type AdminResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
