package models

// Artifact is a display-ready structured record produced by the renderer.
// Rendered is false when rendering retries were exhausted and the raw record
// is passed through as a degraded artifact rather than being discarded.
type Artifact struct {
	Type     RecordKind   `json:"type"`
	Chart    *ChartRecord `json:"chart,omitempty"`
	Table    *TableRecord `json:"table,omitempty"`
	Title    string       `json:"title,omitempty"`
	Rendered bool         `json:"rendered"`
}

// AskResult is the orchestrator's final response for one question. Answer is
// never empty; Artifact is nil when no meaningful structured data was found.
type AskResult struct {
	Answer     string           `json:"answer"`
	Artifact   *Artifact        `json:"artifact,omitempty"`
	Confidence float64          `json:"confidence"`
	Sources    []SourceDocument `json:"sources,omitempty"`
}

// SectionRequest names one independent extraction task fanned out for a
// single question, e.g. one report section per artifact.
type SectionRequest struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// SectionResult is the outcome of one section's extraction. A timed-out
// section carries the deterministic placeholder note instead of an artifact.
type SectionResult struct {
	Label    string    `json:"label"`
	Artifact *Artifact `json:"artifact,omitempty"`
	Note     string    `json:"note,omitempty"`
	TimedOut bool      `json:"timed_out,omitempty"`
}
