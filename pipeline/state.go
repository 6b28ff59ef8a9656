package pipeline

import (
	"github/itish2003/finsight/llm"
	"github/itish2003/finsight/models"
)

// State is the orchestrator's working record, created fresh per question
// and threaded through the stages. Each stage returns an updated copy;
// nothing in here is shared between concurrent requests.
type State struct {
	Question      string
	Results       []models.RetrievalResult
	ContextText   string
	Confidence    float64
	Answer        string
	NeedsArtifact bool
	Record        models.StructuredRecord
	Artifact      *models.Artifact

	// Active provider for this request. Swapped at most once, when the
	// primary reports its model unavailable, and kept for the remainder.
	generator llm.Generator
}
