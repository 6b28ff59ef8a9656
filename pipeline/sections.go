package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"

	"github/itish2003/finsight/extract"
	"github/itish2003/finsight/models"
	"github/itish2003/finsight/workerpool"
)

// ExtractSections runs one structured extraction per section with bounded
// parallelism and a per-section deadline. A section that misses its
// deadline is abandoned and replaced by a deterministic placeholder, so
// one slow section never holds up the batch.
func (o *Orchestrator) ExtractSections(ctx context.Context, sections []models.SectionRequest) []models.SectionResult {
	task := func(ctx context.Context, req models.SectionRequest) (models.SectionResult, error) {
		return o.extractSection(ctx, req)
	}
	placeholder := func(req models.SectionRequest, err error) models.SectionResult {
		res := models.SectionResult{Label: req.Label}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("SECTIONS: %q timed out, substituting placeholder", req.Label)
			res.TimedOut = true
			res.Note = "section timed out before extraction completed"
			return res
		}
		log.Printf("SECTIONS: %q failed: %v", req.Label, err)
		res.Note = "section extraction failed: " + err.Error()
		return res
	}
	return workerpool.Map(ctx, o.pool, sections, task, placeholder)
}

func (o *Orchestrator) extractSection(ctx context.Context, req models.SectionRequest) (models.SectionResult, error) {
	ret, err := o.retriever.Retrieve(ctx, req.Query)
	if err != nil {
		return models.SectionResult{}, err
	}
	contextText := o.retriever.FormatContext(ret.Results)
	if strings.TrimSpace(contextText) == "" {
		return models.SectionResult{Label: req.Label, Note: "no usable context found for this section"}, nil
	}

	record := extract.Extract(ctx, o.st.primary, req.Query, contextText)
	if record.IsNone() {
		return models.SectionResult{Label: req.Label, Note: "no meaningful data found for this section"}, nil
	}
	return models.SectionResult{Label: req.Label, Artifact: o.st.renderer.Render(record)}, nil
}
