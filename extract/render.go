package extract

import (
	"encoding/json"
	"log"

	"github/itish2003/finsight/models"
)

const renderRetries = 2

// Renderer converts validated records into display-ready artifacts. The
// render step is pluggable; the default checks that the record serializes
// cleanly into the payload the presentation layer ships.
type Renderer struct {
	render func(models.StructuredRecord) error
}

// NewRenderer returns a renderer with the default render step.
func NewRenderer() *Renderer {
	return &Renderer{render: renderJSON}
}

// NewRendererWithStep returns a renderer using a custom render step.
func NewRendererWithStep(step func(models.StructuredRecord) error) *Renderer {
	if step == nil {
		step = renderJSON
	}
	return &Renderer{render: step}
}

// Render builds the artifact for a validated record. The render step gets
// up to 2 retries; when every attempt fails, the structurally valid record
// is returned unrendered rather than discarded.
func (r *Renderer) Render(record models.StructuredRecord) *models.Artifact {
	if record.IsNone() {
		return nil
	}
	artifact := artifactFromRecord(record)
	var err error
	for attempt := 0; attempt <= renderRetries; attempt++ {
		if err = r.render(record); err == nil {
			artifact.Rendered = true
			return artifact
		}
		log.Printf("RENDER: attempt %d failed: %v", attempt+1, err)
	}
	log.Printf("RENDER: giving up, returning raw record: %v", err)
	artifact.Rendered = false
	return artifact
}

func artifactFromRecord(record models.StructuredRecord) *models.Artifact {
	artifact := &models.Artifact{Type: record.Kind}
	switch record.Kind {
	case models.RecordChart:
		artifact.Chart = record.Chart
		artifact.Title = record.Chart.Title
	case models.RecordTable:
		artifact.Table = record.Table
		artifact.Title = record.Table.Title
	}
	return artifact
}

func renderJSON(record models.StructuredRecord) error {
	_, err := json.Marshal(record)
	return err
}
