// Package pipeline orchestrates a question through retrieval, answer
// generation, auxiliary-task detection, structured extraction and
// rendering. The orchestrator never surfaces an error to its caller:
// every failure degrades to a text answer, possibly with a nil artifact.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github/itish2003/finsight/extract"
	"github/itish2003/finsight/llm"
	"github/itish2003/finsight/models"
	"github/itish2003/finsight/retriever"
	"github/itish2003/finsight/workerpool"
)

// Pipeline runs one question through the answer stages.
type Pipeline interface {
	Run(ctx context.Context, question string) State
}

// Deps carries everything the orchestrator needs. Secondary may be nil,
// in which case no provider substitution happens.
type Deps struct {
	Retriever         *retriever.Retriever
	Primary           llm.Generator
	Secondary         llm.Generator
	Renderer          *extract.Renderer
	GenerationTimeout time.Duration
	SectionWorkers    int
	SectionTimeout    time.Duration
}

// Orchestrator is the sole entry point the presentation layer talks to.
type Orchestrator struct {
	pipeline  Pipeline
	retriever *retriever.Retriever
	st        *stages
	pool      *workerpool.Pool
}

// NewOrchestrator builds the stage bundle and selects a pipeline: the
// graph state machine when its transition table validates, the linear
// call sequence otherwise.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Renderer == nil {
		deps.Renderer = extract.NewRenderer()
	}
	if deps.GenerationTimeout <= 0 {
		deps.GenerationTimeout = 60 * time.Second
	}
	st := &stages{
		retriever: deps.Retriever,
		primary:   deps.Primary,
		secondary: deps.Secondary,
		renderer:  deps.Renderer,
		timeout:   deps.GenerationTimeout,
	}

	var p Pipeline
	graph, err := NewGraphPipeline(st)
	if err != nil {
		log.Printf("PIPELINE: graph construction failed, falling back to linear mode: %v", err)
		p = NewLinearPipeline(st)
	} else {
		p = graph
	}

	return &Orchestrator{
		pipeline:  p,
		retriever: deps.Retriever,
		st:        st,
		pool:      workerpool.New(deps.SectionWorkers, deps.SectionTimeout),
	}
}

// Ask runs one question to completion and always returns a usable result:
// a non-empty answer plus an optional artifact.
func (o *Orchestrator) Ask(ctx context.Context, question string) models.AskResult {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.AskResult{Answer: "Please provide a question."}
	}

	s := o.pipeline.Run(ctx, question)

	result := models.AskResult{
		Answer:     s.Answer,
		Artifact:   s.Artifact,
		Confidence: s.Confidence,
		Sources:    sourcesFromResults(s.Results),
	}
	if strings.TrimSpace(result.Answer) == "" {
		result.Answer = cannedNotFound
	}
	return result
}

func sourcesFromResults(results []models.RetrievalResult) []models.SourceDocument {
	if len(results) == 0 {
		return nil
	}
	sources := make([]models.SourceDocument, 0, len(results))
	for _, r := range results {
		sources = append(sources, models.SourceDocument{
			Text:     r.Chunk.Text,
			Metadata: r.Chunk.Metadata,
		})
	}
	return sources
}
