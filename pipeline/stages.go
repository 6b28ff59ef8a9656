package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github/itish2003/finsight/extract"
	"github/itish2003/finsight/fallback"
	"github/itish2003/finsight/llm"
	"github/itish2003/finsight/models"
	"github/itish2003/finsight/retriever"
)

const (
	noContextAnswer = "No information is available in the document collection to answer this question. Try ingesting documents first."
	cannedNotFound  = "I could not find an answer to this question in the available documents."

	excerptPrefix = "I could not generate a direct answer. The most relevant passages found were:\n\n"
	excerptChars  = 600
)

var errEmptyAnswer = errors.New("empty or refusal answer")

// stages bundles the dependencies every stage function needs. One stages
// value is shared across requests; all per-request data lives in State.
type stages struct {
	retriever *retriever.Retriever
	primary   llm.Generator
	secondary llm.Generator
	renderer  *extract.Renderer
	timeout   time.Duration
}

type stageFunc func(ctx context.Context, s State) State

// safeStage converts a stage panic into a no-op transition. Stages must
// never propagate failures past their own boundary; the pre-stage state is
// already valid, so it is what the pipeline continues with.
func safeStage(name string, fn stageFunc) stageFunc {
	return func(ctx context.Context, s State) (out State) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PIPELINE: stage %s panicked: %v", name, r)
				out = s
			}
		}()
		return fn(ctx, s)
	}
}

func (st *stages) retrieveContext(ctx context.Context, s State) State {
	ret, err := st.retriever.Retrieve(ctx, s.Question)
	if err != nil {
		if errors.Is(err, models.ErrCollectionEmpty) {
			log.Printf("PIPELINE: collection is empty, continuing without context")
		} else {
			log.Printf("PIPELINE: retrieval failed, continuing without context: %v", err)
		}
		return s
	}
	s.Results = ret.Results
	s.Confidence = ret.Confidence
	s.ContextText = st.retriever.FormatContext(ret.Results)
	if ret.Sampled {
		log.Printf("PIPELINE: answering from unranked sample context (confidence %.2f)", ret.Confidence)
	}
	return s
}

func (st *stages) generateAnswer(ctx context.Context, s State) State {
	if strings.TrimSpace(s.ContextText) == "" {
		s.Answer = noContextAnswer
		return s
	}

	steps := []fallback.Step[string]{
		{Name: "answer", Run: func(ctx context.Context) (string, error) {
			return st.answerAttempt(ctx, &s, llm.AnswerPrompt(s.Question, s.ContextText))
		}},
		{Name: "directive", Run: func(ctx context.Context) (string, error) {
			return st.answerAttempt(ctx, &s, llm.DirectiveAnswerPrompt(s.Question, s.ContextText))
		}},
		{Name: "excerpt", Run: func(ctx context.Context) (string, error) {
			return contextExcerpt(s.ContextText), nil
		}},
	}

	answer, step, err := fallback.First(ctx, steps)
	if err != nil {
		log.Printf("PIPELINE: every generation step failed at %s: %v", step, err)
		s.Answer = cannedNotFound
		return s
	}
	if step != "answer" {
		log.Printf("PIPELINE: answer produced by %s fallback", step)
	}
	s.Answer = answer
	return s
}

// answerAttempt runs one prompt through the active provider and treats a
// refusal as a failure so the next fallback step fires.
func (st *stages) answerAttempt(ctx context.Context, s *State, prompt string) (string, error) {
	answer, err := st.callProvider(ctx, s, prompt)
	if err != nil {
		return "", err
	}
	if isRefusal(answer) {
		return "", errEmptyAnswer
	}
	return strings.TrimSpace(answer), nil
}

// callProvider invokes the request's active generator with a per-call
// timeout. A model-unavailable report substitutes the secondary provider
// for the remainder of the request; any other failure gets one retry
// before substitution is attempted.
func (st *stages) callProvider(ctx context.Context, s *State, prompt string) (string, error) {
	answer, err := st.generateOnce(ctx, s.generator, prompt)
	if err == nil {
		return answer, nil
	}
	if !errors.Is(err, models.ErrModelUnavailable) {
		log.Printf("PIPELINE: generation failed, retrying once: %v", err)
		answer, err = st.generateOnce(ctx, s.generator, prompt)
		if err == nil {
			return answer, nil
		}
	}
	if st.secondary != nil && s.generator.Name() != st.secondary.Name() {
		log.Printf("PIPELINE: substituting %s for %s: %v", st.secondary.Name(), s.generator.Name(), err)
		s.generator = st.secondary
		return st.generateOnce(ctx, s.generator, prompt)
	}
	return "", err
}

func (st *stages) generateOnce(ctx context.Context, gen llm.Generator, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()
	return gen.Generate(callCtx, prompt)
}

func (st *stages) extractStructuredData(ctx context.Context, s State) State {
	if strings.TrimSpace(s.ContextText) == "" {
		s.Record = models.NoData()
		return s
	}
	s.Record = extract.Extract(ctx, s.generator, s.Question, s.ContextText)
	return s
}

func (st *stages) renderArtifact(_ context.Context, s State) State {
	if s.Record.IsNone() {
		s.Artifact = nil
		return s
	}
	s.Artifact = st.renderer.Render(s.Record)
	return s
}

// finalize repairs terminal invariants: an artifact of the wrong kind is
// discarded rather than silently returned, an explicitly requested but
// missing artifact is explained, and the answer is never empty.
func (st *stages) finalize(_ context.Context, s State) State {
	want := extract.ExplicitKind(s.Question)

	if s.Artifact != nil && want != models.RecordNone && s.Artifact.Type != want {
		log.Printf("PIPELINE: discarding %s artifact, question asked for a %s", s.Artifact.Type, want)
		s.Artifact = nil
		s.Answer = fmt.Sprintf("No suitable structured data was found to build the requested %s.", want)
	} else if s.NeedsArtifact && s.Artifact == nil && want != models.RecordNone {
		s.Answer = fmt.Sprintf("No meaningful numerical data was found in the documents to build the requested %s.", want)
	}

	if strings.TrimSpace(s.Answer) == "" {
		s.Answer = cannedNotFound
	}
	return s
}

var refusalMarkers = []string{
	"i'm sorry",
	"i am sorry",
	"i cannot",
	"i can't",
	"as an ai",
	"unable to answer",
}

// isRefusal flags empty output and short generic apologies. Long answers
// are never refusals even when they contain an apologetic phrase.
func isRefusal(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	if len(trimmed) > 200 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func contextExcerpt(contextText string) string {
	return excerptPrefix + truncate(contextText, excerptChars)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
