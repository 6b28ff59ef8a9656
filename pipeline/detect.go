package pipeline

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github/itish2003/finsight/llm"
)

// Heuristics run before any model call. The lexical and numeric paths are
// deterministic and free; the model-based judgment is reserved for inputs
// neither heuristic resolves.
var (
	artifactCue = regexp.MustCompile(`(?i)\b(charts?|tables?|graphs?|plots?|visuali[sz]e|visuali[sz]ations?|compare|comparisons?|trends?|breakdowns?|histograms?|pie|distributions?)\b`)

	// Currency amounts, percentages and thousands-separated figures. Bare
	// integers are deliberately excluded: page numbers appear everywhere.
	numericSignalPattern = regexp.MustCompile(`[$€£¥]\s?\d|\d+(\.\d+)?\s?%|\b\d{1,3}(,\d{3})+\b`)
	tabularLinePattern   = regexp.MustCompile(`(?m)^.*\|.*\|.*$`)
)

const detectWindow = 1200

func (st *stages) detectAuxiliaryTask(ctx context.Context, s State) State {
	if strings.TrimSpace(s.ContextText) == "" {
		s.NeedsArtifact = false
		return s
	}
	if artifactCue.MatchString(s.Question) {
		log.Printf("PIPELINE: question asks for a visualization")
		s.NeedsArtifact = true
		return s
	}
	if numericSignal(s.ContextText) {
		log.Printf("PIPELINE: context carries numeric data, attempting extraction")
		s.NeedsArtifact = true
		return s
	}

	verdict, err := st.callProvider(ctx, &s, llm.DetectArtifactPrompt(s.Question, truncate(s.ContextText, detectWindow)))
	if err != nil {
		log.Printf("PIPELINE: artifact detection call failed, skipping extraction: %v", err)
		s.NeedsArtifact = false
		return s
	}
	s.NeedsArtifact = strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "YES")
	return s
}

func numericSignal(contextText string) bool {
	return numericSignalPattern.MatchString(contextText) || tabularLinePattern.MatchString(contextText)
}
