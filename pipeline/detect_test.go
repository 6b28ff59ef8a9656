package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSkipsWhenContextEmpty(t *testing.T) {
	gen := &fakeGenerator{name: "p", reply: func(string) (string, error) { return "YES", nil }}
	st := newTestStages(nil, gen, nil)

	s := st.detectAuxiliaryTask(context.Background(), State{
		Question:  "show me a chart of revenue",
		generator: gen,
	})

	assert.False(t, s.NeedsArtifact, "nothing to extract from without context")
	assert.Zero(t, gen.callCount())
}

func TestDetectQuestionCueSkipsModel(t *testing.T) {
	questions := []string{
		"show me a chart of revenue",
		"compare the two quarters",
		"what's the trend in margins",
		"give me a table of expenses",
		"plot headcount over time",
		"visualize the regional breakdown",
	}
	for _, q := range questions {
		t.Run(q, func(t *testing.T) {
			gen := &fakeGenerator{name: "p", reply: func(string) (string, error) { return "NO", nil }}
			st := newTestStages(nil, gen, nil)

			s := st.detectAuxiliaryTask(context.Background(), State{
				Question:    q,
				ContextText: "Staffing levels remained stable through the period.",
				generator:   gen,
			})

			assert.True(t, s.NeedsArtifact)
			assert.Zero(t, gen.callCount(), "lexical cue resolves without a model call")
		})
	}
}

func TestDetectNumericContextSkipsModel(t *testing.T) {
	contexts := []string{
		"Revenue reached $5.2M in the third quarter.",
		"Margins improved by 34% year over year.",
		"Headcount stood at 12,450 by December.",
		"Region | Q1 | Q2",
	}
	for _, c := range contexts {
		t.Run(c, func(t *testing.T) {
			gen := &fakeGenerator{name: "p", reply: func(string) (string, error) { return "NO", nil }}
			st := newTestStages(nil, gen, nil)

			s := st.detectAuxiliaryTask(context.Background(), State{
				Question:    "what happened this quarter",
				ContextText: c,
				generator:   gen,
			})

			assert.True(t, s.NeedsArtifact)
			assert.Zero(t, gen.callCount())
		})
	}
}

func TestDetectAmbiguousInputAsksModel(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		err     error
		want    bool
	}{
		{"affirmative", "YES", nil, true},
		{"chatty affirmative", "yes, a chart would help here", nil, true},
		{"negative", "NO", nil, false},
		{"punctuated negative", " No. ", nil, false},
		{"call failure", "", errors.New("provider down"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{name: "p", reply: func(string) (string, error) {
				return tt.verdict, tt.err
			}}
			st := newTestStages(nil, gen, nil)

			s := st.detectAuxiliaryTask(context.Background(), State{
				Question:    "what does the report say about staffing",
				ContextText: "Staffing levels remained stable through the period.",
				generator:   gen,
			})

			assert.Equal(t, tt.want, s.NeedsArtifact)
			assert.True(t, gen.sawPromptContaining("exactly YES or NO"))
		})
	}
}

func TestNumericSignal(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"costs of $500 were reported", true},
		{"budget of € 2 billion", true},
		{"growth of 12.5%", true},
		{"growth of 12 %", true},
		{"population of 1,234,567", true},
		{"Region | Revenue | Margin", true},
		{"fiscal year 2024 results", false},
		{"see page 7 for details", false},
		{"only one | pipe here", false},
		{"no figures at all", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, numericSignal(tt.text))
		})
	}
}
