package pipeline

import "context"

// LinearPipeline is the degraded fallback used when the state machine
// cannot be constructed: a direct retrieve -> generate -> finalize call
// sequence with no artifact stages, so the system still answers questions.
type LinearPipeline struct {
	st *stages
}

// NewLinearPipeline builds the fallback pipeline. It cannot fail.
func NewLinearPipeline(st *stages) *LinearPipeline {
	return &LinearPipeline{st: st}
}

// Run implements Pipeline.
func (l *LinearPipeline) Run(ctx context.Context, question string) State {
	s := State{Question: question, generator: l.st.primary}
	s = safeStage(string(stateRetrieve), l.st.retrieveContext)(ctx, s)
	s = safeStage(string(stateGenerate), l.st.generateAnswer)(ctx, s)
	s = safeStage(string(stateFinalize), l.st.finalize)(ctx, s)
	return s
}
