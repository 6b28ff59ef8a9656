package pipeline

import (
	"context"
	"fmt"
	"log"
)

type stateName string

const (
	stateRetrieve stateName = "RetrieveContext"
	stateGenerate stateName = "GenerateAnswer"
	stateDetect   stateName = "DetectAuxiliaryTask"
	stateExtract  stateName = "ExtractStructuredData"
	stateRender   stateName = "RenderArtifact"
	stateFinalize stateName = "Finalize"
)

// node is one state of the machine: the stage to run, the static set of
// states it may transition to (checked at construction), and the chooser
// that picks among them at runtime. An empty target set marks a terminal
// state.
type node struct {
	run     stageFunc
	targets []stateName
	next    func(State) stateName
}

// GraphPipeline executes the full state machine:
//
//	RetrieveContext -> GenerateAnswer -> DetectAuxiliaryTask
//	    -> (needsArtifact) ExtractStructuredData -> RenderArtifact -> Finalize
//	    -> (otherwise)     Finalize
type GraphPipeline struct {
	st    *stages
	nodes map[stateName]node
	start stateName
}

// NewGraphPipeline wires the transition table and validates it: the start
// state must exist and every declared transition target must be defined.
func NewGraphPipeline(st *stages) (*GraphPipeline, error) {
	always := func(target stateName) func(State) stateName {
		return func(State) stateName { return target }
	}
	g := &GraphPipeline{
		st:    st,
		start: stateRetrieve,
		nodes: map[stateName]node{
			stateRetrieve: {
				run:     safeStage(string(stateRetrieve), st.retrieveContext),
				targets: []stateName{stateGenerate},
				next:    always(stateGenerate),
			},
			stateGenerate: {
				run:     safeStage(string(stateGenerate), st.generateAnswer),
				targets: []stateName{stateDetect},
				next:    always(stateDetect),
			},
			stateDetect: {
				run:     safeStage(string(stateDetect), st.detectAuxiliaryTask),
				targets: []stateName{stateExtract, stateFinalize},
				next: func(s State) stateName {
					if s.NeedsArtifact {
						return stateExtract
					}
					return stateFinalize
				},
			},
			stateExtract: {
				run:     safeStage(string(stateExtract), st.extractStructuredData),
				targets: []stateName{stateRender},
				next:    always(stateRender),
			},
			stateRender: {
				run:     safeStage(string(stateRender), st.renderArtifact),
				targets: []stateName{stateFinalize},
				next:    always(stateFinalize),
			},
			stateFinalize: {
				run: safeStage(string(stateFinalize), st.finalize),
			},
		},
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GraphPipeline) validate() error {
	if _, ok := g.nodes[g.start]; !ok {
		return fmt.Errorf("start state %q is not defined", g.start)
	}
	terminals := 0
	for name, n := range g.nodes {
		if len(n.targets) == 0 {
			terminals++
			continue
		}
		if n.next == nil {
			return fmt.Errorf("state %q has transitions but no chooser", name)
		}
		for _, target := range n.targets {
			if _, ok := g.nodes[target]; !ok {
				return fmt.Errorf("state %q transitions to undefined state %q", name, target)
			}
		}
	}
	if terminals == 0 {
		return fmt.Errorf("no terminal state defined")
	}
	return nil
}

// Run walks the machine from the start state to a terminal state. The step
// bound guards against a malformed chooser looping forever.
func (g *GraphPipeline) Run(ctx context.Context, question string) State {
	s := State{Question: question, generator: g.st.primary}
	return g.run(ctx, s)
}

func (g *GraphPipeline) run(ctx context.Context, s State) State {
	current := g.start
	for steps := 0; steps <= len(g.nodes)+1; steps++ {
		n, ok := g.nodes[current]
		if !ok {
			log.Printf("PIPELINE: reached undefined state %q, stopping", current)
			break
		}
		s = n.run(ctx, s)
		if len(n.targets) == 0 {
			return s
		}
		current = n.next(s)
	}
	log.Printf("PIPELINE: state machine exceeded its step bound")
	return s
}
