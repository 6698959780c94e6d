package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/dldaisy/ProgramSearch/pkg/dsl/csg"
	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/dldaisy/ProgramSearch/pkg/search"
)

// toyModel proposes the single goal rectangle and then terminates, enough to
// drive the synthesize tool end to end without a real network.
type toyModel struct {
	goal *csg.Rect
}

func (m *toyModel) EmbeddingWidth() int { return 4 }

func (m *toyModel) EncodeSpec(spec any) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (m *toyModel) EncodeObject(spec, value any) ([]float32, error) {
	return []float32{0, 1, 0, 0}, nil
}

func (m *toyModel) Distance(scope [][]float32, specEncoding []float32) (float64, error) {
	// Closer once anything has been built.
	if len(scope) == 1 && scope[0][1] == 0 {
		return 2.0, nil
	}
	return 0.5, nil
}

func (m *toyModel) Propose(specEncoding []float32, g *graph.Graph, enc *search.Encodings, n int) ([]graph.Node, error) {
	out := make([]graph.Node, n)
	for i := range out {
		if !g.Contains(m.goal) {
			out[i] = m.goal
		}
	}
	return out, nil
}

func newTestService(goal *csg.Rect) *Service {
	return NewService(&toyModel{goal: goal}, csg.DSL{}, search.DefaultOptions(16))
}

func TestParseProgramTool(t *testing.T) {
	s := newTestService(nil)

	// 1. A listing with positional references parses into a graph
	_, res, err := s.ParseProgram(context.Background(), nil, ParseProgramArgs{
		Lines: []string{
			"(rect 1 1 4 4)",
			"(rect 8 8 12 12)",
			"(union $0 $1)",
		},
	})
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	if res.Objects != 3 {
		t.Errorf("Expected 3 objects, got %d", res.Objects)
	}

	// 2. The pretty-printed form round-trips through the same tool
	_, res2, err := s.ParseProgram(context.Background(), nil, ParseProgramArgs{
		Lines: strings.Split(res.Program, "\n"),
	})
	if err != nil {
		t.Fatalf("Round-trip parse failed: %v", err)
	}
	if res2.Program != res.Program {
		t.Errorf("Listing did not round-trip:\n%s\nvs\n%s", res.Program, res2.Program)
	}

	// 3. Malformed listings are reported, not ignored
	if _, _, err := s.ParseProgram(context.Background(), nil, ParseProgramArgs{
		Lines: []string{"(circle 1 1 4)"},
	}); err == nil {
		t.Errorf("Expected an error for an unknown operator")
	}
	if _, _, err := s.ParseProgram(context.Background(), nil, ParseProgramArgs{
		Lines: []string{"(union $0 $1)"},
	}); err == nil {
		t.Errorf("Expected an error for references with no scope")
	}
}

func TestProgramDistanceTool(t *testing.T) {
	s := newTestService(nil)

	program := []string{"(rect 1 1 4 4)", "(rect 8 8 12 12)", "(union $0 $1)"}
	same := []string{"(rect 8 8 12 12)", "(rect 1 1 4 4)", "(union $1 $0)"}
	shorter := []string{"(rect 1 1 4 4)"}

	_, res, err := s.ProgramDistance(context.Background(), nil, ProgramDistanceArgs{
		Program: program, Goal: same,
	})
	if err != nil {
		t.Fatalf("ProgramDistance failed: %v", err)
	}
	if res.Distance != 0 {
		t.Errorf("Identical programs should be at distance 0, got %d", res.Distance)
	}

	_, res, err = s.ProgramDistance(context.Background(), nil, ProgramDistanceArgs{
		Program: program, Goal: shorter,
	})
	if err != nil {
		t.Fatalf("ProgramDistance failed: %v", err)
	}
	if res.Distance != 2 {
		t.Errorf("Expected distance 2, got %d", res.Distance)
	}
}

func TestSynthesizeTool(t *testing.T) {
	goal := &csg.Rect{X0: 3, Y0: 3, X1: 10, Y1: 10}
	s := newTestService(goal)

	spec := goal.Execute().(csg.Canvas).String()
	_, res, err := s.Synthesize(context.Background(), nil, SynthesizeArgs{
		Spec:      spec,
		Particles: 8,
		MaxLength: 2,
		Seed:      5,
		Limit:     3,
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(res.Candidates) == 0 {
		t.Fatal("Expected at least one candidate")
	}
	if len(res.Candidates) > 3 {
		t.Errorf("Limit was ignored: got %d candidates", len(res.Candidates))
	}
	// Candidates come back best first
	for i := 1; i < len(res.Candidates); i++ {
		if res.Candidates[i].Distance < res.Candidates[i-1].Distance {
			t.Errorf("Candidates are not sorted by distance")
		}
	}
	// The oracle-fed model recovers the goal program as some candidate
	found := false
	for _, cand := range res.Candidates {
		if strings.Contains(cand.Program, "(rect 3 3 10 10)") {
			found = true
		}
	}
	if !found {
		t.Errorf("Goal program missing from candidates: %+v", res.Candidates)
	}

	// An unparseable spec is rejected up front
	if _, _, err := s.Synthesize(context.Background(), nil, SynthesizeArgs{Spec: "not a grid"}); err == nil {
		t.Errorf("Expected an error for a malformed spec")
	}
}
