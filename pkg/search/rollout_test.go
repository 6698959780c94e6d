package search

import (
	"testing"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
)

func TestForwardSample(t *testing.T) {
	// 1. A rollout that terminates voluntarily returns what it built
	m := newScriptModel(4)
	m.proposeFn = func(g *graph.Graph, n int) []graph.Node {
		switch {
		case !g.Contains(rectA):
			return []graph.Node{rectA}
		case !g.Contains(rectB):
			return []graph.Node{rectB}
		default:
			return []graph.Node{nil}
		}
	}

	g, err := ForwardSample(m, "spec", 10, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if g == nil || g.Size() != 2 {
		t.Fatalf("Expected a 2-object rollout, got %v", g)
	}

	// 2. The move cap cuts the rollout even without a terminal draw
	m2 := newScriptModel(4)
	m2.proposeFn = func(g *graph.Graph, n int) []graph.Node {
		switch {
		case !g.Contains(rectA):
			return []graph.Node{rectA}
		default:
			return []graph.Node{rectB}
		}
	}
	g, err = ForwardSample(m2, "spec", 2, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if g == nil || g.Size() != 2 {
		t.Fatalf("Expected the capped rollout to keep its partial program, got %v", g)
	}

	// 3. A dead rollout (no proposal at all) yields nothing
	m3 := newScriptModel(4)
	m3.proposeFn = func(g *graph.Graph, n int) []graph.Node { return nil }
	g, err = ForwardSample(m3, "spec", 5, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if g != nil {
		t.Errorf("Expected nil for a dead rollout, got a graph of %d objects", g.Size())
	}
}
