package search

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
)

// scriptModel is a deterministic in-memory Model for tests. Encodings are
// hash-derived from the executed value, distance and proposals are scripted
// per test, and every call is counted so caching behavior can be asserted.
type scriptModel struct {
	width int

	mu          sync.Mutex
	specCalls   int
	objectCalls map[string]int
	distCalls   int

	distanceFn func(scope [][]float32) float64
	proposeFn  func(g *graph.Graph, n int) []graph.Node
}

func newScriptModel(width int) *scriptModel {
	return &scriptModel{
		width:       width,
		objectCalls: make(map[string]int),
	}
}

func (m *scriptModel) EmbeddingWidth() int { return m.width }

func (m *scriptModel) hashVector(seed string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()
	out := make([]float32, m.width)
	for i := range out {
		sum = sum*6364136223846793005 + 1442695040888963407
		out[i] = float32(sum%1000)/1000.0 + 0.001
	}
	return out
}

func (m *scriptModel) EncodeSpec(spec any) ([]float32, error) {
	m.mu.Lock()
	m.specCalls++
	m.mu.Unlock()
	return m.hashVector("spec:" + fmt.Sprint(spec)), nil
}

func (m *scriptModel) EncodeObject(spec, value any) ([]float32, error) {
	key := fmt.Sprint(value)
	m.mu.Lock()
	m.objectCalls[key]++
	m.mu.Unlock()
	return m.hashVector("obj:" + key), nil
}

func (m *scriptModel) Distance(scope [][]float32, specEncoding []float32) (float64, error) {
	m.mu.Lock()
	m.distCalls++
	m.mu.Unlock()
	if m.distanceFn != nil {
		return m.distanceFn(scope), nil
	}
	return 1.0, nil
}

func (m *scriptModel) Propose(specEncoding []float32, g *graph.Graph, enc *Encodings, n int) ([]graph.Node, error) {
	if m.proposeFn == nil {
		return nil, nil
	}
	return m.proposeFn(g, n), nil
}
