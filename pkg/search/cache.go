package search

import (
	"fmt"
	"sync"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/dldaisy/ProgramSearch/pkg/metrics"
)

// Encodings memoizes the expensive model calls of one search invocation:
// object embeddings (keyed by structural object digest) and graph distances
// (keyed by canonical graph identity). Entries are append-only and never
// invalidated, so any object or graph queried twice within a run yields the
// exact same value. The cache is scoped to a single Infer call and must not
// be shared across concurrent searches.
//
// All methods are safe for concurrent use; parallel proposal workers share
// one Encodings instance.
type Encodings struct {
	mu    sync.Mutex
	model Model
	spec  any

	precision Precision
	specEnc   []float32
	objects   map[uint64]storedVector // object digest -> embedding
	distances map[string]float64      // graph key -> estimated distance
}

// NewEncodings builds the per-run cache and eagerly encodes the spec
// (the one model call that happens exactly once per search).
func NewEncodings(model Model, spec any, precision Precision) (*Encodings, error) {
	specEnc, err := model.EncodeSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding spec: %w", err)
	}
	return &Encodings{
		model:     model,
		spec:      spec,
		precision: precision,
		specEnc:   specEnc,
		objects:   make(map[uint64]storedVector),
		distances: make(map[string]float64),
	}, nil
}

// SpecEncoding returns the embedding of the search spec.
func (e *Encodings) SpecEncoding() []float32 { return e.specEnc }

// ObjectEncoding returns the memoized embedding of n, invoking the object
// encoder on first sight only.
func (e *Encodings) ObjectEncoding(n graph.Node) ([]float32, error) {
	d := graph.Digest(n)

	e.mu.Lock()
	if v, ok := e.objects[d]; ok {
		e.mu.Unlock()
		metrics.ObjectEncodings.WithLabelValues("hit").Inc()
		return v.decode(), nil
	}
	e.mu.Unlock()

	// Model call outside the lock: encoders can be slow, and two workers
	// racing on the same object both produce the identical deterministic
	// vector, so a duplicated miss is wasteful but harmless.
	metrics.ObjectEncodings.WithLabelValues("miss").Inc()
	enc, err := e.model.EncodeObject(e.spec, n.Execute())
	if err != nil {
		return nil, fmt.Errorf("encoding object: %w", err)
	}
	stored, err := compressVector(enc, e.precision)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.objects[d]; ok {
		// Lost the race; keep the first write so reads stay referentially
		// consistent.
		return v.decode(), nil
	}
	e.objects[d] = stored
	return stored.decode(), nil
}

// ScopeEncoding returns the stacked embedding matrix of every object in g,
// one row per object in canonical order. The empty graph yields a single
// zero row of the model's embedding width: "no objects yet" must reach the
// distance and proposal paths as a valid fixed-width input, not as an absent
// value.
func (e *Encodings) ScopeEncoding(g *graph.Graph) ([][]float32, error) {
	if g.Size() == 0 {
		return [][]float32{make([]float32, e.model.EmbeddingWidth())}, nil
	}
	objects := g.OrderedObjects()
	rows := make([][]float32, len(objects))
	for i, n := range objects {
		enc, err := e.ObjectEncoding(n)
		if err != nil {
			return nil, err
		}
		rows[i] = enc
	}
	return rows, nil
}

// Distance returns the memoized model distance estimate for g, computing the
// scope encoding and querying the estimator on first sight only.
func (e *Encodings) Distance(g *graph.Graph) (float64, error) {
	key := g.Key()

	e.mu.Lock()
	if d, ok := e.distances[key]; ok {
		e.mu.Unlock()
		metrics.DistanceEvaluations.WithLabelValues("hit").Inc()
		return d, nil
	}
	e.mu.Unlock()

	metrics.DistanceEvaluations.WithLabelValues("miss").Inc()
	scope, err := e.ScopeEncoding(g)
	if err != nil {
		return 0, err
	}
	d, err := e.model.Distance(scope, e.specEnc)
	if err != nil {
		return 0, fmt.Errorf("estimating distance: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.distances[key]; ok {
		return prev, nil
	}
	e.distances[key] = d
	return d, nil
}
