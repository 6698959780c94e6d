package search

import (
	"github.com/dldaisy/ProgramSearch/pkg/graph"
)

// ForwardSample runs a single stochastic rollout: starting from the empty
// graph, it repeatedly asks the model for one proposal and extends until the
// model emits a terminal marker or maxMoves extensions have been applied.
//
// Returns nil with a nil error when the model produces no proposal at some
// step, mirroring a rollout that dies without terminating.
func ForwardSample(model Model, spec any, maxMoves int, precision Precision) (*graph.Graph, error) {
	enc, err := NewEncodings(model, spec, precision)
	if err != nil {
		return nil, err
	}

	g := graph.Empty()
	for move := 0; maxMoves <= 0 || move < maxMoves; move++ {
		samples, err := model.Propose(enc.SpecEncoding(), g, enc, 1)
		if err != nil {
			return nil, err
		}
		if len(samples) == 0 {
			return nil, nil
		}
		newObject := samples[0]
		if newObject == nil {
			return g, nil
		}
		if _, err := enc.ObjectEncoding(newObject); err != nil {
			return nil, err
		}
		g = g.Extend(newObject)
	}
	return g, nil
}
