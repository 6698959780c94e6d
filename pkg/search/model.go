// Package search implements the particle-filter (sequential Monte Carlo)
// search controller that drives program synthesis: a weighted population of
// partial program graphs is repeatedly extended by a learned proposal policy,
// scored by a learned distance estimate, and resampled so that computation
// concentrates on promising candidates.
//
// The learned model itself is a black-box collaborator behind the Model
// interface; see pkg/model for an HTTP-backed implementation.
package search

import "github.com/dldaisy/ProgramSearch/pkg/graph"

// Model is the boundary contract with the learned encoder/decoder.
// All methods are synchronous; a failed call is fatal to the search (the
// controller performs no retries and does not mask collaborator failures).
type Model interface {
	// EncodeSpec embeds the specification. Called once per search.
	EncodeSpec(spec any) ([]float32, error)

	// EncodeObject embeds one program object given the spec and the object's
	// executed value. Called at most once per distinct object per search
	// (results are memoized by the encoding cache).
	EncodeObject(spec any, value any) ([]float32, error)

	// EmbeddingWidth is the fixed width of the vectors returned by
	// EncodeSpec and EncodeObject, and of the zero placeholder row used for
	// the empty scope.
	EmbeddingWidth() int

	// Distance estimates how far a graph's execution is from matching the
	// spec, given the stacked scope encodings (one row per object, or the
	// single zero row for the empty graph). Lower is better.
	Distance(scope [][]float32, specEncoding []float32) (float64, error)

	// Propose draws up to n candidate next objects for the given scope.
	// A nil element is the terminal marker ("stop extending this branch").
	// Fewer than n elements may be returned when draws are filtered as
	// syntactically invalid; that is expected, not an error.
	Propose(specEncoding []float32, g *graph.Graph, enc *Encodings, n int) ([]graph.Node, error)
}
