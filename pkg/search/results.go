package search

import (
	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/tidwall/btree"
)

// Result pairs a surviving graph with its model-estimated distance.
type Result struct {
	Graph    *graph.Graph
	Distance float64
}

// ResultSet holds the distinct survivors of a search ordered by estimated
// distance (best first). The estimate is the model's, not ground truth:
// callers that can execute candidates against the real spec should still
// re-score before picking a winner.
type ResultSet struct {
	tree *btree.BTreeG[Result]
}

// resultLess orders by distance, breaking ties on graph identity to keep
// distinct graphs distinct inside the tree.
func resultLess(a, b Result) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Graph.Key() < b.Graph.Key()
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{tree: btree.NewBTreeG[Result](resultLess)}
}

// Add inserts a result. Re-adding the same graph with the same distance is a
// no-op.
func (rs *ResultSet) Add(r Result) {
	rs.tree.Set(r)
}

// Len returns the number of distinct results.
func (rs *ResultSet) Len() int {
	return rs.tree.Len()
}

// Best returns the result with the smallest estimated distance.
func (rs *ResultSet) Best() (Result, bool) {
	return rs.tree.Min()
}

// Results returns all results in ascending distance order.
func (rs *ResultSet) Results() []Result {
	out := make([]Result, 0, rs.tree.Len())
	rs.tree.Scan(func(r Result) bool {
		out = append(out, r)
		return true
	})
	return out
}
