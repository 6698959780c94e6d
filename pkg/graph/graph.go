package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Graph is an immutable set of program objects, a single state in the search
// space. New graphs are produced by Extend; a Graph is never mutated after
// construction, so it is safe to share across goroutines without locking.
type Graph struct {
	nodes map[uint64]Node // digest -> node
	key   string          // canonical order-independent identity
}

// Empty returns the zero-node graph, the root of every search.
func Empty() *Graph {
	return newGraph(map[uint64]Node{})
}

// FromNodes builds a graph from an explicit node set.
func FromNodes(nodes []Node) *Graph {
	m := make(map[uint64]Node, len(nodes))
	for _, n := range nodes {
		m[Digest(n)] = n
	}
	return newGraph(m)
}

// FromRoot builds the graph containing root and everything reachable from it
// through Children (the transitive dependency closure).
func FromRoot(root Node) *Graph {
	m := make(map[uint64]Node)
	var reach func(n Node)
	reach = func(n Node) {
		d := Digest(n)
		if _, ok := m[d]; ok {
			return
		}
		m[d] = n
		for _, c := range n.Children() {
			reach(c)
		}
	}
	reach(root)
	return newGraph(m)
}

func newGraph(nodes map[uint64]Node) *Graph {
	digests := make([]uint64, 0, len(nodes))
	for d := range nodes {
		digests = append(digests, d)
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i] < digests[j] })

	var b strings.Builder
	for i, d := range digests {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(d, 16))
	}
	return &Graph{nodes: nodes, key: b.String()}
}

// Extend returns a new graph whose node set is the receiver's plus n.
// The receiver is left untouched. Extending with a node already present
// yields a graph equal to the receiver.
func (g *Graph) Extend(n Node) *Graph {
	m := make(map[uint64]Node, len(g.nodes)+1)
	for d, node := range g.nodes {
		m[d] = node
	}
	m[Digest(n)] = n
	return newGraph(m)
}

// Objects returns the nodes of the graph in no particular order.
func (g *Graph) Objects() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// OrderedObjects returns the nodes sorted by digest. The order carries no
// semantic meaning, but every component that builds positional views of a
// graph (scope matrices, $i references sent to a model) must use the same
// one, so this is the canonical iteration order.
func (g *Graph) OrderedObjects() []Node {
	digests := make([]uint64, 0, len(g.nodes))
	for d := range g.nodes {
		digests = append(digests, d)
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i] < digests[j] })
	out := make([]Node, len(digests))
	for i, d := range digests {
		out[i] = g.nodes[d]
	}
	return out
}

// Size returns the number of nodes.
func (g *Graph) Size() int { return len(g.nodes) }

// Contains reports whether a structurally identical node is present.
func (g *Graph) Contains(n Node) bool {
	_, ok := g.nodes[Digest(n)]
	return ok
}

// Key returns the canonical identity of the graph: the sorted digests of its
// nodes. Two graphs have the same Key exactly when they hold the same node
// set, which is what the search layer deduplicates on.
func (g *Graph) Key() string { return g.key }

// Equal reports structural equality of node sets.
func (g *Graph) Equal(o *Graph) bool { return g.key == o.key }

// PolicyOracle returns the nodes of goal that are missing from g and whose
// children are all already present in g, i.e. the legally addable next
// objects. Pure function over the two graphs; used as a supervised imitation
// signal, never consulted by the search itself.
func (g *Graph) PolicyOracle(goal *Graph) []Node {
	var out []Node
	for d, n := range goal.nodes {
		if _, ok := g.nodes[d]; ok {
			continue
		}
		addable := true
		for _, c := range n.Children() {
			if !g.Contains(c) {
				addable = false
				break
			}
		}
		if addable {
			out = append(out, n)
		}
	}
	return out
}

// DistanceOracle returns the size of the symmetric difference between the
// node sets of g and goal: (# objects still to create) + (# spurious objects
// created). A combinatorial ground-truth distance, independent of any learned
// estimate.
func (g *Graph) DistanceOracle(goal *Graph) int {
	n := 0
	for d := range g.nodes {
		if _, ok := goal.nodes[d]; !ok {
			n++
		}
	}
	for d := range goal.nodes {
		if _, ok := g.nodes[d]; !ok {
			n++
		}
	}
	return n
}

// PrettyPrint renders the graph as a numbered listing in dependency order:
//
//	$0 <- (rect 1 2 5 6)
//	$1 <- (union $0 $0)
func (g *Graph) PrettyPrint() string {
	node2index := make(map[uint64]int)
	memo := make(map[Node]uint64)
	var codes []string

	var getIndex func(n Node) int
	getIndex = func(n Node) int {
		d := digestNode(n, memo)
		if i, ok := node2index[d]; ok {
			return i
		}
		parts := make([]string, 0, 4)
		for _, tok := range n.Serialize() {
			if tok.Ref != nil {
				parts = append(parts, fmt.Sprintf("$%d", getIndex(tok.Ref)))
			} else {
				parts = append(parts, tok.Lit)
			}
		}
		i := len(codes)
		node2index[d] = i
		codes = append(codes, "("+strings.Join(parts, " ")+")")
		return i
	}

	for _, n := range g.OrderedObjects() {
		getIndex(n)
	}

	lines := make([]string, len(codes))
	for i, code := range codes {
		lines[i] = fmt.Sprintf("$%d <- %s", i, code)
	}
	return strings.Join(lines, "\n")
}
