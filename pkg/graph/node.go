// Package graph provides the program graph representation used by the search
// engine: an immutable set of program objects ("nodes") identified by a
// structural content digest, so that independently derived graphs with the
// same content compare equal and deduplicate cleanly.
//
// The DSL itself is a collaborator: callers supply their own Node
// implementations (a closed set of object kinds with type-switch dispatch is
// the intended shape, see pkg/dsl/csg for a reference implementation).
package graph

import (
	"hash/fnv"
	"strconv"
)

// Node is a single program object. Implementations must be deterministic:
// Execute always yields the same value, Serialize always yields the same
// token sequence. Nodes are used as map keys during digest computation, so
// implementations should use pointer receivers or otherwise be comparable.
type Node interface {
	// Execute evaluates the object to a comparable value.
	Execute() any

	// Children returns the direct dependencies of this object.
	Children() []Node

	// Serialize renders the object as a flat token line, e.g.
	// (union $0 $1) becomes [Lit("union"), Ref(a), Ref(b)].
	Serialize() []Token
}

// Token is one element of a serialized program line: either a literal lexeme
// or a reference to another object.
type Token struct {
	Lit string
	Ref Node // non-nil for object references
}

// Lit builds a literal token.
func Lit(s string) Token { return Token{Lit: s} }

// Ref builds an object-reference token.
func Ref(n Node) Token { return Token{Ref: n} }

// LineParser builds a concrete DSL object from a resolved token line.
// Returning a nil Node (with nil error) means the line is syntactically
// invalid; the search layer treats such proposals as "no candidate".
type LineParser interface {
	ParseLine(tokens []Token) (Node, error)
}

// Digest returns the structural content hash of a node: FNV-1a over its
// serialized lexemes and, recursively, the digests of referenced children.
// Two nodes with the same structure hash identically regardless of how or
// where they were built.
func Digest(n Node) uint64 {
	memo := make(map[Node]uint64)
	return digestNode(n, memo)
}

func digestNode(n Node, memo map[Node]uint64) uint64 {
	if d, ok := memo[n]; ok {
		return d
	}
	h := fnv.New64a()
	for _, tok := range n.Serialize() {
		if tok.Ref != nil {
			child := digestNode(tok.Ref, memo)
			h.Write([]byte("$" + strconv.FormatUint(child, 16)))
		} else {
			h.Write([]byte(tok.Lit))
		}
		// Separator prevents ["ab","c"] from colliding with ["a","bc"].
		h.Write([]byte{0})
	}
	d := h.Sum64()
	memo[n] = d
	return d
}
