package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields splits a raw serialized program line into lexemes, tolerating
// surrounding parentheses and arbitrary whitespace: "(union $0 $1)" yields
// ["union", "$0", "$1"].
func Fields(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	return strings.Fields(raw)
}

// ResolveLine converts raw lexemes into Tokens, resolving "$i" references
// against the objects in scope (positional, as produced by OrderedObjects).
// A reference outside the scope bounds is a malformed line.
func ResolveLine(fields []string, scope []Node) ([]Token, error) {
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "$") {
			i, err := strconv.Atoi(f[1:])
			if err != nil || i < 0 || i >= len(scope) {
				return nil, fmt.Errorf("reference %q out of scope (have %d objects)", f, len(scope))
			}
			tokens = append(tokens, Ref(scope[i]))
			continue
		}
		tokens = append(tokens, Lit(f))
	}
	return tokens, nil
}
