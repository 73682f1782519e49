package regmap

import "strings"

// Resolution is the outcome of looking up a register map element by a
// (possibly partial) name.
type Resolution[E Named] struct {
	// Query is the name the lookup was asked for.
	Query string

	// Matches holds every candidate whose name begins with the query. When
	// the query equals one candidate name outright, only that candidate is
	// kept no matter how many share it as a prefix.
	Matches []E

	exact bool
}

// Unique returns whether the lookup settled on exactly one element.
func (r Resolution[E]) Unique() bool {
	return len(r.Matches) == 1
}

// Ambiguous returns whether more than one element matched.
func (r Resolution[E]) Ambiguous() bool {
	return len(r.Matches) > 1
}

// None returns whether nothing matched.
func (r Resolution[E]) None() bool {
	return len(r.Matches) == 0
}

// Exact returns whether the unique match has exactly the queried name
// rather than just sharing its prefix.
func (r Resolution[E]) Exact() bool {
	return r.exact
}

// Entity returns the resolved element. Only meaningful when Unique().
func (r Resolution[E]) Entity() E {
	if len(r.Matches) == 0 {
		var zero E
		return zero
	}

	return r.Matches[0]
}

// Resolve looks query up among candidates by case-insensitive prefix. An
// exact name match always wins over a wider prefix match set, so a
// register named UART1 stays reachable next to an UART12. The empty query
// matches nothing.
func Resolve[E Named](candidates []E, query string) Resolution[E] {
	resolution := Resolution[E]{Query: query}
	if query == "" {
		return resolution
	}

	upperQuery := strings.ToUpper(query)

	for _, candidate := range candidates {
		name := strings.ToUpper(candidate.GetName())

		if name == upperQuery {
			resolution.Matches = []E{candidate}
			resolution.exact = true
			return resolution
		}

		if strings.HasPrefix(name, upperQuery) {
			resolution.Matches = append(resolution.Matches, candidate)
		}
	}

	return resolution
}
