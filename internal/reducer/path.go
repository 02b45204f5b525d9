package reducer

// Lens focuses on a child value C inside a parent value P.
// Set returns a new parent; it must not modify the one passed in.
type Lens[P, C any] struct {
	Get func(P) C
	Set func(P, C) P
}

// CasePath focuses on the child actions CA wrapped inside parent actions PA.
// Extract reports false for parent actions that do not wrap a child action.
type CasePath[PA, CA any] struct {
	Extract func(PA) (CA, bool)
	Embed   func(CA) PA
}

// ElementPath focuses on child actions addressed to one element of an
// identified collection.
type ElementPath[PA any, ID comparable, CA any] struct {
	Extract func(PA) (ID, CA, bool)
	Embed   func(ID, CA) PA
}

// Case builds a CasePath for a parent action variant W that wraps a child
// action. wrap builds the variant and unwrap reads the child action back.
func Case[PA, W, CA any](wrap func(CA) W, unwrap func(W) CA) CasePath[PA, CA] {
	return CasePath[PA, CA]{
		Extract: func(pa PA) (CA, bool) {
			w, ok := any(pa).(W)
			if !ok {
				var zero CA
				return zero, false
			}
			return unwrap(w), true
		},
		Embed: func(ca CA) PA {
			return any(wrap(ca)).(PA)
		},
	}
}
