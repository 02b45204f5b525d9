package reducer

import (
	"github.com/roach88/tcademo/internal/effect"
)

// Scope mounts child on the slot of P selected by lens.
//
// Only actions that path extracts reach the child; every other action
// returns the parent state unchanged. Child effects are lifted into parent
// actions with path.Embed and their cancellation IDs are nested under name,
// so the same child mounted twice under different names never shares an ID.
func Scope[P, PA, C, CA any](
	name string,
	lens Lens[P, C],
	path CasePath[PA, CA],
	child Reducer[C, CA],
) Reducer[P, PA] {
	return Func[P, PA](func(state P, action PA) (P, effect.Effect[PA]) {
		ca, ok := path.Extract(action)
		if !ok {
			return state, effect.None[PA]()
		}
		next, e := child.Reduce(lens.Get(state), ca)
		return lens.Set(state, next), effect.Map(e, path.Embed).Scoped(name)
	})
}
