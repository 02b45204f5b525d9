package reducer

import (
	"github.com/roach88/tcademo/internal/effect"
)

// OnDelegate returns a parent reducer that reacts to child actions of the
// concrete type D and ignores every other action.
//
// D is the child's delegate: an action the child sends to itself (usually
// through effect.Send) to tell its parent something happened. The child
// treats it as a no-op. OnDelegate is listed after the child's Scope in
// Combine, so handle sees state after the child reduced the delegate action.
func OnDelegate[P, PA, CA, D any](
	path CasePath[PA, CA],
	handle func(state P, delegate D) (P, effect.Effect[PA]),
) Reducer[P, PA] {
	return Func[P, PA](func(state P, action PA) (P, effect.Effect[PA]) {
		ca, ok := path.Extract(action)
		if !ok {
			return state, effect.None[PA]()
		}
		d, ok := any(ca).(D)
		if !ok {
			return state, effect.None[PA]()
		}
		return handle(state, d)
	})
}
