package reducer

import (
	"fmt"
	"log/slog"

	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/identified"
)

// ForEach mounts child on every element of the collection selected by lens.
//
// An action addressed to (id, childAction) reaches only the element with
// that id. An id that is not in the collection is a no-op: the element may
// have been removed before an action for it arrived. Child effect IDs are
// nested under "name/<id>" so each element's work is cancelled independently.
func ForEach[P, PA any, ID comparable, C identified.Identifiable[ID], CA any](
	name string,
	lens Lens[P, identified.Array[ID, C]],
	path ElementPath[PA, ID, CA],
	child Reducer[C, CA],
) Reducer[P, PA] {
	return Func[P, PA](func(state P, action PA) (P, effect.Effect[PA]) {
		id, ca, ok := path.Extract(action)
		if !ok {
			return state, effect.None[PA]()
		}

		elems := lens.Get(state)
		var e effect.Effect[CA]
		updated, found := elems.Update(id, func(elem C) C {
			var next C
			next, e = child.Reduce(elem, ca)
			return next
		})
		if !found {
			slog.Debug("action for missing element ignored", "collection", name, "id", fmt.Sprint(id))
			return state, effect.None[PA]()
		}

		embed := func(a CA) PA { return path.Embed(id, a) }
		scope := fmt.Sprintf("%s/%v", name, id)
		return lens.Set(state, updated), effect.Map(e, embed).Scoped(scope)
	})
}
