package reducer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/identified"
)

// Child unit: a tally that emits Bumped as its delegate on Tap.

type tally struct {
	ID    int
	Count int
}

func (t tally) Key() int { return t.ID }

type tallyAction interface{ isTally() }

type inc struct{}
type tap struct{}
type bumped struct{}
type startWork struct{}

func (inc) isTally()       {}
func (tap) isTally()       {}
func (bumped) isTally()    {}
func (startWork) isTally() {}

var workID = effect.NewID("work")

var tallyReducer = Func[tally, tallyAction](func(s tally, a tallyAction) (tally, effect.Effect[tallyAction]) {
	switch a.(type) {
	case inc:
		s.Count++
	case tap:
		return s, effect.Send[tallyAction](bumped{})
	case startWork:
		return s, effect.Cancel[tallyAction](workID)
	}
	return s, effect.None[tallyAction]()
})

// Parent: one fixed tally slot, a collection of tallies, and its own total.

type parent struct {
	Main  tally
	Many  identified.Array[int, tally]
	Total int
}

type parentAction interface{ isParent() }

type mainAction struct{ Action tallyAction }
type manyAction struct {
	ID     int
	Action tallyAction
}
type noop struct{}

func (mainAction) isParent() {}
func (manyAction) isParent() {}
func (noop) isParent()       {}

var mainPath = Case[parentAction](
	func(a tallyAction) mainAction { return mainAction{Action: a} },
	func(w mainAction) tallyAction { return w.Action },
)

var mainLens = Lens[parent, tally]{
	Get: func(p parent) tally { return p.Main },
	Set: func(p parent, c tally) parent { p.Main = c; return p },
}

var manyLens = Lens[parent, identified.Array[int, tally]]{
	Get: func(p parent) identified.Array[int, tally] { return p.Many },
	Set: func(p parent, c identified.Array[int, tally]) parent { p.Many = c; return p },
}

var manyPath = ElementPath[parentAction, int, tallyAction]{
	Extract: func(a parentAction) (int, tallyAction, bool) {
		m, ok := a.(manyAction)
		return m.ID, m.Action, ok
	},
	Embed: func(id int, a tallyAction) parentAction { return manyAction{ID: id, Action: a} },
}

func newParent(t *testing.T) parent {
	t.Helper()
	many, err := identified.FromSlice[int]([]tally{{ID: 1}, {ID: 2}})
	require.NoError(t, err)
	return parent{Main: tally{ID: 0}, Many: many}
}

func TestScope_RoutesOnlyWrappedActions(t *testing.T) {
	r := Scope("main", mainLens, mainPath, Reducer[tally, tallyAction](tallyReducer))
	start := newParent(t)

	next, e := r.Reduce(start, mainAction{Action: inc{}})
	assert.Equal(t, 1, next.Main.Count)
	assert.True(t, e.IsNone())

	same, e := r.Reduce(next, noop{})
	assert.Equal(t, next, same)
	assert.True(t, e.IsNone())
}

func TestScope_LiftsAndNamespacesEffects(t *testing.T) {
	r := Scope("main", mainLens, mainPath, Reducer[tally, tallyAction](tallyReducer))
	start := newParent(t)

	_, e := r.Reduce(start, mainAction{Action: tap{}})
	assert.Equal(t, []parentAction{mainAction{Action: bumped{}}}, e.Actions())

	_, e = r.Reduce(start, mainAction{Action: startWork{}})
	assert.Equal(t, []effect.ID{workID.Scoped("main")}, e.Cancelled())
}

func TestForEach_RoutesByID(t *testing.T) {
	r := ForEach("many", manyLens, manyPath, Reducer[tally, tallyAction](tallyReducer))
	start := newParent(t)

	next, _ := r.Reduce(start, manyAction{ID: 2, Action: inc{}})
	one, _ := next.Many.Get(1)
	two, _ := next.Many.Get(2)
	assert.Equal(t, 0, one.Count)
	assert.Equal(t, 1, two.Count)

	// The input state is not modified.
	old, _ := start.Many.Get(2)
	assert.Equal(t, 0, old.Count)
}

func TestForEach_MissingIDIsNoop(t *testing.T) {
	r := ForEach("many", manyLens, manyPath, Reducer[tally, tallyAction](tallyReducer))
	start := newParent(t)

	next, e := r.Reduce(start, manyAction{ID: 99, Action: tap{}})
	assert.Equal(t, start, next)
	assert.True(t, e.IsNone())
}

func TestForEach_EffectsCarryElementID(t *testing.T) {
	r := ForEach("many", manyLens, manyPath, Reducer[tally, tallyAction](tallyReducer))
	start := newParent(t)

	_, e := r.Reduce(start, manyAction{ID: 1, Action: tap{}})
	assert.Equal(t, []parentAction{manyAction{ID: 1, Action: bumped{}}}, e.Actions())

	_, e = r.Reduce(start, manyAction{ID: 2, Action: startWork{}})
	assert.Equal(t, "many/2/work", e.Cancelled()[0].String())
}

func TestOnDelegate_ReactsOnlyToDelegate(t *testing.T) {
	onBump := OnDelegate[parent, parentAction, tallyAction, bumped](mainPath,
		func(p parent, _ bumped) (parent, effect.Effect[parentAction]) {
			p.Total++
			return p, effect.None[parentAction]()
		})
	start := newParent(t)

	next, _ := onBump.Reduce(start, mainAction{Action: bumped{}})
	assert.Equal(t, 1, next.Total)

	for _, a := range []parentAction{mainAction{Action: inc{}}, mainAction{Action: tap{}}, noop{}} {
		same, e := onBump.Reduce(start, a)
		assert.Equal(t, start, same)
		assert.True(t, e.IsNone())
	}
}

func TestCombine_ChildBeforeParent(t *testing.T) {
	var observed int
	parentOwn := Func[parent, parentAction](func(p parent, a parentAction) (parent, effect.Effect[parentAction]) {
		if _, ok := a.(mainAction); ok {
			observed = p.Main.Count
		}
		return p, effect.None[parentAction]()
	})
	r := Combine[parent, parentAction](
		Scope("main", mainLens, mainPath, Reducer[tally, tallyAction](tallyReducer)),
		parentOwn,
	)

	next, _ := r.Reduce(newParent(t), mainAction{Action: inc{}})
	assert.Equal(t, 1, next.Main.Count)
	assert.Equal(t, 1, observed)
}

func TestCombine_MergesEffectsInOrder(t *testing.T) {
	first := Func[int, string](func(s int, _ string) (int, effect.Effect[string]) {
		return s + 1, effect.Send("first")
	})
	second := Func[int, string](func(s int, _ string) (int, effect.Effect[string]) {
		return s * 10, effect.Send("second")
	})

	next, e := Combine[int, string](first, second).Reduce(1, "go")
	assert.Equal(t, 20, next)
	assert.Equal(t, []string{"first", "second"}, e.Actions())
}

func TestEmpty(t *testing.T) {
	next, e := Empty[int, string]().Reduce(7, "x")
	assert.Equal(t, 7, next)
	assert.True(t, e.IsNone())
}
