package todolist

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcademo/internal/feature/todo"
	"github.com/roach88/tcademo/internal/testutil"
)

func newFeature() Feature {
	return Feature{IDs: testutil.NewIncrementingUUIDs()}
}

func reduceAll(t *testing.T, f Feature, state State, actions ...Action) State {
	t.Helper()
	r := f.Reducer()
	for _, a := range actions {
		next, e := r.Reduce(state, a)
		require.True(t, e.IsNone())
		state = next
	}
	return state
}

func TestTodoList_AddWithEmptyDraftIsNoop(t *testing.T) {
	f := newFeature()
	for _, draft := range []string{"", "   ", "\t  "} {
		start := State{Draft: draft}
		next := reduceAll(t, f, start, AddTapped{})
		assert.Equal(t, start, next, "draft %q", draft)
	}
}

func TestTodoList_AddAppendsAndClearsDraft(t *testing.T) {
	f := newFeature()

	state := reduceAll(t, f, State{}, DraftChanged{Text: "buy milk"}, AddTapped{})

	require.Equal(t, 1, state.Todos.Len())
	got := state.Todos.At(0)
	assert.Equal(t, todo.State{ID: testutil.SequentialUUID(1), Description: "buy milk"}, got)
	assert.Equal(t, "", state.Draft)
}

func TestTodoList_DraftKeepsSurroundingSpaces(t *testing.T) {
	state := reduceAll(t, newFeature(), State{}, DraftChanged{Text: " eggs "}, AddTapped{})
	assert.Equal(t, " eggs ", state.Todos.At(0).Description)
}

func TestTodoList_RemoveAndToggle(t *testing.T) {
	f := newFeature()
	state := reduceAll(t, f, State{},
		DraftChanged{Text: "a"}, AddTapped{},
		DraftChanged{Text: "b"}, AddTapped{},
		DraftChanged{Text: "c"}, AddTapped{},
	)
	a, b, c := testutil.SequentialUUID(1), testutil.SequentialUUID(2), testutil.SequentialUUID(3)

	state = reduceAll(t, f, state, Toggle{ID: b}, Remove{ID: a})
	assert.Equal(t, []uuid.UUID{b, c}, state.Todos.IDs())
	got, _ := state.Todos.Get(b)
	assert.True(t, got.IsComplete)
	assert.Equal(t, 1, state.Completed())
}

func TestTodoList_MissingIDsAreNoops(t *testing.T) {
	f := newFeature()
	start := reduceAll(t, f, State{}, DraftChanged{Text: "a"}, AddTapped{})
	ghost := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	next := reduceAll(t, f, start,
		Remove{ID: ghost},
		Toggle{ID: ghost},
		Todo{ID: ghost, Action: todo.CheckboxTapped{}},
	)
	assert.Equal(t, start, next)
}

func TestTodoList_DeleteOffsets(t *testing.T) {
	f := newFeature()
	state := reduceAll(t, f, State{},
		DraftChanged{Text: "a"}, AddTapped{},
		DraftChanged{Text: "b"}, AddTapped{},
		DraftChanged{Text: "c"}, AddTapped{},
	)

	state = reduceAll(t, f, state, Delete{Offsets: []int{0, 2, 9}})
	assert.Equal(t, []uuid.UUID{testutil.SequentialUUID(2)}, state.Todos.IDs())
}

func TestTodoList_ForEachRoutesTodoActions(t *testing.T) {
	f := newFeature()
	state := reduceAll(t, f, State{},
		DraftChanged{Text: "a"}, AddTapped{},
		DraftChanged{Text: "b"}, AddTapped{},
	)
	b := testutil.SequentialUUID(2)

	state = reduceAll(t, f, state,
		Todo{ID: b, Action: todo.TextChanged{Text: "bee"}},
		Todo{ID: b, Action: todo.CheckboxTapped{}},
	)

	first := state.Todos.At(0)
	assert.Equal(t, "a", first.Description)
	assert.False(t, first.IsComplete)
	second, _ := state.Todos.Get(b)
	assert.Equal(t, todo.State{ID: b, Description: "bee", IsComplete: true}, second)
}

// Every id present after a random add/remove sequence was introduced by an
// add and not removed since, and no id appears twice.
func TestTodoList_KeyedCollectionInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	f := newFeature()
	r := f.Reducer()

	state := State{}
	live := map[uuid.UUID]bool{}
	var issued []uuid.UUID

	for step := 0; step < 500; step++ {
		if len(issued) == 0 || rng.IntN(3) > 0 {
			state, _ = r.Reduce(state, DraftChanged{Text: "item"})
			state, _ = r.Reduce(state, AddTapped{})
			id := testutil.SequentialUUID(uint64(len(issued) + 1))
			issued = append(issued, id)
			live[id] = true
		} else {
			id := issued[rng.IntN(len(issued))]
			state, _ = r.Reduce(state, Remove{ID: id})
			delete(live, id)
		}

		ids := state.Todos.IDs()
		seen := map[uuid.UUID]bool{}
		for _, id := range ids {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
			require.True(t, live[id], "unexpected id %s", id)
		}
		require.Len(t, ids, len(live))
	}
}

type fixedIDs struct{ id uuid.UUID }

func (g fixedIDs) New() uuid.UUID { return g.id }

func TestTodoList_DuplicateGeneratedIDIsRejected(t *testing.T) {
	f := Feature{IDs: fixedIDs{id: testutil.SequentialUUID(1)}}
	state := reduceAll(t, f, State{}, DraftChanged{Text: "a"}, AddTapped{})

	next := reduceAll(t, f, state, DraftChanged{Text: "b"}, AddTapped{})
	assert.Equal(t, 1, next.Todos.Len())
	assert.Equal(t, "b", next.Draft)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t "))
	assert.False(t, IsBlank("\n"))
	assert.False(t, IsBlank(" x "))
}
