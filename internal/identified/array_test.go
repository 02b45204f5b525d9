package identified

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (i item) Key() int { return i.ID }

func mustArray(t *testing.T, items ...item) Array[int, item] {
	t.Helper()
	a, err := FromSlice[int](items)
	require.NoError(t, err)
	return a
}

func TestArray_AppendPreservesOrder(t *testing.T) {
	var a Array[int, item]
	a, err := a.Append(item{ID: 3, Name: "c"})
	require.NoError(t, err)
	a, err = a.Append(item{ID: 1, Name: "a"})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1}, a.IDs())
	assert.Equal(t, 2, a.Len())
}

func TestArray_AppendRejectsDuplicate(t *testing.T) {
	a := mustArray(t, item{ID: 1})

	same, err := a.Append(item{ID: 1, Name: "again"})
	require.Error(t, err)
	var dup *DuplicateIDError[int]
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.ID)
	assert.Equal(t, a, same)
}

func TestFromSlice_RejectsDuplicates(t *testing.T) {
	_, err := FromSlice[int]([]item{{ID: 1}, {ID: 2}, {ID: 1}})
	require.Error(t, err)
}

func TestArray_RemovePreservesRemainingOrder(t *testing.T) {
	a := mustArray(t, item{ID: 1}, item{ID: 2}, item{ID: 3}, item{ID: 4})

	b, ok := a.Remove(2)
	require.True(t, ok)
	assert.Equal(t, []int{1, 3, 4}, b.IDs())

	// The receiver is untouched.
	assert.Equal(t, []int{1, 2, 3, 4}, a.IDs())
}

func TestArray_RemoveMissingIsNoop(t *testing.T) {
	a := mustArray(t, item{ID: 1})
	b, ok := a.Remove(99)
	assert.False(t, ok)
	assert.Equal(t, a, b)
}

func TestArray_RemoveAt(t *testing.T) {
	a := mustArray(t, item{ID: 1}, item{ID: 2}, item{ID: 3})

	b := a.RemoveAt(0, 2, 7, -1)
	assert.Equal(t, []int{2}, b.IDs())

	assert.Equal(t, a, a.RemoveAt(5))
}

func TestArray_UpdateIsCopyOnWrite(t *testing.T) {
	a := mustArray(t, item{ID: 1, Name: "old"}, item{ID: 2})

	b, ok := a.Update(1, func(i item) item {
		i.Name = "new"
		return i
	})
	require.True(t, ok)

	got, _ := b.Get(1)
	assert.Equal(t, "new", got.Name)
	old, _ := a.Get(1)
	assert.Equal(t, "old", old.Name)
}

func TestArray_UpdateMissing(t *testing.T) {
	a := mustArray(t, item{ID: 1})
	b, ok := a.Update(2, func(i item) item { return i })
	assert.False(t, ok)
	assert.Equal(t, a, b)
}

func TestArray_UpdateChangingIDPanics(t *testing.T) {
	a := mustArray(t, item{ID: 1})
	assert.Panics(t, func() {
		a.Update(1, func(i item) item {
			i.ID = 2
			return i
		})
	})
}

func TestArray_EmptyEquality(t *testing.T) {
	a := mustArray(t, item{ID: 1})
	emptied, _ := a.Remove(1)

	assert.Equal(t, Array[int, item]{}, emptied)
	assert.True(t, emptied.IsEmpty())
}

func TestArray_JSON(t *testing.T) {
	var empty Array[int, item]
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	a := mustArray(t, item{ID: 2, Name: "b"}, item{ID: 1, Name: "a"})
	data, err = json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2,"name":"b"},{"id":1,"name":"a"}]`, string(data))

	var decoded Array[int, item]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, a, decoded)

	require.Error(t, json.Unmarshal([]byte(`[{"id":1},{"id":1}]`), &decoded))
}

func TestArray_All(t *testing.T) {
	a := mustArray(t, item{ID: 5}, item{ID: 6})
	var seen []int
	for i, e := range a.All() {
		seen = append(seen, i*100+e.ID)
	}
	assert.Equal(t, []int{5, 106}, seen)
}
