package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcademo/internal/feature/counter"
	"github.com/roach88/tcademo/internal/feature/todolist"
)

func TestCodec_RoundTrip(t *testing.T) {
	lines := []string{
		"counter.increment",
		"counter.decrement",
		"counter.reset",
		"counter.button.tap",
		"counter.button.delegate count-changed",
		"todos.draft",
		"todos.draft buy milk",
		"todos.draft  padded ",
		"todos.add",
		"todos.remove 00000000-0000-0000-0000-000000000001",
		"todos.toggle 00000000-0000-0000-0000-000000000002",
		"todos.delete 0,2",
		"todos.todo 00000000-0000-0000-0000-000000000003 toggle",
		"todos.todo 00000000-0000-0000-0000-000000000003 text",
		"todos.todo 00000000-0000-0000-0000-000000000003 text new words",
		"timer.start",
		"timer.stop",
		"timer.reset",
		"timer.tick",
		"tab todos",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			a, err := Parse(line)
			require.NoError(t, err)
			assert.Equal(t, line, Format(a))
			assert.Equal(t, line, a.String())
		})
	}
}

func TestCodec_ParseShapes(t *testing.T) {
	assert.Equal(t, Counter{Action: counter.Increment{}}, MustParse("  counter.increment  "))
	assert.Equal(t, Todos{Action: todolist.Delete{Offsets: []int{1, 3}}}, MustParse("todos.delete 1, 3"))
	assert.Equal(t, Todos{Action: todolist.DraftChanged{Text: "a  b"}}, MustParse("todos.draft a  b"))
}

func TestCodec_Rejects(t *testing.T) {
	for _, line := range []string{
		"",
		"counter.explode",
		"counter.increment 2",
		"counter.button.delegate nope",
		"todos.remove not-a-uuid",
		"todos.delete",
		"todos.delete 1,x",
		"todos.delete -1",
		"todos.todo 00000000-0000-0000-0000-000000000003 frobnicate",
		"todos.todo bad toggle",
		"tab settings",
	} {
		_, err := Parse(line)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, "line %q", line)
	}
}
