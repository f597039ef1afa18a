package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milan/internal/semantic"
)

func TestDeclareIsIdempotent(t *testing.T) {
	table := semantic.NewTable()
	a := table.Declare("a")
	assert.Same(t, a, table.Declare("a"))
	assert.Equal(t, semantic.Undefined, a.Type)
	assert.Equal(t, -1, a.Address, "no storage before the type is known")
	assert.Nil(t, table.Lookup("b"))
}

func TestFixAllocatesByWidth(t *testing.T) {
	table := semantic.NewTable()
	x := table.Declare("x")
	z := table.Declare("z")
	b := table.Declare("b")

	assert.True(t, table.Fix(x, semantic.Int))
	assert.True(t, table.Fix(z, semantic.Complex))
	assert.True(t, table.Fix(b, semantic.Bool))

	assert.Equal(t, 0, x.Address)
	assert.Equal(t, 1, z.Address)
	assert.Equal(t, 3, b.Address, "a complex variable occupies two slots")
	assert.Equal(t, 4, table.Size())
}

func TestFixDoesNotRetype(t *testing.T) {
	table := semantic.NewTable()
	x := table.Declare("x")
	table.Fix(x, semantic.Int)

	assert.False(t, table.Fix(x, semantic.Complex))
	assert.Equal(t, semantic.Int, x.Type)
	assert.Equal(t, 0, x.Address)
	assert.Equal(t, 1, table.Size())
}

func TestFixUndefinedDefaultsToInt(t *testing.T) {
	table := semantic.NewTable()
	x := table.Declare("x")
	table.Fix(x, semantic.Undefined)
	assert.Equal(t, semantic.Int, x.Type)
}

func TestSymbolsInDeclarationOrder(t *testing.T) {
	table := semantic.NewTable()
	table.Declare("c")
	table.Declare("a")
	table.Declare("b")
	var names []string
	for _, s := range table.Symbols() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
