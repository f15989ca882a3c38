package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oilFilter(price int64) Product {
	return Product{ID: "1", Title: "Oil filter", Brand: "Mann", Price: price, Availability: "in stock", Image: "img/filter.png"}
}

func TestParseID(t *testing.T) {
	assert.Equal(t, ID("42"), ParseID("  42 "))
	assert.True(t, ParseID(" ").IsZero())
}

// --- Product ---

func TestProduct_Validate(t *testing.T) {
	assert.NoError(t, oilFilter(1000).Validate())
	assert.Error(t, Product{Title: "no id"}.Validate())
	assert.Error(t, Product{ID: "1", Price: -1}.Validate())
}

// --- Cart mutations ---

func TestCart_AddSameProductMergesQuantity(t *testing.T) {
	c := NewCart(nil)
	c.Add(oilFilter(1000), 2)
	c.Add(oilFilter(1200), 3)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.Equal(t, int64(1000), c.Lines[0].Price, "snapshot price is kept")
	assert.Equal(t, int64(5000), c.Total())
	assert.Equal(t, 5, c.LineCount())
}

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	c := NewCart(nil)
	c.Add(Product{ID: "2", Price: 10}, 1)
	c.Add(Product{ID: "1", Price: 20}, 1)
	c.Add(Product{ID: "2", Price: 10}, 1)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, ID("2"), c.Lines[0].ID)
	assert.Equal(t, ID("1"), c.Lines[1].ID)
}

func TestCart_Remove(t *testing.T) {
	c := NewCart(nil)
	c.Add(oilFilter(1000), 1)

	assert.False(t, c.Remove("99"))
	assert.Len(t, c.Lines, 1)
	assert.True(t, c.Remove("1"))
	assert.Empty(t, c.Lines)
}

func TestCart_SetQuantity(t *testing.T) {
	c := NewCart(nil)
	c.Add(oilFilter(1000), 1)

	assert.True(t, c.SetQuantity("1", 4))
	assert.Equal(t, 4, c.Lines[0].Quantity)
	assert.Equal(t, int64(4000), c.Total())

	assert.False(t, c.SetQuantity("99", 5))

	assert.True(t, c.SetQuantity("1", -3))
	assert.Empty(t, c.Lines)
}

func TestCart_AddPastMaxIntIsRejected(t *testing.T) {
	c := NewCart(nil)
	require.NoError(t, c.Add(oilFilter(0), math.MaxInt))

	err := c.Add(oilFilter(0), 1)

	assert.ErrorIs(t, err, ErrQuantityOverflow)
	assert.Equal(t, math.MaxInt, c.Lines[0].Quantity)
}

func TestCart_TotalsSaturate(t *testing.T) {
	c := NewCart([]Line{
		{ID: "1", Price: math.MaxInt64 / 2, Quantity: 3},
		{ID: "2", Price: 1, Quantity: math.MaxInt},
		{ID: "3", Price: 1, Quantity: 1},
	})

	assert.Equal(t, int64(math.MaxInt64), c.Lines[0].Subtotal())
	assert.Equal(t, int64(math.MaxInt64), c.Total())
	assert.Equal(t, math.MaxInt, c.LineCount())
}

func TestCart_CheckBounds(t *testing.T) {
	ok := NewCart([]Line{{ID: "1", Price: math.MaxInt64 / 2, Quantity: 2}})
	assert.NoError(t, ok.CheckBounds())

	tests := map[string]*Cart{
		"subtotal": NewCart([]Line{{ID: "1", Price: math.MaxInt64 / 2, Quantity: 3}}),
		"total": NewCart([]Line{
			{ID: "1", Price: math.MaxInt64 / 2, Quantity: 2},
			{ID: "2", Price: 2, Quantity: 1},
		}),
		"units":         NewCart([]Line{{ID: "1", Quantity: math.MaxInt}, {ID: "2", Quantity: 1}}),
		"zero quantity": {Lines: []Line{{ID: "1", Price: 1, Quantity: 0}}},
	}
	for name, c := range tests {
		assert.ErrorIs(t, c.CheckBounds(), ErrQuantityOverflow, name)
	}
}

func TestCart_NormalizeClampsMergedQuantity(t *testing.T) {
	c := NewCart([]Line{{ID: "1", Quantity: math.MaxInt}, {ID: "1", Quantity: 5}})

	c.Normalize()

	require.Len(t, c.Lines, 1)
	assert.Equal(t, math.MaxInt, c.Lines[0].Quantity)
}

func TestCart_Clone_IsIndependent(t *testing.T) {
	c := NewCart(nil)
	c.Add(oilFilter(1000), 1)

	clone := c.Clone()
	clone.SetQuantity("1", 9)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestCart_Normalize(t *testing.T) {
	c := &Cart{Lines: []Line{
		{ID: "1", Price: 100, Quantity: 1},
		{ID: "", Price: 100, Quantity: 1},
		{ID: "2", Price: 50, Quantity: 0},
		{ID: "1", Price: 999, Quantity: 2},
	}}

	changed := c.Normalize()

	assert.Equal(t, 3, changed)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, int64(300), c.Total())
}

// --- Wire shape ---

func TestCart_JSONWireShape(t *testing.T) {
	c := NewCart(nil)
	c.Add(Product{ID: "1", Title: "Brake pads", Brand: "ATE", Price: 3500, Availability: "in stock", Image: "img/pads.png"}, 2)
	c.Add(Product{ID: "kit-2", Price: 100}, 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"title":"Brake pads","brand":"ATE","image":"img/pads.png","price":3500,"availability":"in stock","quantity":2},
		{"id":"kit-2","title":"","brand":"","image":"","price":100,"availability":"","quantity":1}
	]`, string(data))
}

func TestCart_EmptyMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(NewCart(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestCart_UnmarshalNumericAndStringIDsMatch(t *testing.T) {
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"5","price":10,"quantity":1}]`), &c))

	c.Add(Product{ID: "5", Price: 10}, 1)
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestCart_UnmarshalRejectsObject(t *testing.T) {
	var c Cart
	assert.Error(t, json.Unmarshal([]byte(`{"cart":[]}`), &c))
}
