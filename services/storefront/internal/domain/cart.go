package domain

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/xmenbro/AutoRepairCenter/pkg/validator"
)

// ErrQuantityOverflow is returned when a quantity, unit count or total would
// leave the range of its integer type.
var ErrQuantityOverflow = errors.New("cart quantity out of range")

// Product is one catalog entry as handed to AddItem.
type Product struct {
	ID           ID     `json:"id" validate:"required"`
	Title        string `json:"title"`
	Brand        string `json:"brand"`
	Price        int64  `json:"price" validate:"gte=0"`
	Availability string `json:"availability"`
	Image        string `json:"image"`
}

// Validate checks the product has an id and a non-negative price.
func (p Product) Validate() error {
	return validator.Validate(p)
}

// Line is one product's presence in a cart. Everything except Quantity is a
// snapshot of the product taken when the line was created.
type Line struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Brand        string `json:"brand"`
	Image        string `json:"image"`
	Price        int64  `json:"price"`
	Availability string `json:"availability"`
	Quantity     int    `json:"quantity"`
}

// NewLine snapshots p into a line holding quantity units.
func NewLine(p Product, quantity int) Line {
	return Line{
		ID:           p.ID,
		Title:        p.Title,
		Brand:        p.Brand,
		Image:        p.Image,
		Price:        p.Price,
		Availability: p.Availability,
		Quantity:     quantity,
	}
}

// Subtotal returns Price × Quantity, saturated at the int64 limits.
func (l Line) Subtotal() int64 {
	v, ok := mulInt64(l.Price, int64(l.Quantity))
	if !ok {
		if (l.Price < 0) != (l.Quantity < 0) {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return v
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, false
	}
	return p, true
}

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// Cart is an ordered set of lines with at most one line per product id.
// It is serialized as a bare JSON array of lines.
type Cart struct {
	Lines []Line
}

// NewCart returns a cart holding lines after Normalize.
func NewCart(lines []Line) *Cart {
	c := &Cart{Lines: lines}
	c.Normalize()
	return c
}

// FindLine returns the index of the line for id, or -1.
func (c *Cart) FindLine(id ID) int {
	for i, l := range c.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Add increments the line for p by quantity, or appends a new snapshot line.
// The existing snapshot (price included) is kept on increment. An increment
// past math.MaxInt leaves the cart unchanged and returns ErrQuantityOverflow.
func (c *Cart) Add(p Product, quantity int) error {
	if idx := c.FindLine(p.ID); idx >= 0 {
		if quantity > 0 && c.Lines[idx].Quantity > math.MaxInt-quantity {
			return ErrQuantityOverflow
		}
		c.Lines[idx].Quantity += quantity
		return nil
	}
	c.Lines = append(c.Lines, NewLine(p, quantity))
	return nil
}

// Remove drops the line for id and reports whether one was present.
func (c *Cart) Remove(id ID) bool {
	idx := c.FindLine(id)
	if idx < 0 {
		return false
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	return true
}

// SetQuantity sets the line's quantity; quantity <= 0 removes the line.
// It reports false when there is no line for id.
func (c *Cart) SetQuantity(id ID, quantity int) bool {
	idx := c.FindLine(id)
	if idx < 0 {
		return false
	}
	if quantity <= 0 {
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		return true
	}
	c.Lines[idx].Quantity = quantity
	return true
}

// LineCount returns the sum of quantities, saturated at math.MaxInt.
func (c *Cart) LineCount() int {
	n := 0
	for _, l := range c.Lines {
		if l.Quantity > 0 && n > math.MaxInt-l.Quantity {
			return math.MaxInt
		}
		n += l.Quantity
	}
	return n
}

// Total returns Σ price × quantity, saturated at the int64 limits.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		sum, ok := addInt64(total, l.Subtotal())
		if !ok {
			if total < 0 {
				return math.MinInt64
			}
			return math.MaxInt64
		}
		total = sum
	}
	return total
}

// CheckBounds returns ErrQuantityOverflow when any quantity is below 1 or
// the unit count, a subtotal or the total does not fit its integer type.
// A cart that passes reports exact LineCount and Total values.
func (c *Cart) CheckBounds() error {
	var (
		units int
		total int64
	)
	for _, l := range c.Lines {
		if l.Quantity < 1 || units > math.MaxInt-l.Quantity {
			return ErrQuantityOverflow
		}
		units += l.Quantity
		sub, ok := mulInt64(l.Price, int64(l.Quantity))
		if !ok {
			return ErrQuantityOverflow
		}
		if total, ok = addInt64(total, sub); !ok {
			return ErrQuantityOverflow
		}
	}
	return nil
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}

// Normalize restores the cart invariants on data read from storage: lines
// without an id or with quantity < 1 are dropped and duplicate ids are merged
// into the first occurrence. It returns the number of lines changed.
func (c *Cart) Normalize() int {
	changed := 0
	out := make([]Line, 0, len(c.Lines))
	seen := make(map[ID]int, len(c.Lines))
	for _, l := range c.Lines {
		if l.ID.IsZero() || l.Quantity < 1 {
			changed++
			continue
		}
		if idx, ok := seen[l.ID]; ok {
			if out[idx].Quantity > math.MaxInt-l.Quantity {
				out[idx].Quantity = math.MaxInt
			} else {
				out[idx].Quantity += l.Quantity
			}
			changed++
			continue
		}
		seen[l.ID] = len(out)
		out = append(out, l)
	}
	c.Lines = out
	return changed
}

// MarshalJSON writes the cart as an array; an empty cart is [].
func (c Cart) MarshalJSON() ([]byte, error) {
	if c.Lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Lines)
}

// UnmarshalJSON reads an array of lines; null yields an empty cart.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.Lines = lines
	return nil
}
