package domain

import (
	"math"
	"time"

	"github.com/xmenbro/AutoRepairCenter/pkg/jsonid"
)

// Cart is the stored cart of one user. Items are kept exactly as the client
// last saved them.
type Cart struct {
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one cart line in the storefront wire shape.
type Item struct {
	ID           jsonid.ID `json:"id" validate:"required"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Image        string    `json:"image"`
	Price        int64     `json:"price" validate:"gte=0"`
	Availability string    `json:"availability"`
	Quantity     int       `json:"quantity" validate:"gte=1"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []Item{}}
}

// TotalAmount calculates the total price of all items in the cart (in minor units).
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// InRange reports whether the unit count and the total amount of items fit
// their integer types. Quantities and prices are assumed non-negative.
func InRange(items []Item) bool {
	var (
		units int
		total int64
	)
	for _, it := range items {
		if units > math.MaxInt-it.Quantity {
			return false
		}
		units += it.Quantity
		if it.Price != 0 && int64(it.Quantity) > math.MaxInt64/it.Price {
			return false
		}
		sub := it.Price * int64(it.Quantity)
		if total > math.MaxInt64-sub {
			return false
		}
		total += sub
	}
	return true
}

// DuplicateID returns the first id that appears on more than one item.
func DuplicateID(items []Item) (jsonid.ID, bool) {
	seen := make(map[jsonid.ID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			return it.ID, true
		}
		seen[it.ID] = struct{}{}
	}
	return "", false
}
