package models

import (
	"fmt"
	"math"
)

// Item is a pallet that may be loaded at most once.
type Item struct {
	ID     int     `json:"id"`
	Weight float64 `json:"weight"`
	Profit float64 `json:"profit"`
	// Ratio is profit per unit of weight. Zero-weight items have a ratio of 0.
	Ratio float64 `json:"ratio"`
}

// NewItem returns an Item with its profit/weight ratio precomputed.
func NewItem(id int, weight, profit float64) Item {
	ratio := 0.0
	if weight > 0 {
		ratio = profit / weight
	}
	return Item{ID: id, Weight: weight, Profit: profit, Ratio: ratio}
}

// Container is the truck being filled.
type Container struct {
	ID       int     `json:"id,omitempty"`
	Capacity float64 `json:"capacity"`
	// MaxItems caps the number of pallets. nil means no cap.
	MaxItems *int `json:"max_items,omitempty"`
}

// Unlimited returns a container with only a weight capacity.
func Unlimited(capacity float64) Container {
	return Container{Capacity: capacity}
}

// WithMaxItems returns a container limited by both weight and pallet count.
func WithMaxItems(capacity float64, maxItems int) Container {
	return Container{Capacity: capacity, MaxItems: &maxItems}
}

// HasMaxItems reports whether a pallet count limit is enforced.
func (c Container) HasMaxItems() bool {
	return c.MaxItems != nil
}

// ItemLimit returns the pallet count limit, or n when none is enforced.
func (c Container) ItemLimit(n int) int {
	if c.MaxItems == nil || *c.MaxItems > n {
		return n
	}
	return *c.MaxItems
}

// Clone returns a deep copy so callers never share the MaxItems pointer.
func (c Container) Clone() Container {
	out := c
	if c.MaxItems != nil {
		k := *c.MaxItems
		out.MaxItems = &k
	}
	return out
}

func (c Container) String() string {
	if c.MaxItems == nil {
		return fmt.Sprintf("capacity=%g", c.Capacity)
	}
	return fmt.Sprintf("capacity=%g max_items=%d", c.Capacity, *c.MaxItems)
}

// ValidateItems checks that every item has finite, non-negative weight and
// profit and that ids are unique.
func ValidateItems(items []Item) error {
	seen := make(map[int]struct{}, len(items))
	for i, it := range items {
		if err := checkQuantity("weight", it.Weight); err != nil {
			return &InputError{Field: fmt.Sprintf("items[%d].weight", i), Reason: err.Error()}
		}
		if err := checkQuantity("profit", it.Profit); err != nil {
			return &InputError{Field: fmt.Sprintf("items[%d].profit", i), Reason: err.Error()}
		}
		if _, dup := seen[it.ID]; dup {
			return &InputError{Field: fmt.Sprintf("items[%d].id", i), Reason: fmt.Sprintf("duplicate id %d", it.ID)}
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// ValidateContainer checks the capacity and optional pallet limit.
func ValidateContainer(c Container) error {
	if err := checkQuantity("capacity", c.Capacity); err != nil {
		return &InputError{Field: "container.capacity", Reason: err.Error()}
	}
	if c.MaxItems != nil && *c.MaxItems < 0 {
		return &InputError{Field: "container.max_items", Reason: fmt.Sprintf("must be >= 0, got %d", *c.MaxItems)}
	}
	return nil
}

func checkQuantity(name string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%s must be finite, got %v", name, v)
	case v < 0:
		return fmt.Errorf("%s must be >= 0, got %g", name, v)
	}
	return nil
}
