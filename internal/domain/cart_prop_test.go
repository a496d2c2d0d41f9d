package domain

import (
	"testing"

	"pgregory.net/rapid"
)

// TestCart_Invariants drives a cart through random sequences of mutations and
// checks that the structural invariants hold after every step: one line per
// product, every quantity at least 1, and totals matching a recomputation
// from scratch.
func TestCart_Invariants(t *testing.T) {
	productIDs := rapid.SampledFrom([]string{"p1", "p2", "p3", "p4", "p5"})

	rapid.Check(t, func(rt *rapid.T) {
		c := &Cart{}
		steps := rapid.IntRange(1, 50).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			id := productIDs.Draw(rt, "product")
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				c.AddItem(CartItem{ProductID: id, Price: 299, Quantity: 1})
			case 1:
				c.SetQuantity(id, rapid.IntRange(0, 10).Draw(rt, "quantity"))
			case 2:
				c.AdjustQuantity(id, rapid.IntRange(-2, 2).Draw(rt, "delta"))
			case 3:
				c.RemoveItem(id)
			case 4:
				c.Clear()
			}

			seen := make(map[string]bool, len(c.Items))
			var units int
			var total int64
			for _, item := range c.Items {
				if seen[item.ProductID] {
					rt.Fatalf("duplicate line for product %s", item.ProductID)
				}
				seen[item.ProductID] = true
				if item.Quantity < 1 {
					rt.Fatalf("line %s has quantity %d", item.ProductID, item.Quantity)
				}
				units += item.Quantity
				total += item.Price * int64(item.Quantity)
			}
			if c.ItemCount() != units {
				rt.Fatalf("ItemCount() = %d, recomputed %d", c.ItemCount(), units)
			}
			if c.TotalAmount() != total {
				rt.Fatalf("TotalAmount() = %d, recomputed %d", c.TotalAmount(), total)
			}
		}
	})
}
