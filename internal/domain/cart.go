package domain

import "time"

// Cart represents a shopping cart.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Items     []CartItem `json:"items"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartItem represents a single line in the cart. Price is in cents.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
	Category  string `json:"category,omitempty"`
}

// TotalAmount calculates the total price of all items in the cart (in cents).
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart, summed over lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart line for the given product ID.
// Returns -1 if not found. O(n) search, centralized for easier optimization later.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges the given line into the cart. An existing line for the same
// product has its quantity increased; otherwise the line is appended, so each
// product occupies at most one line and insertion order is preserved.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if idx := c.FindItemIndex(item.ProductID); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets the quantity of the line for the given product. A quantity
// below 1 removes the line. Returns false when no such line exists, in which
// case the cart is unchanged.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	idx := c.FindItemIndex(productID)
	if idx < 0 {
		return false
	}
	if quantity < 1 {
		c.removeAt(idx)
		return true
	}
	c.Items[idx].Quantity = quantity
	return true
}

// AdjustQuantity changes a line's quantity by delta. The line is removed when
// the result drops below 1. Returns false when no line matches the product.
func (c *Cart) AdjustQuantity(productID string, delta int) bool {
	idx := c.FindItemIndex(productID)
	if idx < 0 {
		return false
	}
	q := c.Items[idx].Quantity + delta
	if q < 1 {
		c.removeAt(idx)
		return true
	}
	c.Items[idx].Quantity = q
	return true
}

// RemoveItem deletes the line for the given product. Returns false when no
// line matches, leaving the cart unchanged.
func (c *Cart) RemoveItem(productID string) bool {
	idx := c.FindItemIndex(productID)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

// Clear removes every line from the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}
