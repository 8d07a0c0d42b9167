package entity

// CartSummary is the backend's view of a cart: a list of product identities
// plus a server-computed total. Product details are resolved separately.
type CartSummary struct {
	CartID     ID      `json:"cartId"`
	UserID     ID      `json:"userId"`
	ProductIDs []ID    `json:"productIds"`
	TotalPrice float64 `json:"totalPrice"`
}

// ValidProductIDs returns the product identities that survived decoding.
func (c *CartSummary) ValidProductIDs() []ID {
	out := make([]ID, 0, len(c.ProductIDs))
	for _, id := range c.ProductIDs {
		if id.Valid() {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports membership of a product by identity equality.
func (c *CartSummary) Contains(productID ID) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
