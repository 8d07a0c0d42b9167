package entity

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductAvailable ProductStatus = "AVAILABLE"
	ProductReserved  ProductStatus = "RESERVED"
	ProductSold      ProductStatus = "SOLD"
)

// Product is a refreshable snapshot of a listed good. The backend is the
// system of record; the client never mutates a snapshot in place.
type Product struct {
	ProductID   ID            `json:"productId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Status      ProductStatus `json:"status"`
	UserID      ID            `json:"userId"`
	Image       string        `json:"image,omitempty"`
	Size        string        `json:"size,omitempty"`
}
