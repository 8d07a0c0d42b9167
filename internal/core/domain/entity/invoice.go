package entity

// Invoice is the terminal artifact of a checkout. Immutable once created,
// except for administrative deletion on the backend.
type Invoice struct {
	InvoiceID   ID      `json:"invoiceId"`
	UserID      ID      `json:"userId"`
	AddressID   ID      `json:"addressId"`
	TotalAmount float64 `json:"totalAmount"`
	ProductIDs  []ID    `json:"productIds,omitempty"`
	InvoiceDate string  `json:"invoiceDate,omitempty"`
}
