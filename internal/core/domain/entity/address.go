package entity

// Address is a saved delivery address.
type Address struct {
	AddressID  ID     `json:"addressId"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	UserID     ID     `json:"userId"`
}

// AddressForm carries the fields of a new or edited address. All five are
// required before persistence is attempted.
type AddressForm struct {
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number" validate:"required"`
	City       string `json:"city" validate:"required"`
	Country    string `json:"country" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}
