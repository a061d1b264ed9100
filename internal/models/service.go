package models

// Service is a catalog entry. Price is VAT-inclusive; VATRate is a percentage
// (21 means 21%).
type Service struct {
	Base
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"` // minutes
	Category    string  `json:"category"`
	VATRate     float64 `json:"vat_rate"`
}
