package models

import "time"

// ExpenseCategory is a closed enum of expense buckets.
type ExpenseCategory string

const (
	ExpenseSupplies  ExpenseCategory = "supplies"
	ExpenseRent      ExpenseCategory = "rent"
	ExpenseSalaries  ExpenseCategory = "salaries"
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseMarketing ExpenseCategory = "marketing"
	ExpenseInsurance ExpenseCategory = "insurance"
	ExpenseEquipment ExpenseCategory = "equipment"
	ExpenseOther     ExpenseCategory = "other"
)

// Valid reports whether c is one of the known expense categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseSupplies, ExpenseRent, ExpenseSalaries, ExpenseUtilities,
		ExpenseMarketing, ExpenseInsurance, ExpenseEquipment, ExpenseOther:
		return true
	}
	return false
}

// Expense is a clinic outgoing.
type Expense struct {
	Base
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	Category      ExpenseCategory `json:"category"`
	Date          time.Time       `json:"date"`
	Supplier      string          `json:"supplier,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}
