package models

// ClinicConfig is the singleton clinic record. ReminderDays holds the dunning
// thresholds in days past due, ordered ascending (e.g. [7, 15, 30]).
type ClinicConfig struct {
	Name           string  `json:"name"`
	Logo           string  `json:"logo,omitempty"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	TaxID          string  `json:"tax_id"`
	Website        string  `json:"website,omitempty"`
	BankAccount    string  `json:"bank_account,omitempty"`
	DefaultVATRate float64 `json:"default_vat_rate"`
	InvoicePrefix  string  `json:"invoice_prefix"`
	ReminderDays   []int   `json:"reminder_days"`
}
