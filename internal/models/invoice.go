package models

import (
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// InvoiceStatus enumerates the invoice lifecycle states. Overdue is normally
// derived (pending + past due date) but can also be set explicitly.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is one of the known invoice states.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// InvoiceItem is a single line item, owned exclusively by its invoice.
// UnitPrice is VAT-exclusive; Total is the VAT-inclusive line total.
type InvoiceItem struct {
	ID          utils.ShortID `json:"id"`
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	UnitPrice   float64       `json:"unit_price"`
	VATRate     float64       `json:"vat_rate"`
	Total       float64       `json:"total"`
}

// Invoice represents a bill issued to a patient.
// Invariant: Total == Subtotal + VATAmount within 0.01.
type Invoice struct {
	Base
	Number           string         `json:"number"` // e.g. FAC-2024-001
	PatientID        utils.ShortID  `json:"patient_id"`
	AppointmentID    *utils.ShortID `json:"appointment_id,omitempty"`
	Items            []InvoiceItem  `json:"items"`
	Subtotal         float64        `json:"subtotal"`
	VATAmount        float64        `json:"vat_amount"`
	VATRate          float64        `json:"vat_rate"`
	Total            float64        `json:"total"`
	IssueDate        time.Time      `json:"issue_date"`
	DueDate          time.Time      `json:"due_date"`
	PaidDate         *time.Time     `json:"paid_date,omitempty"`
	Status           InvoiceStatus  `json:"status"`
	PaymentMethod    string         `json:"payment_method,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	RemindersSent    int            `json:"reminders_sent"`
	LastReminderDate *time.Time     `json:"last_reminder_date,omitempty"`
}
