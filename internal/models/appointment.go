package models

import (
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// AppointmentStatus enumerates the appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no-show"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known appointment states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentNoShow, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment links a patient, a professional and a catalog service by ID.
// Price is a snapshot of the service price at booking time. InvoiceID is set
// only after completion produces an invoice.
type Appointment struct {
	Base
	PatientID      utils.ShortID     `json:"patient_id"`
	ProfessionalID utils.ShortID     `json:"professional_id"`
	ServiceID      utils.ShortID     `json:"service_id"`
	Date           time.Time         `json:"date"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time"`
	Status         AppointmentStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	Price          float64           `json:"price"`
	InvoiceID      *utils.ShortID    `json:"invoice_id,omitempty"`
}
