package models

import "time"

// Patient represents a clinic client. Patients are created once and never
// deleted; visit and spend counters are plain fields updated via partial update.
type Patient struct {
	Base
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	TotalVisits int       `json:"total_visits"`
	TotalSpent  float64   `json:"total_spent"`
}

// PatientUpdate carries the mutable fields of a partial patient update.
// Nil pointers leave the corresponding field untouched.
type PatientUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Address     *string  `json:"address,omitempty"`
	TaxID       *string  `json:"tax_id,omitempty"`
	TotalVisits *int     `json:"total_visits,omitempty"`
	TotalSpent  *float64 `json:"total_spent,omitempty"`
}

// Professional is static reference data for the appointment calendar.
type Professional struct {
	Base
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Color     string `json:"color"` // calendar display color
}
