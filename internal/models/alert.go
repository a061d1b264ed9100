package models

import "time"

// AlertType classifies dashboard alerts for display.
type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
	AlertSuccess AlertType = "success"
	AlertInfo    AlertType = "info"
)

// Alert is an ephemeral dashboard notification. The whole alert list is
// regenerated on each evaluation cycle; the dismissed flag survives only until
// the next cycle.
type Alert struct {
	Base
	Type        AlertType `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Action      string    `json:"action,omitempty"`
	ActionLabel string    `json:"action_label,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Dismissed   bool      `json:"dismissed"`
}
