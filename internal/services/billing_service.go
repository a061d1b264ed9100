package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// IBillingService defines the interface for the invoice lifecycle: creation,
// appointment completion, payment and reminders.
type IBillingService interface {
	CreateInvoice(ctx context.Context, patientID utils.ShortID, items []InvoiceItemRequest, notes string) (*models.Invoice, error)
	CompleteAppointment(ctx context.Context, appointmentID utils.ShortID) (*models.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID utils.ShortID, paymentMethod string) (*models.Invoice, error)
	SendReminder(ctx context.Context, invoiceID utils.ShortID) (*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID utils.ShortID, status models.InvoiceStatus) (*models.Invoice, error)
}

// InvoiceItemRequest is one requested line of a manually created invoice.
// CustomPrice overrides the catalog price (VAT-inclusive) when set.
type InvoiceItemRequest struct {
	ServiceID   utils.ShortID `json:"service_id"`
	Quantity    int           `json:"quantity"`
	CustomPrice *float64      `json:"custom_price,omitempty"`
}

// billingService implements IBillingService.
type billingService struct {
	store *store.Store
	cfg   *config.Config
	now   func() time.Time
}

// NewBillingService creates a new BillingService.
func NewBillingService(st *store.Store, cfg *config.Config) IBillingService {
	return &billingService{
		store: st,
		cfg:   cfg,
		now:   time.Now,
	}
}

// decomposePrice splits a VAT-inclusive unit price into its VAT-exclusive
// subtotal and VAT components: subtotal = p / (1 + r/100), vat = p - subtotal.
func decomposePrice(price, vatRate float64) (subtotal, vat float64) {
	subtotal = price / (1 + vatRate/100)
	return subtotal, price - subtotal
}

// CreateInvoice builds an invoice from catalog services for an existing
// patient. A missing patient or service reference is an input error, not a
// lookup error: the caller supplied an unresolvable reference.
func (s *billingService) CreateInvoice(ctx context.Context, patientID utils.ShortID, items []InvoiceItemRequest, notes string) (*models.Invoice, error) {
	if _, err := s.store.FindPatient(patientID); err != nil {
		return nil, fmt.Errorf("invoice references unknown patient %s: %w", patientID.String(), store.ErrInvalidInput)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("invoice requires at least one item: %w", store.ErrInvalidInput)
	}

	var subtotal, vatAmount float64
	lines := make([]models.InvoiceItem, 0, len(items))
	for _, req := range items {
		svc, err := s.store.FindService(req.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("invoice item references unknown service %s: %w", req.ServiceID.String(), store.ErrInvalidInput)
		}
		qty := req.Quantity
		if qty <= 0 {
			return nil, fmt.Errorf("invoice item quantity must be positive: %w", store.ErrInvalidInput)
		}
		price := svc.Price
		if req.CustomPrice != nil {
			price = *req.CustomPrice
		}
		unitSubtotal, unitVAT := decomposePrice(price, svc.VATRate)
		lines = append(lines, models.InvoiceItem{
			Description: svc.Name,
			Quantity:    qty,
			UnitPrice:   unitSubtotal,
			VATRate:     svc.VATRate,
			Total:       price * float64(qty),
		})
		subtotal += unitSubtotal * float64(qty)
		vatAmount += unitVAT * float64(qty)
	}

	total := subtotal + vatAmount
	if total <= 0 {
		return nil, fmt.Errorf("invoice total must be positive: %w", store.ErrInvalidInput)
	}

	now := s.now()
	inv := models.Invoice{
		PatientID:     patientID,
		Items:         lines,
		Subtotal:      subtotal,
		VATAmount:     vatAmount,
		VATRate:       lines[0].VATRate,
		Total:         total,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		Status:        models.InvoicePending,
		Notes:         notes,
		RemindersSent: 0,
	}

	created, err := s.store.InsertInvoice(inv, nil)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CompleteAppointment transitions a scheduled appointment to completed and
// generates its single-line invoice from the service's current price and VAT
// rate. The appointment mutation and the invoice insertion happen atomically
// inside the store.
func (s *billingService) CompleteAppointment(ctx context.Context, appointmentID utils.ShortID) (*models.Invoice, error) {
	appt, err := s.store.FindAppointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentScheduled {
		return nil, fmt.Errorf("appointment %s is %s, not scheduled: %w",
			appointmentID.String(), appt.Status, store.ErrInvalidState)
	}
	patient, err := s.store.FindPatient(appt.PatientID)
	if err != nil {
		return nil, fmt.Errorf("appointment patient %s: %w", appt.PatientID.String(), store.ErrNotFound)
	}
	svc, err := s.store.FindService(appt.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("appointment service %s: %w", appt.ServiceID.String(), store.ErrNotFound)
	}

	unitSubtotal, unitVAT := decomposePrice(svc.Price, svc.VATRate)
	now := s.now()
	inv := models.Invoice{
		PatientID: patient.ID,
		Items: []models.InvoiceItem{{
			Description: svc.Name,
			Quantity:    1,
			UnitPrice:   unitSubtotal,
			VATRate:     svc.VATRate,
			Total:       svc.Price,
		}},
		Subtotal:      unitSubtotal,
		VATAmount:     unitVAT,
		VATRate:       svc.VATRate,
		Total:         svc.Price,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		Status:        models.InvoicePending,
		RemindersSent: 0,
	}

	created, err := s.store.InsertInvoice(inv, &appointmentID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// MarkPaid records payment on an invoice. Re-invocation overwrites the paid
// date rather than failing; double-payment is not guarded.
func (s *billingService) MarkPaid(ctx context.Context, invoiceID utils.ShortID, paymentMethod string) (*models.Invoice, error) {
	paidAt := s.now()
	inv, err := s.store.UpdateInvoice(invoiceID, func(inv *models.Invoice) error {
		inv.Status = models.InvoicePaid
		inv.PaidDate = &paidAt
		inv.PaymentMethod = paymentMethod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SendReminder increments the reminder counter and stamps the send time.
// Paid and cancelled invoices no longer accept reminders.
func (s *billingService) SendReminder(ctx context.Context, invoiceID utils.ShortID) (*models.Invoice, error) {
	sentAt := s.now()
	inv, err := s.store.UpdateInvoice(invoiceID, func(inv *models.Invoice) error {
		if inv.Status == models.InvoicePaid || inv.Status == models.InvoiceCancelled {
			return fmt.Errorf("invoice %s is %s: %w", invoiceID.String(), inv.Status, store.ErrInvalidState)
		}
		inv.RemindersSent++
		inv.LastReminderDate = &sentAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoiceStatus applies a generic status transition with no side
// effects (explicit overdue or cancellation from the invoice list).
func (s *billingService) UpdateInvoiceStatus(ctx context.Context, invoiceID utils.ShortID, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown invoice status %q: %w", status, store.ErrInvalidInput)
	}
	inv, err := s.store.UpdateInvoice(invoiceID, func(inv *models.Invoice) error {
		inv.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
