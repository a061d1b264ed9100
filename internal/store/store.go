// Package store is the single source of truth for all mutable entity
// collections. State is process-lifetime only; there is no persistence layer.
// A single RWMutex guards every collection, so multi-step mutations (invoice
// insertion plus appointment stamping, sequence increment plus append) are
// atomic from the caller's perspective.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

var (
	// ErrNotFound is returned when an operation references an entity ID that
	// does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned on create when required fields are empty,
	// amounts are non-positive, or a referenced entity cannot be resolved.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState is returned when an operation requires a precondition on
	// an entity's status that is not met.
	ErrInvalidState = errors.New("invalid state")
)

// Store holds the in-memory entity collections plus the singleton clinic
// record. Invoice numbering state lives here so number assignment and invoice
// insertion happen under the same lock.
type Store struct {
	mu sync.RWMutex

	patients      []models.Patient
	professionals []models.Professional
	services      []models.Service
	appointments  []models.Appointment
	invoices      []models.Invoice
	expenses      []models.Expense
	alerts        []models.Alert
	clinic        models.ClinicConfig

	// invoiceSeq maps "{prefix}-{year}" to the last assigned sequence number.
	invoiceSeq map[string]int
	usedIDs    map[utils.ShortID]struct{}
}

// New creates an empty store initialized with the given clinic record.
func New(clinic models.ClinicConfig) *Store {
	return &Store{
		clinic:     clinic,
		invoiceSeq: make(map[string]int),
		usedIDs:    make(map[utils.ShortID]struct{}),
	}
}

// Reset drops all entity collections and numbering state, keeping the clinic
// record. Intended for tests and demo reseeding.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = nil
	s.professionals = nil
	s.services = nil
	s.appointments = nil
	s.invoices = nil
	s.expenses = nil
	s.alerts = nil
	s.invoiceSeq = make(map[string]int)
	s.usedIDs = make(map[utils.ShortID]struct{})
}

// newIDLocked generates a fresh ID, verifying non-collision against every ID
// handed out so far. Collisions are near-impossible at 48 bits of entropy but
// the check is cheap.
func (s *Store) newIDLocked() utils.ShortID {
	for {
		id := utils.NewShortID()
		if _, taken := s.usedIDs[id]; !taken {
			s.usedIDs[id] = struct{}{}
			return id
		}
	}
}

// --- Patients ---

// AddPatient validates and inserts a new patient. The ID is always generated
// by the store; any client-supplied ID is discarded.
func (s *Store) AddPatient(p models.Patient) (models.Patient, error) {
	if p.Name == "" || p.Email == "" {
		return models.Patient{}, fmt.Errorf("patient requires name and email: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newIDLocked()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.patients = append(s.patients, p)
	return p, nil
}

// UpdatePatient applies a partial update. Nil fields are left untouched.
func (s *Store) UpdatePatient(id utils.ShortID, upd models.PatientUpdate) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.patients {
		if s.patients[i].ID != id {
			continue
		}
		p := &s.patients[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Email != nil {
			p.Email = *upd.Email
		}
		if upd.Phone != nil {
			p.Phone = *upd.Phone
		}
		if upd.Address != nil {
			p.Address = *upd.Address
		}
		if upd.TaxID != nil {
			p.TaxID = *upd.TaxID
		}
		if upd.TotalVisits != nil {
			p.TotalVisits = *upd.TotalVisits
		}
		if upd.TotalSpent != nil {
			p.TotalSpent = *upd.TotalSpent
		}
		return *p, nil
	}
	return models.Patient{}, fmt.Errorf("patient %s: %w", id.String(), ErrNotFound)
}

// FindPatient returns a copy of the patient with the given ID.
func (s *Store) FindPatient(id utils.ShortID) (models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Patient{}, fmt.Errorf("patient %s: %w", id.String(), ErrNotFound)
}

// Patients returns a snapshot of the patient collection.
func (s *Store) Patients() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// --- Professionals ---

// AddProfessional inserts a static professional record.
func (s *Store) AddProfessional(p models.Professional) (models.Professional, error) {
	if p.Name == "" {
		return models.Professional{}, fmt.Errorf("professional requires name: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newIDLocked()
	s.professionals = append(s.professionals, p)
	return p, nil
}

// Professionals returns a snapshot of the professional collection.
func (s *Store) Professionals() []models.Professional {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Professional, len(s.professionals))
	copy(out, s.professionals)
	return out
}

// --- Services ---

// AddService inserts a catalog service. Price must be positive.
func (s *Store) AddService(sv models.Service) (models.Service, error) {
	if sv.Name == "" || sv.Price <= 0 {
		return models.Service{}, fmt.Errorf("service requires name and positive price: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sv.ID = s.newIDLocked()
	s.services = append(s.services, sv)
	return sv, nil
}

// FindService returns a copy of the catalog service with the given ID.
func (s *Store) FindService(id utils.ShortID) (models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.services {
		if sv.ID == id {
			return sv, nil
		}
	}
	return models.Service{}, fmt.Errorf("service %s: %w", id.String(), ErrNotFound)
}

// Services returns a snapshot of the service catalog.
func (s *Store) Services() []models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Service, len(s.services))
	copy(out, s.services)
	return out
}

// --- Appointments ---

// AddAppointment validates references and inserts a new appointment. The price
// is snapshotted from the service catalog when not supplied.
func (s *Store) AddAppointment(a models.Appointment) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patientExistsLocked(a.PatientID) {
		return models.Appointment{}, fmt.Errorf("appointment references unknown patient %s: %w", a.PatientID.String(), ErrInvalidInput)
	}
	if !s.professionalExistsLocked(a.ProfessionalID) {
		return models.Appointment{}, fmt.Errorf("appointment references unknown professional %s: %w", a.ProfessionalID.String(), ErrInvalidInput)
	}
	svc, ok := s.serviceLocked(a.ServiceID)
	if !ok {
		return models.Appointment{}, fmt.Errorf("appointment references unknown service %s: %w", a.ServiceID.String(), ErrInvalidInput)
	}
	if a.Status == "" {
		a.Status = models.AppointmentScheduled
	}
	if !a.Status.Valid() {
		return models.Appointment{}, fmt.Errorf("unknown appointment status %q: %w", a.Status, ErrInvalidInput)
	}
	if a.Price == 0 {
		a.Price = svc.Price
	}
	a.ID = s.newIDLocked()
	a.InvoiceID = nil
	s.appointments = append(s.appointments, a)
	return a, nil
}

// UpdateAppointment applies mutate to the appointment with the given ID under
// the store lock. If mutate returns an error the appointment is left unchanged.
func (s *Store) UpdateAppointment(id utils.ShortID, mutate func(*models.Appointment) error) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID != id {
			continue
		}
		candidate := s.appointments[i]
		if err := mutate(&candidate); err != nil {
			return models.Appointment{}, err
		}
		s.appointments[i] = candidate
		return candidate, nil
	}
	return models.Appointment{}, fmt.Errorf("appointment %s: %w", id.String(), ErrNotFound)
}

// FindAppointment returns a copy of the appointment with the given ID.
func (s *Store) FindAppointment(id utils.ShortID) (models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, fmt.Errorf("appointment %s: %w", id.String(), ErrNotFound)
}

// Appointments returns a snapshot of the appointment collection.
func (s *Store) Appointments() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// --- Invoices ---

// InsertInvoice assigns an ID and the next sequential number for the invoice's
// issue year, then appends the invoice. When apptID is non-nil the referenced
// appointment must still be scheduled; it is transitioned to completed and
// stamped with the new invoice's ID in the same critical section, so callers
// never observe an intermediate state.
func (s *Store) InsertInvoice(inv models.Invoice, apptID *utils.ShortID) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apptIndex = -1
	if apptID != nil {
		for i := range s.appointments {
			if s.appointments[i].ID == *apptID {
				apptIndex = i
				break
			}
		}
		if apptIndex < 0 {
			return models.Invoice{}, fmt.Errorf("appointment %s: %w", apptID.String(), ErrNotFound)
		}
		if s.appointments[apptIndex].Status != models.AppointmentScheduled {
			return models.Invoice{}, fmt.Errorf("appointment %s is %s, not scheduled: %w",
				apptID.String(), s.appointments[apptIndex].Status, ErrInvalidState)
		}
	}

	inv.ID = s.newIDLocked()
	for i := range inv.Items {
		if inv.Items[i].ID == (utils.ShortID{}) {
			inv.Items[i].ID = s.newIDLocked()
		}
	}
	inv.Number = s.nextInvoiceNumberLocked(s.clinic.InvoicePrefix, inv.IssueDate.Year())

	if apptIndex >= 0 {
		id := inv.ID
		s.appointments[apptIndex].Status = models.AppointmentCompleted
		s.appointments[apptIndex].InvoiceID = &id
		inv.AppointmentID = apptID
	}

	s.invoices = append(s.invoices, inv)
	return copyInvoice(inv), nil
}

// nextInvoiceNumberLocked increments the per-(prefix,year) counter and formats
// the number as {prefix}-{year}-{seq:03d}. The counter never recounts existing
// invoices, so concurrent creations cannot produce duplicates.
func (s *Store) nextInvoiceNumberLocked(prefix string, year int) string {
	key := fmt.Sprintf("%s-%d", prefix, year)
	s.invoiceSeq[key]++
	return fmt.Sprintf("%s-%d-%03d", prefix, year, s.invoiceSeq[key])
}

// UpdateInvoice applies mutate to the invoice with the given ID under the
// store lock. If mutate returns an error the invoice is left unchanged.
func (s *Store) UpdateInvoice(id utils.ShortID, mutate func(*models.Invoice) error) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID != id {
			continue
		}
		candidate := copyInvoice(s.invoices[i])
		if err := mutate(&candidate); err != nil {
			return models.Invoice{}, err
		}
		s.invoices[i] = candidate
		return copyInvoice(candidate), nil
	}
	return models.Invoice{}, fmt.Errorf("invoice %s: %w", id.String(), ErrNotFound)
}

// FindInvoice returns a copy of the invoice with the given ID.
func (s *Store) FindInvoice(id utils.ShortID) (models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			return copyInvoice(inv), nil
		}
	}
	return models.Invoice{}, fmt.Errorf("invoice %s: %w", id.String(), ErrNotFound)
}

// Invoices returns a snapshot of the invoice collection, including item lists.
func (s *Store) Invoices() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		out[i] = copyInvoice(inv)
	}
	return out
}

func copyInvoice(inv models.Invoice) models.Invoice {
	items := make([]models.InvoiceItem, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	return inv
}

// --- Expenses ---

// AddExpense validates and inserts an expense. Amount must be positive and the
// category must be one of the known buckets.
func (s *Store) AddExpense(e models.Expense) (models.Expense, error) {
	if e.Description == "" || e.Amount <= 0 {
		return models.Expense{}, fmt.Errorf("expense requires description and positive amount: %w", ErrInvalidInput)
	}
	if !e.Category.Valid() {
		return models.Expense{}, fmt.Errorf("unknown expense category %q: %w", e.Category, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newIDLocked()
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

// DeleteExpense removes the expense with the given ID.
func (s *Store) DeleteExpense(id utils.ShortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id.String(), ErrNotFound)
}

// Expenses returns a snapshot of the expense collection.
func (s *Store) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// --- Alerts ---

// ReplaceAlerts swaps in a freshly generated alert list, discarding the old
// one wholesale. Dismissal state does not survive regeneration.
func (s *Store) ReplaceAlerts(alerts []models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = make([]models.Alert, len(alerts))
	copy(s.alerts, alerts)
}

// DismissAlert flags an alert as dismissed until the next generation cycle.
func (s *Store) DismissAlert(id utils.ShortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Dismissed = true
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id.String(), ErrNotFound)
}

// Alerts returns a snapshot of the current alert list.
func (s *Store) Alerts() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// --- Clinic config ---

// Clinic returns the singleton clinic record.
func (s *Store) Clinic() models.ClinicConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.clinic
	c.ReminderDays = append([]int(nil), s.clinic.ReminderDays...)
	return c
}

// UpdateClinic replaces the clinic record. Name and invoice prefix are
// required since numbering depends on the prefix.
func (s *Store) UpdateClinic(c models.ClinicConfig) error {
	if c.Name == "" || c.InvoicePrefix == "" {
		return fmt.Errorf("clinic config requires name and invoice prefix: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clinic = c
	return nil
}

// --- internal lookups (callers hold the lock) ---

func (s *Store) patientExistsLocked(id utils.ShortID) bool {
	for i := range s.patients {
		if s.patients[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Store) professionalExistsLocked(id utils.ShortID) bool {
	for i := range s.professionals {
		if s.professionals[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Store) serviceLocked(id utils.ShortID) (models.Service, bool) {
	for i := range s.services {
		if s.services[i].ID == id {
			return s.services[i], true
		}
	}
	return models.Service{}, false
}
