// Package seed populates the store with a small demo dataset. Enabled via the
// -seed flag; intended for local development and demos only.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// Load inserts demo professionals, services, patients, appointments, expenses
// and a few invoices in various lifecycle states.
func Load(st *store.Store, cfg *config.Config) error {
	now := time.Now()

	pros := []models.Professional{
		{Name: "Dra. Carmen Ruiz", Specialty: "Fisioterapia", Email: "carmen@clinica.example.com", Color: "#4f8df9"},
		{Name: "Dr. Javier Molina", Specialty: "Podología", Email: "javier@clinica.example.com", Color: "#2fb86f"},
		{Name: "Laura Ortega", Specialty: "Nutrición", Email: "laura@clinica.example.com", Color: "#e0833c"},
	}
	for i := range pros {
		p, err := st.AddProfessional(pros[i])
		if err != nil {
			return fmt.Errorf("seed professional: %w", err)
		}
		pros[i] = p
	}

	svcs := []models.Service{
		{Name: "Consulta", Price: 60, Duration: 30, Category: "general", VATRate: cfg.DefaultVATRate},
		{Name: "Fisioterapia", Price: 45, Duration: 45, Category: "fisioterapia", VATRate: cfg.DefaultVATRate},
		{Name: "Quiropodia", Price: 35, Duration: 30, Category: "podologia", VATRate: cfg.DefaultVATRate},
		{Name: "Plan nutricional", Price: 80, Duration: 60, Category: "nutricion", VATRate: cfg.DefaultVATRate},
	}
	for i := range svcs {
		s, err := st.AddService(svcs[i])
		if err != nil {
			return fmt.Errorf("seed service: %w", err)
		}
		svcs[i] = s
	}

	patients := []models.Patient{
		{Name: "María García López", Email: "maria.garcia@example.com", Phone: "+34 600 111 222", TaxID: "12345678A"},
		{Name: "Antonio Pérez Navarro", Email: "antonio.perez@example.com", Phone: "+34 600 333 444"},
		{Name: "Lucía Fernández Gil", Email: "lucia.fernandez@example.com", Phone: "+34 600 555 666"},
		{Name: "Pablo Sánchez Mora", Email: "pablo.sanchez@example.com", Phone: "+34 600 777 888"},
	}
	for i := range patients {
		p, err := st.AddPatient(patients[i])
		if err != nil {
			return fmt.Errorf("seed patient: %w", err)
		}
		patients[i] = p
	}

	appts := []models.Appointment{
		{PatientID: patients[0].ID, ProfessionalID: pros[0].ID, ServiceID: svcs[1].ID,
			Date: now.AddDate(0, 0, 1), StartTime: "09:00", EndTime: "09:45"},
		{PatientID: patients[1].ID, ProfessionalID: pros[1].ID, ServiceID: svcs[2].ID,
			Date: now.AddDate(0, 0, 1), StartTime: "10:00", EndTime: "10:30"},
		{PatientID: patients[2].ID, ProfessionalID: pros[2].ID, ServiceID: svcs[3].ID,
			Date: now.AddDate(0, 0, 2), StartTime: "12:00", EndTime: "13:00"},
		{PatientID: patients[3].ID, ProfessionalID: pros[0].ID, ServiceID: svcs[0].ID,
			Date: now.AddDate(0, 0, -3), StartTime: "16:00", EndTime: "16:30", Status: models.AppointmentNoShow},
	}
	seeded := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		created, err := st.AddAppointment(a)
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
		seeded = append(seeded, created)
	}

	expenses := []models.Expense{
		{Description: "Alquiler local", Amount: 1200, Category: models.ExpenseRent, Date: now.AddDate(0, 0, -10)},
		{Description: "Material de fisioterapia", Amount: 340.50, Category: models.ExpenseSupplies, Date: now.AddDate(0, 0, -7), Supplier: "OrtoMed SL"},
		{Description: "Electricidad", Amount: 185.20, Category: models.ExpenseUtilities, Date: now.AddDate(0, 0, -5)},
	}
	for _, e := range expenses {
		if _, err := st.AddExpense(e); err != nil {
			return fmt.Errorf("seed expense: %w", err)
		}
	}

	// A couple of invoices: one from a completed appointment (left pending)
	// and one manual invoice marked paid.
	billing := services.NewBillingService(st, cfg)
	ctx := context.Background()
	if _, err := billing.CompleteAppointment(ctx, seeded[0].ID); err != nil {
		return fmt.Errorf("seed completed appointment: %w", err)
	}
	manual, err := billing.CreateInvoice(ctx, patients[1].ID, []services.InvoiceItemRequest{
		{ServiceID: svcs[0].ID, Quantity: 1},
	}, "Factura de demostración")
	if err != nil {
		return fmt.Errorf("seed manual invoice: %w", err)
	}
	if _, err := billing.MarkPaid(ctx, manual.ID, "card"); err != nil {
		return fmt.Errorf("seed paid invoice: %w", err)
	}

	log.Printf("Seeded demo data: %d patients, %d services, %d appointments", len(patients), len(svcs), len(seeded))
	return nil
}
