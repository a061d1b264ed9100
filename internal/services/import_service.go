package services

import (
	"context"
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// IImportService defines the interface for bulk inserts from file imports.
// Rows arrive partially validated by the caller (column mapping is the
// caller's concern); the service independently re-validates required fields
// and reports a per-row outcome so partial failures never abort the batch.
type IImportService interface {
	ImportPatients(ctx context.Context, rows []PatientRow) ImportResult
	ImportExpenses(ctx context.Context, rows []ExpenseRow) ImportResult
}

// PatientRow is one raw patient record from an import file.
type PatientRow struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// ExpenseRow is one raw expense record from an import file.
type ExpenseRow struct {
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Supplier    string     `json:"supplier,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// RowError identifies a failed row by its 1-based position in the batch.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk insert: how many rows landed and which ones
// failed. The batch as a whole always "succeeds" at the API level.
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

// importService implements IImportService.
type importService struct {
	store *store.Store
}

// NewImportService creates a new ImportService.
func NewImportService(st *store.Store) IImportService {
	return &importService{store: st}
}

// ImportPatients inserts patient rows one by one, collecting per-row errors.
func (s *importService) ImportPatients(ctx context.Context, rows []PatientRow) ImportResult {
	var result ImportResult
	for i, row := range rows {
		if row.Name == "" || row.Email == "" {
			result.Errors = append(result.Errors, RowError{Row: i + 1, Reason: "nombre y email son obligatorios"})
			continue
		}
		_, err := s.store.AddPatient(models.Patient{
			Name:    row.Name,
			Email:   row.Email,
			Phone:   row.Phone,
			Address: row.Address,
			TaxID:   row.TaxID,
		})
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		result.Imported++
	}
	return result
}

// ImportExpenses inserts expense rows one by one, collecting per-row errors.
// Unrecognized categories fall back to "other"; missing dates default to now.
func (s *importService) ImportExpenses(ctx context.Context, rows []ExpenseRow) ImportResult {
	var result ImportResult
	for i, row := range rows {
		if row.Description == "" || row.Amount <= 0 {
			result.Errors = append(result.Errors, RowError{Row: i + 1, Reason: "descripción e importe positivo son obligatorios"})
			continue
		}
		category := models.ExpenseCategory(row.Category)
		if !category.Valid() {
			category = models.ExpenseOther
		}
		expense := models.Expense{
			Description: row.Description,
			Amount:      row.Amount,
			Category:    category,
			Supplier:    row.Supplier,
			Notes:       row.Notes,
		}
		if row.Date != nil {
			expense.Date = *row.Date
		}
		_, err := s.store.AddExpense(expense)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		result.Imported++
	}
	return result
}
