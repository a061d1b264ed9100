package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanblascoverdu/facturacion/internal/models"
)

func TestImportPatients_PartialFailure(t *testing.T) {
	st := testStore()
	svc := NewImportService(st)

	result := svc.ImportPatients(context.Background(), []PatientRow{
		{Name: "María García", Email: "maria@example.com"},
		{Name: "", Email: "sin-nombre@example.com"},
		{Name: "Antonio Pérez", Email: "antonio@example.com", Phone: "+34 600 111 222"},
		{Name: "Sin Email", Email: ""},
	})

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "nombre y email son obligatorios", result.Errors[0].Reason)
	assert.Len(t, st.Patients(), 2)
}

func TestImportExpenses_PartialFailure(t *testing.T) {
	st := testStore()
	svc := NewImportService(st)
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	result := svc.ImportExpenses(context.Background(), []ExpenseRow{
		{Description: "Alquiler", Amount: 1200, Category: "rent", Date: &date},
		{Description: "", Amount: 50},
		{Description: "Importe inválido", Amount: -5},
		{Description: "Guantes", Amount: 30, Category: "supplies", Supplier: "OrtoMed SL"},
	})

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Equal(t, "descripción e importe positivo son obligatorios", result.Errors[0].Reason)

	expenses := st.Expenses()
	require.Len(t, expenses, 2)
	assert.Equal(t, models.ExpenseRent, expenses[0].Category)
	assert.Equal(t, date, expenses[0].Date)
}

func TestImportExpenses_UnknownCategoryFallsBackToOther(t *testing.T) {
	st := testStore()
	svc := NewImportService(st)

	result := svc.ImportExpenses(context.Background(), []ExpenseRow{
		{Description: "Varios", Amount: 20, Category: "no-such-category"},
		{Description: "Sin categoría", Amount: 15},
	})

	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	for _, e := range st.Expenses() {
		assert.Equal(t, models.ExpenseOther, e.Category)
		assert.False(t, e.Date.IsZero())
	}
}
