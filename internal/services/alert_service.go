package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// Alert rule thresholds.
const (
	noShowAlertThreshold   = 10 // percent
	suppliesRatioThreshold = 35 // percent of current month income
)

// IAlertService defines the interface for the rule engine that regenerates
// the dashboard alert list.
type IAlertService interface {
	Generate(ctx context.Context, now time.Time) []models.Alert
}

// alertService implements IAlertService.
type alertService struct {
	store *store.Store
	kpis  IKPIService
}

// NewAlertService creates a new AlertService.
func NewAlertService(st *store.Store, kpis IKPIService) IAlertService {
	return &alertService{store: st, kpis: kpis}
}

// Generate evaluates the fixed rule set against one snapshot of store state
// plus KPIs and replaces the alert list wholesale. Rules are independent;
// their order only determines display order.
func (s *alertService) Generate(ctx context.Context, now time.Time) []models.Alert {
	kpis := s.kpis.Compute(ctx, now)
	var alerts []models.Alert

	// High no-show rate.
	if kpis.NoShowRate > noShowAlertThreshold {
		alerts = append(alerts, models.Alert{
			Base:        models.NewBase(),
			Type:        models.AlertDanger,
			Title:       "No-shows elevados",
			Message:     fmt.Sprintf("Tasa de no-shows %.1f%% > objetivo %d%%. Activa SMS recordatorios.", kpis.NoShowRate, noShowAlertThreshold),
			Action:      "/settings",
			ActionLabel: "Configurar SMS",
			CreatedAt:   now,
		})
	}

	// Overdue invoices: explicitly overdue, or pending and past due.
	var overdueCount int
	var overdueAmount float64
	for _, inv := range s.store.Invoices() {
		if inv.Status == models.InvoiceOverdue ||
			(inv.Status == models.InvoicePending && inv.DueDate.Before(now)) {
			overdueCount++
			overdueAmount += inv.Total
		}
	}
	if overdueCount > 0 {
		alerts = append(alerts, models.Alert{
			Base:        models.NewBase(),
			Type:        models.AlertWarning,
			Title:       "Facturas vencidas",
			Message:     fmt.Sprintf("%d facturas pendientes por %.2f€", overdueCount, overdueAmount),
			Action:      "/invoices?filter=overdue",
			ActionLabel: "Enviar recordatorios",
			CreatedAt:   now,
		})
	}

	// Supplies spend relative to income. Skipped entirely when income is zero
	// so the ratio never goes non-finite.
	if kpis.CurrentMonthIncome > 0 {
		var suppliesTotal float64
		for _, e := range s.store.Expenses() {
			if e.Category == models.ExpenseSupplies {
				suppliesTotal += e.Amount
			}
		}
		suppliesRatio := suppliesTotal / kpis.CurrentMonthIncome * 100
		if suppliesRatio > suppliesRatioThreshold {
			alerts = append(alerts, models.Alert{
				Base:        models.NewBase(),
				Type:        models.AlertWarning,
				Title:       "Suministros elevados",
				Message:     fmt.Sprintf("Suministros médicos representan %.1f%% de ingresos. Revisar proveedores.", suppliesRatio),
				Action:      "/expenses?category=supplies",
				ActionLabel: "Ver gastos",
				CreatedAt:   now,
			})
		}
	}

	// Best performing service, as a positive note.
	if len(kpis.TopServices) > 0 {
		top := kpis.TopServices[0]
		alerts = append(alerts, models.Alert{
			Base:        models.NewBase(),
			Type:        models.AlertSuccess,
			Title:       "Servicio estrella",
			Message:     fmt.Sprintf("%s lidera con %.0f€ (%d sesiones). ¡Promocionarlo más!", top.Name, top.Revenue, top.Count),
			Action:      "/services",
			ActionLabel: "Ver servicios",
			CreatedAt:   now,
		})
	}

	s.store.ReplaceAlerts(alerts)
	return alerts
}
