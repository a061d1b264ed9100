package models

// ServiceRanking is one entry of the top-services table: revenue and line-item
// count accumulated per item description over the current billing month.
type ServiceRanking struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// DashboardKPIs is the full derived-metrics snapshot the dashboard renders.
// All change fields are percentages relative to the previous month.
type DashboardKPIs struct {
	CurrentMonthIncome  float64 `json:"current_month_income"`
	PreviousMonthIncome float64 `json:"previous_month_income"`
	IncomeChange        float64 `json:"income_change"`

	CurrentMonthExpenses  float64 `json:"current_month_expenses"`
	PreviousMonthExpenses float64 `json:"previous_month_expenses"`
	ExpensesChange        float64 `json:"expenses_change"`

	CashFlow       float64 `json:"cash_flow"`
	CashFlowChange float64 `json:"cash_flow_change"`

	PendingInvoices       int     `json:"pending_invoices"`
	PendingInvoicesAmount float64 `json:"pending_invoices_amount"`
	AverageDaysPending    float64 `json:"average_days_pending"`

	NoShowRate   float64 `json:"no_show_rate"`
	NoShowTarget float64 `json:"no_show_target"`

	AverageMargin float64 `json:"average_margin"`
	MarginChange  float64 `json:"margin_change"`

	TopServices []ServiceRanking `json:"top_services"`
}
