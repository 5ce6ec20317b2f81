package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Label         string // e.g. "October 2026"
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	ByCategory    []CategoryAmount
}

// Net returns income minus expenses.
func (o MonthOverview) Net() decimal.Decimal {
	return o.TotalIncome.Sub(o.TotalExpenses)
}
