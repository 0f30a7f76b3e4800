package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTotals итоги: доходы, расходы, баланс
type BalanceTotals struct {
	Income  decimal.Decimal `json:"ingresos"`
	Expense decimal.Decimal `json:"egresos"`
	Balance decimal.Decimal `json:"balance"`
}

// SaleSummaryLine строка продаж для сводки кассы
type SaleSummaryLine struct {
	Product  string          `json:"producto"`
	Quantity int64           `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// ExpenseLine строка расходов для сводки кассы
type ExpenseLine struct {
	Category    string          `json:"categoria"`
	Description string          `json:"descripcion,omitempty"`
	Amount      decimal.Decimal `json:"monto"`
}

// CashSummary дневная сводка кассы
type CashSummary struct {
	Date     time.Time         `json:"fecha"`
	Summary  BalanceTotals     `json:"resumen"`
	Sales    []SaleSummaryLine `json:"ventas"`
	Expenses []ExpenseLine     `json:"gastos"`
}

// DayTotal сумма продаж за день месяца
type DayTotal struct {
	Date  string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}

// ProductCount продукт и количество проданных единиц
type ProductCount struct {
	Product  string `json:"producto"`
	Quantity int64  `json:"cantidad"`
}

// MethodTotal сумма продаж по способу оплаты
type MethodTotal struct {
	Method PaymentMethod   `json:"metodo"`
	Total  decimal.Decimal `json:"total"`
}

// TicketAverage средний чек за период
type TicketAverage struct {
	Sales   int64           `json:"ventas"`
	Average decimal.Decimal `json:"ticketPromedio"`
}
