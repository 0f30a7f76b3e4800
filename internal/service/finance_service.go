package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

// FinanceService движения кассы и дневная сводка
type FinanceService struct {
	sales     repository.SaleRepository
	movements repository.MovementRepository
}

func NewFinanceService(sales repository.SaleRepository, movements repository.MovementRepository) *FinanceService {
	return &FinanceService{sales: sales, movements: movements}
}

// RegisterMovementInput входные данные для регистрации движения
type RegisterMovementInput struct {
	Type        domain.MovementType
	Category    string
	Description string
	Amount      decimal.Decimal
}

func (s *FinanceService) RegisterMovement(ctx context.Context, in RegisterMovementInput) (*domain.Movement, error) {
	if !in.Type.Valid() || in.Category == "" || !in.Amount.IsPositive() {
		return nil, ErrInvalidInput
	}
	m := domain.Movement{
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
	}
	if err := s.movements.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CashSummary сводка за текущий день: выручка, расходы, баланс и детализация.
// Продажи в кредит (fiado) в выручку не входят — деньги ещё не получены.
func (s *FinanceService) CashSummary(ctx context.Context) (*domain.CashSummary, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	movements, err := s.movements.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := &domain.CashSummary{
		Date:     now,
		Sales:    make([]domain.SaleSummaryLine, 0),
		Expenses: make([]domain.ExpenseLine, 0),
	}
	income := decimal.Zero
	expense := decimal.Zero

	for _, sale := range sales {
		if sale.Status != domain.SaleRegistered {
			continue
		}
		for _, it := range sale.Items {
			out.Sales = append(out.Sales, domain.SaleSummaryLine{
				Product:  it.ProductName,
				Quantity: it.Quantity,
				Total:    it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
			})
		}
		if !sale.Fiado {
			income = income.Add(sale.Total)
		}
	}
	for _, m := range movements {
		switch m.Type {
		case domain.MovementIncome:
			income = income.Add(m.Amount)
		case domain.MovementExpense:
			expense = expense.Add(m.Amount)
			out.Expenses = append(out.Expenses, domain.ExpenseLine{
				Category:    m.Category,
				Description: m.Description,
				Amount:      m.Amount,
			})
		}
	}

	out.Summary = domain.BalanceTotals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
	return out, nil
}
