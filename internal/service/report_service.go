package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

// ReportService месячные отчёты по продажам
type ReportService struct {
	sales     repository.SaleRepository
	movements repository.MovementRepository
}

func NewReportService(sales repository.SaleRepository, movements repository.MovementRepository) *ReportService {
	return &ReportService{sales: sales, movements: movements}
}

// monthRange границы месяца текущего года
func monthRange(month int) (time.Time, time.Time) {
	year := time.Now().UTC().Year()
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func validMonth(month int) bool { return month >= 1 && month <= 12 }

// registeredSales продажи месяца без аннулированных
func (s *ReportService) registeredSales(ctx context.Context, month int) ([]domain.Sale, error) {
	from, to := monthRange(month)
	all, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, sale := range all {
		if sale.Status == domain.SaleRegistered {
			out = append(out, sale)
		}
	}
	return out, nil
}

// Overall итоги за всё время
func (s *ReportService) Overall(ctx context.Context) (*domain.BalanceTotals, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := s.movements.List(ctx)
	if err != nil {
		return nil, err
	}
	income := decimal.Zero
	expense := decimal.Zero
	for _, sale := range sales {
		if sale.Status == domain.SaleRegistered {
			income = income.Add(sale.Total)
		}
	}
	for _, m := range movements {
		switch m.Type {
		case domain.MovementIncome:
			income = income.Add(m.Amount)
		case domain.MovementExpense:
			expense = expense.Add(m.Amount)
		}
	}
	return &domain.BalanceTotals{Income: income, Expense: expense, Balance: income.Sub(expense)}, nil
}

// SalesByDay суммы продаж по дням месяца
func (s *ReportService) SalesByDay(ctx context.Context, month int) ([]domain.DayTotal, error) {
	if !validMonth(month) {
		return nil, ErrInvalidInput
	}
	sales, err := s.registeredSales(ctx, month)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		day := sale.CreatedAt.Format("2006-01-02")
		byDay[day] = byDay[day].Add(sale.Total)
	}
	out := make([]domain.DayTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, domain.DayTotal{Date: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// TopProducts самые продаваемые товары месяца, по убыванию количества
func (s *ReportService) TopProducts(ctx context.Context, month int) ([]domain.ProductCount, error) {
	if !validMonth(month) {
		return nil, ErrInvalidInput
	}
	sales, err := s.registeredSales(ctx, month)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]int64)
	for _, sale := range sales {
		for _, it := range sale.Items {
			byProduct[it.ProductName] += it.Quantity
		}
	}
	out := make([]domain.ProductCount, 0, len(byProduct))
	for name, qty := range byProduct {
		out = append(out, domain.ProductCount{Product: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Product < out[j].Product
	})
	return out, nil
}

// PaymentMethods суммы продаж месяца по способам оплаты
func (s *ReportService) PaymentMethods(ctx context.Context, month int) ([]domain.MethodTotal, error) {
	if !validMonth(month) {
		return nil, ErrInvalidInput
	}
	sales, err := s.registeredSales(ctx, month)
	if err != nil {
		return nil, err
	}
	byMethod := make(map[domain.PaymentMethod]decimal.Decimal)
	for _, sale := range sales {
		byMethod[sale.Method] = byMethod[sale.Method].Add(sale.Total)
	}
	out := make([]domain.MethodTotal, 0, len(byMethod))
	for method, total := range byMethod {
		out = append(out, domain.MethodTotal{Method: method, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

// AverageTicket средний чек месяца
func (s *ReportService) AverageTicket(ctx context.Context, month int) (*domain.TicketAverage, error) {
	if !validMonth(month) {
		return nil, ErrInvalidInput
	}
	sales, err := s.registeredSales(ctx, month)
	if err != nil {
		return nil, err
	}
	out := &domain.TicketAverage{Sales: int64(len(sales))}
	if len(sales) == 0 {
		return out, nil
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	out.Average = total.Div(decimal.NewFromInt(out.Sales)).Round(2)
	return out, nil
}
