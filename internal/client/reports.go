package client

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"panaderia/internal/domain"
)

// MonthlyReport все месячные отчёты одним значением
type MonthlyReport struct {
	Summary     domain.BalanceTotals  `json:"resumen"`
	SalesByDay  []domain.DayTotal     `json:"ventasPorDia"`
	TopProducts []domain.ProductCount `json:"productosMasVendidos"`
	Methods     []domain.MethodTotal  `json:"metodosDePago"`
	Ticket      domain.TicketAverage  `json:"ticketPromedio"`
}

// FetchMonthlyReport обходит отчётные эндпоинты параллельно и собирает
// единый отчёт; любой сбой отменяет остальные запросы.
func (c *Client) FetchMonthlyReport(ctx context.Context, token string, month int) (*MonthlyReport, error) {
	var r MonthlyReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/api/reportes/resumen-general", token, nil, &r.Summary)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reportes/ventas-por-dia?mes=%d", month), token, nil, &r.SalesByDay)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reportes/productos-mas-vendidos?mes=%d", month), token, nil, &r.TopProducts)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reportes/metodos-de-pago?mes=%d", month), token, nil, &r.Methods)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reportes/ticket-promedio?mes=%d", month), token, nil, &r.Ticket)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}
