package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

// SaleService реализует регистрацию и аннулирование продаж
type SaleService struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	tx        repository.TxManager
}

func NewSaleService(products repository.ProductRepository, customers repository.CustomerRepository, sales repository.SaleRepository, tx repository.TxManager) *SaleService {
	return &SaleService{products: products, customers: customers, sales: sales, tx: tx}
}

var (
	ErrNotEnoughStock  = errors.New("not enough stock")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnknownCustomer = errors.New("unknown customer")
)

// Create проверяет наличие товара и атомарно списывает запас.
// Цены позиций фиксируются из текущего каталога сервера, итог считается здесь —
// клиентским значениям не доверяем.
func (s *SaleService) Create(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 || !req.Method.Valid() {
		return nil, ErrInvalidInput
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	}

	var created *domain.Sale
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if req.CustomerID != nil {
			if _, err := s.customers.GetByID(ctx, *req.CustomerID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrUnknownCustomer
				}
				return err
			}
		}

		// load and check stock; accumulate updates to avoid partial state
		productCopies := make(map[int64]*domain.Product)
		items := make([]domain.SaleItem, 0, len(req.Items))
		total := decimal.Zero
		for _, it := range req.Items {
			p, ok := productCopies[it.ProductID]
			if !ok {
				loaded, err := s.products.GetByID(ctx, it.ProductID)
				if err != nil {
					return err
				}
				p = loaded
				productCopies[p.ID] = p
			}
			if p.Stock < it.Quantity {
				return ErrNotEnoughStock
			}
			p.Stock -= it.Quantity

			line := domain.SaleItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   p.Price,
			}
			items = append(items, line)
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
		}

		// persist product stock updates
		for _, p := range productCopies {
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}

		sale := domain.Sale{
			CustomerID: req.CustomerID,
			Items:      items,
			Method:     req.Method,
			Fiado:      req.Fiado,
			Total:      total,
			Status:     domain.SaleRegistered,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.sales.Create(ctx, &sale); err != nil {
			return err
		}
		created = &sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID возвращает продажу по id
func (s *SaleService) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.sales.GetByID(ctx, id)
}

// List возвращает все продажи
func (s *SaleService) List(ctx context.Context) ([]domain.Sale, error) {
	return s.sales.List(ctx)
}

// Cancel если продажа REGISTRADA — возвращаем товары на склад и ставим ANULADA
func (s *SaleService) Cancel(ctx context.Context, id int64) (*domain.Sale, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	var updated *domain.Sale
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleRegistered {
			return ErrInvalidState
		}
		// return stock
		for _, it := range sale.Items {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// product removed since the sale; nothing to restore
					continue
				}
				return err
			}
			p.Stock += it.Quantity
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}
		sale.Status = domain.SaleCancelled
		if err := s.sales.Update(ctx, sale); err != nil {
			return err
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
