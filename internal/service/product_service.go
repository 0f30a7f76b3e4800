package service

import (
	"context"
	"errors"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	repo repository.ProductRepository
	tx   repository.TxManager
}

func NewProductService(repo repository.ProductRepository, tx repository.TxManager) *ProductService {
	return &ProductService{repo: repo, tx: tx}
}

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNegativeStock = errors.New("stock would become negative")
)

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
		return nil, ErrInvalidInput
	}
	cp := p
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID <= 0 || p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
		return nil, ErrInvalidInput
	}
	cp := p
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// AddStock атомарно изменяет остаток на delta (может быть отрицательной — списание брака)
func (s *ProductService) AddStock(ctx context.Context, id int64, delta int64) (*domain.Product, error) {
	if id <= 0 || delta == 0 {
		return nil, ErrInvalidInput
	}
	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock+delta < 0 {
			return ErrNegativeStock
		}
		p.Stock += delta
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}
