package service

import (
	"context"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

// CustomerService бизнес-логика вокруг клиентов
type CustomerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) Create(ctx context.Context, d domain.CustomerDraft) (*domain.Customer, error) {
	if d.Name == "" {
		return nil, ErrInvalidInput
	}
	c := domain.Customer{Name: d.Name, Phone: d.Phone, Email: d.Email}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *CustomerService) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if c.ID <= 0 || c.Name == "" {
		return nil, ErrInvalidInput
	}
	cp := c
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}
