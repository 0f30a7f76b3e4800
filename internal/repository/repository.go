package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Customer, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.User, error)
}

// SaleRepository интерфейс репозитория продаж
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) error
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	Update(ctx context.Context, s *domain.Sale) error
	List(ctx context.Context) ([]domain.Sale, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
}

// MovementRepository интерфейс репозитория движений кассы
type MovementRepository interface {
	Create(ctx context.Context, m *domain.Movement) error
	List(ctx context.Context) ([]domain.Movement, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Movement, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
