// Package pos implements the sale workflow of a register terminal: a cached
// product catalog, a cart with advisory stock checks, optional customer
// attachment and atomic sale submission against the backend.
//
// One Session is one logical thread of control. State only mutates on the
// success path of a backend call; on any failure the cart, catalog and
// customer selection are left exactly as they were.
package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
)

// Backend операции бэкенда, нужные кассе. *client.Client реализует интерфейс.
type Backend interface {
	Products(ctx context.Context, token string) ([]domain.Product, error)
	Customers(ctx context.Context, token string) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, token string, d domain.CustomerDraft) (*domain.Customer, error)
	CreateSale(ctx context.Context, token string, req domain.SaleRequest) (*domain.Sale, error)
}

var (
	ErrEmptyCart      = errors.New("no hay productos en el carrito")
	ErrStockExceeded  = errors.New("stock insuficiente")
	ErrUnknownProduct = errors.New("producto desconocido")
	ErrCustomerName   = errors.New("el nombre del cliente es requerido")
	ErrInvalidMethod  = errors.New("metodo de pago invalido")
	ErrSubmitInFlight = errors.New("ya hay una venta en curso")
)

// State состояние сессии продажи
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateSubmitting
)

// Line строка каррито: цена зафиксирована в момент добавления
type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Session одна продажа в работе: каталог, каррито, клиент, отправка
type Session struct {
	backend Backend
	token   string

	products   []domain.Product
	customers  []domain.Customer
	cart       []Line
	customer   *domain.Customer
	submitting bool
}

func NewSession(backend Backend, token string) *Session {
	return &Session{backend: backend, token: token}
}

// State выводится из содержимого, а не хранится — нечему рассинхронизироваться
func (s *Session) State() State {
	switch {
	case s.submitting:
		return StateSubmitting
	case len(s.cart) == 0:
		return StateEmpty
	default:
		return StateBuilding
	}
}

// LoadCatalog заменяет кэш каталога целиком; при ошибке кэш не трогаем
func (s *Session) LoadCatalog(ctx context.Context) error {
	products, err := s.backend.Products(ctx, s.token)
	if err != nil {
		return err
	}
	s.products = products
	return nil
}

func (s *Session) Products() []domain.Product {
	return append([]domain.Product(nil), s.products...)
}

func (s *Session) findProduct(id int64) *domain.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Session) findLine(id int64) int {
	for i := range s.cart {
		if s.cart[i].ProductID == id {
			return i
		}
	}
	return -1
}

// AddToCart добавляет одну единицу товара. Проверка стока консультативная:
// по кэшу каталога, окончательное слово за бэкендом при отправке.
func (s *Session) AddToCart(productID int64) error {
	p := s.findProduct(productID)
	if p == nil {
		return fmt.Errorf("%w: id=%d", ErrUnknownProduct, productID)
	}
	if i := s.findLine(productID); i >= 0 {
		if s.cart[i].Quantity+1 > p.Stock {
			return fmt.Errorf("%w: %s (disponible %d)", ErrStockExceeded, p.Name, p.Stock)
		}
		s.cart[i].Quantity++
		return nil
	}
	if p.Stock < 1 {
		return fmt.Errorf("%w: %s (disponible %d)", ErrStockExceeded, p.Name, p.Stock)
	}
	s.cart = append(s.cart, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
	return nil
}

// RemoveUnit убирает одну единицу; строка с нулём удаляется.
// Отсутствие товара в каррито — не ошибка.
func (s *Session) RemoveUnit(productID int64) {
	i := s.findLine(productID)
	if i < 0 {
		return
	}
	s.cart[i].Quantity--
	if s.cart[i].Quantity < 1 {
		s.cart = append(s.cart[:i], s.cart[i+1:]...)
	}
}

// RemoveLine удаляет строку целиком независимо от количества
func (s *Session) RemoveLine(productID int64) {
	if i := s.findLine(productID); i >= 0 {
		s.cart = append(s.cart[:i], s.cart[i+1:]...)
	}
}

func (s *Session) Lines() []Line {
	return append([]Line(nil), s.cart...)
}

// Total всегда пересчитывается от строк, без кэширования
func (s *Session) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.cart {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

func (s *Session) ClearCart() {
	s.cart = nil
}

// LoadCustomers заменяет кэш клиентов целиком
func (s *Session) LoadCustomers(ctx context.Context) error {
	customers, err := s.backend.Customers(ctx, s.token)
	if err != nil {
		return err
	}
	s.customers = customers
	return nil
}

func (s *Session) Customers() []domain.Customer {
	return append([]domain.Customer(nil), s.customers...)
}

// SelectCustomer привязывает уже загруженного клиента к продаже
func (s *Session) SelectCustomer(c domain.Customer) {
	cp := c
	s.customer = &cp
}

// Customer текущий выбор; nil — продажа без клиента
func (s *Session) Customer() *domain.Customer {
	if s.customer == nil {
		return nil
	}
	cp := *s.customer
	return &cp
}

func (s *Session) ClearCustomer() {
	s.customer = nil
}

// CreateCustomer создаёт клиента на сервере, ставит серверную запись первой в
// кэш и выбирает её для текущей продажи. При ошибке выбор не меняется.
func (s *Session) CreateCustomer(ctx context.Context, d domain.CustomerDraft) (*domain.Customer, error) {
	if d.Name == "" {
		return nil, ErrCustomerName
	}
	created, err := s.backend.CreateCustomer(ctx, s.token, d)
	if err != nil {
		return nil, err
	}
	s.customers = append([]domain.Customer{*created}, s.customers...)
	s.SelectCustomer(*created)
	return created, nil
}

// Reset возвращает сессию к пустой продаже
func (s *Session) Reset() {
	s.cart = nil
	s.customer = nil
}

// Submit отправляет продажу. Пустое каррито отклоняется без сетевого вызова,
// повторная отправка во время ожидания ответа тоже. Цены берутся из каррито,
// не из живого каталога. Локальные эффекты (списание кэшированного стока,
// очистка каррито и выбора клиента) применяются только при успехе.
func (s *Session) Submit(ctx context.Context, method domain.PaymentMethod, fiado bool) (*domain.Sale, error) {
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	if len(s.cart) == 0 {
		return nil, ErrEmptyCart
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	req := domain.SaleRequest{
		Method: method,
		Fiado:  fiado,
		Items:  make([]domain.SaleItem, 0, len(s.cart)),
		Total:  s.Total(),
	}
	if s.customer != nil {
		id := s.customer.ID
		req.CustomerID = &id
	}
	for _, l := range s.cart {
		req.Items = append(req.Items, domain.SaleItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	s.submitting = true
	defer func() { s.submitting = false }()

	sale, err := s.backend.CreateSale(ctx, s.token, req)
	if err != nil {
		return nil, err
	}

	// бэкенд уже списал сток; повторяем списание в кэше оптимистически
	for _, it := range req.Items {
		if p := s.findProduct(it.ProductID); p != nil {
			p.Stock -= it.Quantity
			if p.Stock < 0 {
				p.Stock = 0
			}
		}
	}
	s.cart = nil
	s.customer = nil
	return sale, nil
}
