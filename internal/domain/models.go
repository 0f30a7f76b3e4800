package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// the API speaks plain JSON numbers for money, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Product представляет товар панадерии
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion,omitempty"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int64           `json:"stock"`
}

// Customer клиент (нужен для продаж в кредит и отчётности)
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`
}

// CustomerDraft данные для создания клиента; id назначает сервер
type CustomerDraft struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`
}

// Role роль пользователя системы
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleVendedor   Role = "VENDEDOR"
	RoleProduccion Role = "PRODUCCION"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendedor, RoleProduccion:
		return true
	}
	return false
}

// User пользователь системы
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	Phone        string    `json:"telefono,omitempty"`
	Role         Role      `json:"rol"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentMethod способ оплаты, закрытый набор
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "EFECTIVO"
	PaymentWallet   PaymentMethod = "YAPE"
	PaymentTransfer PaymentMethod = "TRANSFERENCIA"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentWallet, PaymentTransfer:
		return true
	}
	return false
}

// SaleItem позиция продажи; цена фиксируется в момент продажи
type SaleItem struct {
	ProductID   int64           `json:"productoId"`
	ProductName string          `json:"producto,omitempty"`
	Quantity    int64           `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUnit"`
}

// SaleStatus статус продажи
type SaleStatus string

const (
	SaleRegistered SaleStatus = "REGISTRADA"
	SaleCancelled  SaleStatus = "ANULADA"
)

// Sale зарегистрированная продажа
type Sale struct {
	ID         int64           `json:"id"`
	CustomerID *int64          `json:"clienteId"`
	Items      []SaleItem      `json:"items"`
	Method     PaymentMethod   `json:"metodoPago"`
	Fiado      bool            `json:"esFiado"`
	Total      decimal.Decimal `json:"total"`
	Status     SaleStatus      `json:"estado"`
	CreatedAt  time.Time       `json:"fecha"`
}

// SaleRequest запрос на регистрацию продажи; nil CustomerID — продажа без клиента
type SaleRequest struct {
	CustomerID *int64          `json:"clienteId"`
	Items      []SaleItem      `json:"items"`
	Method     PaymentMethod   `json:"metodoPago"`
	Fiado      bool            `json:"esFiado"`
	Total      decimal.Decimal `json:"total"`
}

// MovementType тип финансового движения
type MovementType string

const (
	MovementIncome  MovementType = "INGRESO"
	MovementExpense MovementType = "EGRESO"
)

func (t MovementType) Valid() bool {
	return t == MovementIncome || t == MovementExpense
}

// Movement ручное движение кассы: закупка сырья, оплата услуг, внесение
type Movement struct {
	ID          int64           `json:"id"`
	Type        MovementType    `json:"tipo"`
	Category    string          `json:"categoria"`
	Description string          `json:"descripcion,omitempty"`
	Amount      decimal.Decimal `json:"monto"`
	CreatedAt   time.Time       `json:"fecha"`
}
