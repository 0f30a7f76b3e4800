// Package client is a thin typed wrapper over the bakery backend REST API.
// Every response is normalized at this boundary: callers see either decoded
// data or a typed error (AuthError, ConnError, APIError), never raw payload
// shapes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"panaderia/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиента. httpClient можно передать nil — тогда без таймаута:
// отмена запроса остаётся за контекстом вызывающего.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// do выполняет запрос и разбирает ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &ConnError{Err: err}
	}
	defer res.Body.Close()

	// the backend reports failures either via status or via an embedded
	// "error" field in a 2xx body; both collapse to the same typed errors
	var envelope struct {
		Error string `json:"error"`
	}
	var raw json.RawMessage
	if res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(&raw); err != nil && res.StatusCode < 300 {
			return &APIError{Status: res.StatusCode, Message: "respuesta invalida del servidor"}
		}
	}
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &envelope)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		msg := envelope.Error
		if msg == "" {
			msg = "acceso denegado o sesion expirada"
		}
		return &AuthError{Status: res.StatusCode, Message: msg}
	case res.StatusCode >= 300:
		return &APIError{Status: res.StatusCode, Message: envelope.Error}
	case envelope.Error != "":
		return &APIError{Status: res.StatusCode, Message: envelope.Error}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: res.StatusCode, Message: fmt.Sprintf("respuesta invalida del servidor: %v", err)}
	}
	return nil
}

// LoginResult токен сессии и данные вошедшего пользователя
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"usuario"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products

func (c *Client) Products(ctx context.Context, token string) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/productos", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPost, "/api/productos", token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/productos/%d", p.ID), token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddStock изменяет остаток товара на delta
func (c *Client) AddStock(ctx context.Context, token string, productID, delta int64) (*domain.Product, error) {
	var out domain.Product
	body := map[string]int64{"cantidadAAgregar": delta}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/productos/%d/stock", productID), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/productos/%d", id), token, nil, nil)
}

// Customers

func (c *Client) Customers(ctx context.Context, token string) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := c.do(ctx, http.MethodGet, "/api/clientes", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, token string, d domain.CustomerDraft) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.do(ctx, http.MethodPost, "/api/clientes", token, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, token string, cust domain.Customer) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/clientes/%d", cust.ID), token, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/clientes/%d", id), token, nil, nil)
}

// Users

func (c *Client) Users(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	if err := c.do(ctx, http.MethodGet, "/api/usuarios", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewUser данные для создания пользователя
type NewUser struct {
	Name     string      `json:"nombre"`
	Email    string      `json:"email"`
	Phone    string      `json:"telefono,omitempty"`
	Role     domain.Role `json:"rol"`
	Password string      `json:"password"`
}

func (c *Client) CreateUser(ctx context.Context, token string, u NewUser) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPost, "/api/usuarios", token, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/usuarios/%d", id), token, nil, nil)
}

// Sales

func (c *Client) Sales(ctx context.Context, token string) ([]domain.Sale, error) {
	var out []domain.Sale
	if err := c.do(ctx, http.MethodGet, "/api/ventas", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSale(ctx context.Context, token string, req domain.SaleRequest) (*domain.Sale, error) {
	var out domain.Sale
	if err := c.do(ctx, http.MethodPost, "/api/ventas/crear", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelSale(ctx context.Context, token string, id int64) (*domain.Sale, error) {
	var out domain.Sale
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/ventas/anular/%d", id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Finance

func (c *Client) CashSummary(ctx context.Context, token string) (*domain.CashSummary, error) {
	var out domain.CashSummary
	if err := c.do(ctx, http.MethodGet, "/api/caja/resumen", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterMovement(ctx context.Context, token string, m domain.Movement) (*domain.Movement, error) {
	var out domain.Movement
	if err := c.do(ctx, http.MethodPost, "/api/finanzas/registrar", token, m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
