package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
	"panaderia/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	customersRepo := repository.NewMemoryCustomers(store)
	usersRepo := repository.NewMemoryUsers(store)
	salesRepo := repository.NewMemorySales(store)
	movementsRepo := repository.NewMemoryMovements(store)
	tx := repository.NewMemoryTx(store)

	users := service.NewUserService(usersRepo)
	products := service.NewProductService(store, tx)
	customers := service.NewCustomerService(customersRepo)
	sales := service.NewSaleService(store, customersRepo, salesRepo, tx)
	finance := service.NewFinanceService(salesRepo, movementsRepo)
	reports := service.NewReportService(salesRepo, movementsRepo)

	if _, err := users.Create(context.Background(), service.NewUserInput{
		Name: "Admin", Email: "admin@panaderia.local", Role: domain.RoleAdmin, Password: "admin",
	}); err != nil {
		t.Fatal(err)
	}
	return NewServer(users, products, customers, sales, finance, reports)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, s *Server, email, password string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login code %v: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func TestLoginAndAuth(t *testing.T) {
	s := setupServer(t)

	// bad credentials
	w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@panaderia.local", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}

	// protected route without token
	w = doJSON(t, s, http.MethodGet, "/api/productos", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", w.Code)
	}

	// stale token
	w = doJSON(t, s, http.MethodGet, "/api/productos", "no-such-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with stale token, got %v", w.Code)
	}

	token := loginAs(t, s, "admin@panaderia.local", "admin")
	w = doJSON(t, s, http.MethodGet, "/api/productos", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %v", w.Code)
	}
}

func TestRoleEnforcement(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin@panaderia.local", "admin")

	// admin creates a seller
	w := doJSON(t, s, http.MethodPost, "/api/usuarios", admin, map[string]any{
		"nombre": "Maria", "email": "maria@panaderia.local", "rol": "VENDEDOR", "password": "secreto",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user code %v: %s", w.Code, w.Body.String())
	}

	seller := loginAs(t, s, "maria@panaderia.local", "secreto")
	// sellers cannot manage users
	w = doJSON(t, s, http.MethodGet, "/api/usuarios", seller, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seller, got %v", w.Code)
	}
	// but they ring sales
	w = doJSON(t, s, http.MethodGet, "/api/ventas", seller, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for seller on ventas, got %v", w.Code)
	}
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	token := loginAs(t, s, "admin@panaderia.local", "admin")

	// create
	w := doJSON(t, s, http.MethodPost, "/api/productos", token, map[string]any{
		"nombre": "Pan frances", "precio": 3.5, "stock": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v: %s", w.Code, w.Body.String())
	}
	// update
	w = doJSON(t, s, http.MethodPut, "/api/productos/1", token, map[string]any{
		"nombre": "Pan frances", "precio": 4, "stock": 7,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %s", w.Code, w.Body.String())
	}
	// stock adjustment
	w = doJSON(t, s, http.MethodPut, "/api/productos/1/stock", token, map[string]any{
		"cantidadAAgregar": 10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add stock code %v: %s", w.Code, w.Body.String())
	}
	var p domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Stock != 17 {
		t.Fatalf("stock expected 17, got %d", p.Stock)
	}
	// list with filter
	w = doJSON(t, s, http.MethodGet, "/api/productos?q=pan", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	// delete
	w = doJSON(t, s, http.MethodDelete, "/api/productos/1", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/productos/1", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete expected 404, got %v", w.Code)
	}
}

func TestSaleFlow(t *testing.T) {
	s := setupServer(t)
	token := loginAs(t, s, "admin@panaderia.local", "admin")

	w := doJSON(t, s, http.MethodPost, "/api/productos", token, map[string]any{
		"nombre": "Pan frances", "precio": 3.5, "stock": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}

	// register
	w = doJSON(t, s, http.MethodPost, "/api/ventas/crear", token, map[string]any{
		"clienteId":  nil,
		"items":      []map[string]any{{"productoId": 1, "cantidad": 2}},
		"metodoPago": "EFECTIVO",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sale code %v: %s", w.Code, w.Body.String())
	}
	var sale domain.Sale
	if err := json.Unmarshal(w.Body.Bytes(), &sale); err != nil {
		t.Fatal(err)
	}
	if sale.Status != domain.SaleRegistered {
		t.Fatalf("unexpected status %s", sale.Status)
	}

	// over stock
	w = doJSON(t, s, http.MethodPost, "/api/ventas/crear", token, map[string]any{
		"items":      []map[string]any{{"productoId": 1, "cantidad": 99}},
		"metodoPago": "EFECTIVO",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 over stock, got %v", w.Code)
	}

	// cancel, then cancel again
	w = doJSON(t, s, http.MethodPost, "/api/ventas/anular/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel code %v: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, s, http.MethodPost, "/api/ventas/anular/1", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second cancel expected 409, got %v", w.Code)
	}
}

func TestFinanceAndReports(t *testing.T) {
	s := setupServer(t)
	token := loginAs(t, s, "admin@panaderia.local", "admin")

	w := doJSON(t, s, http.MethodPost, "/api/finanzas/registrar", token, map[string]any{
		"tipo": "EGRESO", "categoria": "insumos", "monto": 30,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("movement code %v: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/caja/resumen", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary code %v", w.Code)
	}
	var sum domain.CashSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if !sum.Summary.Expense.IsPositive() {
		t.Fatalf("expense expected positive, got %s", sum.Summary.Expense)
	}

	w = doJSON(t, s, http.MethodGet, "/api/reportes/resumen-general", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("overall code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/reportes/ventas-por-dia?mes=3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by day code %v", w.Code)
	}
	// month is mandatory and bounded
	w = doJSON(t, s, http.MethodGet, "/api/reportes/ventas-por-dia", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing month expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/reportes/ticket-promedio?mes=13", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("month 13 expected 400, got %v", w.Code)
	}
}
