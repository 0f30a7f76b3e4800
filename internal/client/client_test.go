package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"abc","usuario":{"id":1,"nombre":"Admin","rol":"ADMIN"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	res, err := c.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "abc" || res.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDo_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("authorization header = %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.Products(context.Background(), "tok-9"); err != nil {
		t.Fatalf("products: %v", err)
	}
}

func TestDo_ErrorEnvelopeIn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"stock insuficiente"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.CreateSale(context.Background(), "tok", domain.SaleRequest{Method: domain.PaymentCash})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "stock insuficiente" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestDo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"la venta ya fue anulada"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.CancelSale(context.Background(), "tok", 5)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "la venta ya fue anulada" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestDo_AuthError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"token invalido"}`))
		}))
		c := New(srv.URL, nil)
		_, err := c.Products(context.Background(), "stale")
		srv.Close()

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("status %d: expected AuthError, got %v", status, err)
		}
		if authErr.Status != status {
			t.Fatalf("expected status %d, got %d", status, authErr.Status)
		}
	}
}

func TestDo_ConnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := New(srv.URL, nil)
	_, err := c.Products(context.Background(), "tok")
	var connErr *ConnError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnError, got %v", err)
	}
	if connErr.Unwrap() == nil {
		t.Fatalf("ConnError must keep the transport error")
	}
}

func TestDo_GarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Products(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestCreateSale_Payload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ventas/crear" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req domain.SaleRequest
		if err := jsonDecode(r, &req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.CustomerID == nil || *req.CustomerID != 7 {
			t.Errorf("clienteId = %v", req.CustomerID)
		}
		if !req.Total.Equal(decimal.NewFromInt(7)) {
			t.Errorf("total = %s", req.Total)
		}
		w.Write([]byte(`{"id":3,"total":7,"estado":"REGISTRADA"}`))
	}))
	defer srv.Close()

	id := int64(7)
	c := New(srv.URL, nil)
	sale, err := c.CreateSale(context.Background(), "tok", domain.SaleRequest{
		CustomerID: &id,
		Items:      []domain.SaleItem{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromFloat(3.5)}},
		Method:     domain.PaymentCash,
		Total:      decimal.NewFromInt(7),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.ID != 3 || sale.Status != domain.SaleRegistered {
		t.Fatalf("unexpected sale: %+v", sale)
	}
}

func TestFetchMonthlyReport(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/api/reportes/resumen-general":
			w.Write([]byte(`{"ingresos":100,"egresos":40,"balance":60}`))
		case "/api/reportes/ventas-por-dia":
			w.Write([]byte(`[{"fecha":"2025-03-01","total":50}]`))
		case "/api/reportes/productos-mas-vendidos":
			w.Write([]byte(`[{"producto":"Pan frances","cantidad":12}]`))
		case "/api/reportes/metodos-de-pago":
			w.Write([]byte(`[{"metodo":"EFECTIVO","total":80}]`))
		case "/api/reportes/ticket-promedio":
			w.Write([]byte(`{"ventas":4,"ticketPromedio":12.5}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("mes"); r.URL.Path != "/api/reportes/resumen-general" && got != "3" {
			t.Errorf("mes = %q on %s", got, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	rep, err := c.FetchMonthlyReport(context.Background(), "tok", 3)
	if err != nil {
		t.Fatalf("fetch report: %v", err)
	}
	if atomic.LoadInt32(&calls) != 5 {
		t.Fatalf("expected 5 report calls, got %d", calls)
	}
	if !rep.Summary.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance = %s", rep.Summary.Balance)
	}
	if len(rep.SalesByDay) != 1 || len(rep.TopProducts) != 1 || len(rep.Methods) != 1 {
		t.Fatalf("incomplete report: %+v", rep)
	}
}

func TestFetchMonthlyReport_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/reportes/ticket-promedio" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"algo fallo"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.FetchMonthlyReport(context.Background(), "tok", 3); err == nil {
		t.Fatalf("expected error when one endpoint fails")
	}
}

func jsonDecode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
