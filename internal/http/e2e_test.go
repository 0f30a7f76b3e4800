package httpapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"panaderia/internal/client"
	"panaderia/internal/domain"
	"panaderia/internal/pos"
)

// Полный путь кассы против реального HTTP-стека: логин, каталог,
// каррито, клиент, отправка продажи.
func TestRegisterTerminalFlow(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(setupServer(t).Engine())
	defer srv.Close()

	api := client.New(srv.URL, nil)
	login, err := api.Login(ctx, "admin@panaderia.local", "admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	p, err := api.CreateProduct(ctx, login.Token, domain.Product{
		Name: "Pan frances", Price: decimal.NewFromFloat(3.5), Stock: 5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	session := pos.NewSession(api, login.Token)
	if err := session.LoadCatalog(ctx); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if err := session.LoadCustomers(ctx); err != nil {
		t.Fatalf("load customers: %v", err)
	}

	cust, err := session.CreateCustomer(ctx, domain.CustomerDraft{Name: "Luis"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := session.AddToCart(p.ID); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
	}
	sale, err := session.Submit(ctx, domain.PaymentCash, false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromFloat(10.5)) {
		t.Fatalf("total expected 10.50, got %s", sale.Total)
	}
	if sale.CustomerID == nil || *sale.CustomerID != cust.ID {
		t.Fatalf("sale lost its customer: %+v", sale)
	}

	// server and cache agree on the remaining stock
	products, err := api.Products(ctx, login.Token)
	if err != nil {
		t.Fatal(err)
	}
	if products[0].Stock != 2 {
		t.Fatalf("server stock expected 2, got %d", products[0].Stock)
	}
	if session.Products()[0].Stock != 2 {
		t.Fatalf("cached stock expected 2, got %d", session.Products()[0].Stock)
	}

	// next sale over the remaining stock is rejected server-side and the
	// cart survives for retry
	for i := 0; i < 2; i++ {
		if err := session.AddToCart(p.ID); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
	}
	if _, err := api.AddStock(ctx, login.Token, p.ID, -2); err != nil {
		t.Fatalf("drain stock: %v", err)
	}
	_, err = session.Submit(ctx, domain.PaymentCash, false)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if len(session.Lines()) != 1 {
		t.Fatalf("cart must survive a rejected submit")
	}
}

func TestRegisterTerminalFlow_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(setupServer(t).Engine())
	defer srv.Close()

	api := client.New(srv.URL, nil)
	session := pos.NewSession(api, "expired-token")
	err := session.LoadCatalog(ctx)
	var authErr *client.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}
