package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
)

func setupPS(t *testing.T) *ProductService {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewProductService(store, repository.NewMemoryTx(store))
}

func TestProduct_Create_Valid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, err := ps.Create(ctx, domain.Product{Name: "Pan frances", Price: decimal.NewFromFloat(3.5), Stock: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected id assigned")
	}
}

func TestProduct_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	if _, err := ps.Create(ctx, domain.Product{Name: "", Price: decimal.NewFromInt(1), Stock: 1}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := ps.Create(ctx, domain.Product{Name: "N", Price: decimal.NewFromInt(-1), Stock: 1}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := ps.Create(ctx, domain.Product{Name: "N", Price: decimal.NewFromInt(1), Stock: -1}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestProduct_Update_Get_Delete(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "Torta", Price: decimal.NewFromInt(25), Stock: 5})

	// get
	got, err := ps.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get failed: %v", err)
	}

	// update
	p.Name = "Torta de chocolate"
	p.Price = decimal.NewFromInt(28)
	p.Stock = 7
	up, err := ps.Update(ctx, *p)
	if err != nil {
		t.Fatalf("update err: %v", err)
	}
	if up.Name != "Torta de chocolate" || !up.Price.Equal(decimal.NewFromInt(28)) || up.Stock != 7 {
		t.Fatalf("not updated")
	}

	// delete
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if _, err := ps.GetByID(ctx, p.ID); err == nil {
		t.Fatalf("expected not found after delete")
	}
}

func TestProduct_AddStock(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "Pan frances", Price: decimal.NewFromFloat(3.5), Stock: 5})

	up, err := ps.AddStock(ctx, p.ID, 10)
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if up.Stock != 15 {
		t.Fatalf("stock expected 15, got %d", up.Stock)
	}

	// negative delta writes off units
	up, err = ps.AddStock(ctx, p.ID, -3)
	if err != nil {
		t.Fatalf("write off: %v", err)
	}
	if up.Stock != 12 {
		t.Fatalf("stock expected 12, got %d", up.Stock)
	}

	// never below zero
	if _, err := ps.AddStock(ctx, p.ID, -100); !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("expected negative stock error, got %v", err)
	}
	got, _ := ps.GetByID(ctx, p.ID)
	if got.Stock != 12 {
		t.Fatalf("failed write off must not change stock")
	}
}

func TestProduct_List_Filtering(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	must := func(p *domain.Product, err error) *domain.Product {
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	_ = must(ps.Create(ctx, domain.Product{Name: "Pan frances", Price: decimal.NewFromFloat(3.5), Stock: 5}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Torta de chocolate", Price: decimal.NewFromInt(25), Stock: 5}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Empanada de pollo", Price: decimal.NewFromInt(5), Stock: 5}))

	// substring
	list, err := ps.List(ctx, repository.ProductFilter{NameSubstring: "pan"})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list))
	}

	// min price
	min := decimal.NewFromInt(5)
	list, err = ps.List(ctx, repository.ProductFilter{MinPrice: &min})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	for _, p := range list {
		if p.Price.LessThan(min) {
			t.Fatalf("price filter failed")
		}
	}

	// max price
	max := decimal.NewFromInt(5)
	list, err = ps.List(ctx, repository.ProductFilter{MaxPrice: &max})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	for _, p := range list {
		if p.Price.GreaterThan(max) {
			t.Fatalf("price filter failed")
		}
	}
}
