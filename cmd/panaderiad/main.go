package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panaderia/internal/domain"
	httpapi "panaderia/internal/http"
	"panaderia/internal/repository"
	"panaderia/internal/service"
	"panaderia/pkg/logger"

	_ "panaderia/docs"
)

// @title Panaderia API
// @version 1.0
// @description Backend de gestion para panaderia: inventario, ventas, caja y reportes.
// @BasePath /api
func main() {
	log := logger.New(logger.Options{
		Service: "panaderiad",
		Level:   getEnv("LOG_LEVEL", "info"),
	})

	store := repository.NewMemoryStore()
	customersRepo := repository.NewMemoryCustomers(store)
	usersRepo := repository.NewMemoryUsers(store)
	salesRepo := repository.NewMemorySales(store)
	movementsRepo := repository.NewMemoryMovements(store)
	tx := repository.NewMemoryTx(store)

	usersSvc := service.NewUserService(usersRepo)
	productsSvc := service.NewProductService(store, tx)
	customersSvc := service.NewCustomerService(customersRepo)
	salesSvc := service.NewSaleService(store, customersRepo, salesRepo, tx)
	financeSvc := service.NewFinanceService(salesRepo, movementsRepo)
	reportsSvc := service.NewReportService(salesRepo, movementsRepo)

	// seed the first admin so the API is reachable on a fresh store
	adminEmail := getEnv("ADMIN_EMAIL", "admin@panaderia.local")
	if _, err := usersSvc.Create(context.Background(), service.NewUserInput{
		Name:     "Administrador",
		Email:    adminEmail,
		Role:     domain.RoleAdmin,
		Password: getEnv("ADMIN_PASSWORD", "admin"),
	}); err != nil {
		log.Error("seed admin", "error", err)
		os.Exit(1)
	}

	srv := httpapi.NewServer(usersSvc, productsSvc, customersSvc, salesSvc, financeSvc, reportsSvc)

	httpServer := &http.Server{
		Addr:    ":" + getEnv("PORT", "4000"),
		Handler: srv.Engine(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr, "admin", adminEmail)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
