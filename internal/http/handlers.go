package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"panaderia/internal/domain"
	"panaderia/internal/repository"
	"panaderia/internal/service"
)

type Server struct {
	engine    *gin.Engine
	tokens    *tokenTable
	users     *service.UserService
	products  *service.ProductService
	customers *service.CustomerService
	sales     *service.SaleService
	finance   *service.FinanceService
	reports   *service.ReportService
}

func NewServer(users *service.UserService, products *service.ProductService, customers *service.CustomerService, sales *service.SaleService, finance *service.FinanceService, reports *service.ReportService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{
		engine:    r,
		tokens:    newTokenTable(),
		users:     users,
		products:  products,
		customers: customers,
		sales:     sales,
		finance:   finance,
		reports:   reports,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	api.POST("/auth/login", s.login)

	auth := api.Group("", s.requireAuth)
	{
		products := auth.Group("/productos")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.PUT(":id", s.updateProduct)
		products.PUT(":id/stock", s.addStock)
		products.DELETE(":id", s.deleteProduct)

		customers := auth.Group("/clientes")
		customers.GET("", s.listCustomers)
		customers.POST("", s.createCustomer)
		customers.PUT(":id", s.updateCustomer)
		customers.DELETE(":id", s.deleteCustomer)

		users := auth.Group("/usuarios", s.requireRole(domain.RoleAdmin))
		users.GET("", s.listUsers)
		users.POST("", s.createUser)
		users.DELETE(":id", s.deleteUser)

		sales := auth.Group("/ventas")
		sales.GET("", s.listSales)
		sales.POST("/crear", s.createSale)
		sales.POST("/anular/:id", s.cancelSale)

		auth.GET("/caja/resumen", s.cashSummary)
		auth.POST("/finanzas/registrar", s.registerMovement)

		reports := auth.Group("/reportes")
		reports.GET("/resumen-general", s.reportOverall)
		reports.GET("/ventas-por-dia", s.reportSalesByDay)
		reports.GET("/productos-mas-vendidos", s.reportTopProducts)
		reports.GET("/metodos-de-pago", s.reportPaymentMethods)
		reports.GET("/ticket-promedio", s.reportAverageTicket)
	}
}

// Product handlers
type createProductReq struct {
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int64           `json:"stock"`
}

// @Summary Create product
// @Tags productos
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /productos [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Create(c, domain.Product{Name: req.Name, Description: req.Description, Price: req.Price, Stock: req.Stock})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary List products
// @Tags productos
// @Produce json
// @Param q query string false "Name contains"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Success 200 {array} domain.Product
// @Router /productos [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	if q := c.Query("q"); q != "" {
		f.NameSubstring = q
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.products.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Update product
// @Tags productos
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body createProductReq true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /productos/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Update(c, domain.Product{ID: id, Name: req.Name, Description: req.Description, Price: req.Price, Stock: req.Stock})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

type addStockReq struct {
	Delta int64 `json:"cantidadAAgregar"`
}

// @Summary Adjust product stock
// @Tags productos
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body addStockReq true "Stock delta"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /productos/{id}/stock [put]
func (s *Server) addStock(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req addStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.AddStock(c, id, req.Delta)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags productos
// @Param id path int true "Product ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /productos/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.products.Delete(c, id); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Customer handlers

// @Summary List customers
// @Tags clientes
// @Produce json
// @Success 200 {array} domain.Customer
// @Router /clientes [get]
func (s *Server) listCustomers(c *gin.Context) {
	list, err := s.customers.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create customer
// @Tags clientes
// @Accept json
// @Produce json
// @Param input body domain.CustomerDraft true "Customer"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} map[string]string
// @Router /clientes [post]
func (s *Server) createCustomer(c *gin.Context) {
	var req domain.CustomerDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cust, err := s.customers.Create(c, req)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cust)
}

// @Summary Update customer
// @Tags clientes
// @Accept json
// @Produce json
// @Param id path int true "Customer ID"
// @Param input body domain.CustomerDraft true "Update"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /clientes/{id} [put]
func (s *Server) updateCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req domain.CustomerDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cust, err := s.customers.Update(c, domain.Customer{ID: id, Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cust)
}

// @Summary Delete customer
// @Tags clientes
// @Param id path int true "Customer ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /clientes/{id} [delete]
func (s *Server) deleteCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.customers.Delete(c, id); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// User handlers
type createUserReq struct {
	Name     string      `json:"nombre"`
	Email    string      `json:"email"`
	Phone    string      `json:"telefono"`
	Role     domain.Role `json:"rol"`
	Password string      `json:"password"`
}

// @Summary List users
// @Tags usuarios
// @Produce json
// @Success 200 {array} domain.User
// @Router /usuarios [get]
func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create user
// @Tags usuarios
// @Accept json
// @Produce json
// @Param input body createUserReq true "User"
// @Success 201 {object} domain.User
// @Failure 400 {object} map[string]string
// @Router /usuarios [post]
func (s *Server) createUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.users.Create(c, service.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// @Summary Delete user
// @Tags usuarios
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /usuarios/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.users.Delete(c, id); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Sale handlers

// @Summary List sales
// @Tags ventas
// @Produce json
// @Success 200 {array} domain.Sale
// @Router /ventas [get]
func (s *Server) listSales(c *gin.Context) {
	list, err := s.sales.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Register sale
// @Tags ventas
// @Accept json
// @Produce json
// @Param input body domain.SaleRequest true "Sale"
// @Success 201 {object} domain.Sale
// @Failure 400 {object} map[string]string
// @Router /ventas/crear [post]
func (s *Server) createSale(c *gin.Context) {
	var req domain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sale, err := s.sales.Create(c, req)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// @Summary Cancel sale
// @Tags ventas
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} domain.Sale
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /ventas/anular/{id} [post]
func (s *Server) cancelSale(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	sale, err := s.sales.Cancel(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Finance handlers

// @Summary Daily cash summary
// @Tags caja
// @Produce json
// @Success 200 {object} domain.CashSummary
// @Router /caja/resumen [get]
func (s *Server) cashSummary(c *gin.Context) {
	out, err := s.finance.CashSummary(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

type registerMovementReq struct {
	Type        domain.MovementType `json:"tipo"`
	Category    string              `json:"categoria"`
	Description string              `json:"descripcion"`
	Amount      decimal.Decimal     `json:"monto"`
}

// @Summary Register cash movement
// @Tags finanzas
// @Accept json
// @Produce json
// @Param input body registerMovementReq true "Movement"
// @Success 201 {object} domain.Movement
// @Failure 400 {object} map[string]string
// @Router /finanzas/registrar [post]
func (s *Server) registerMovement(c *gin.Context) {
	var req registerMovementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := s.finance.RegisterMovement(c, service.RegisterMovementInput{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Report handlers

// @Summary Overall totals
// @Tags reportes
// @Produce json
// @Success 200 {object} domain.BalanceTotals
// @Router /reportes/resumen-general [get]
func (s *Server) reportOverall(c *gin.Context) {
	out, err := s.reports.Overall(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Sales by day
// @Tags reportes
// @Produce json
// @Param mes query int true "Month 1-12"
// @Success 200 {array} domain.DayTotal
// @Failure 400 {object} map[string]string
// @Router /reportes/ventas-por-dia [get]
func (s *Server) reportSalesByDay(c *gin.Context) {
	month, err := parseMonth(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	out, err := s.reports.SalesByDay(c, month)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Top selling products
// @Tags reportes
// @Produce json
// @Param mes query int true "Month 1-12"
// @Success 200 {array} domain.ProductCount
// @Failure 400 {object} map[string]string
// @Router /reportes/productos-mas-vendidos [get]
func (s *Server) reportTopProducts(c *gin.Context) {
	month, err := parseMonth(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	out, err := s.reports.TopProducts(c, month)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Totals per payment method
// @Tags reportes
// @Produce json
// @Param mes query int true "Month 1-12"
// @Success 200 {array} domain.MethodTotal
// @Failure 400 {object} map[string]string
// @Router /reportes/metodos-de-pago [get]
func (s *Server) reportPaymentMethods(c *gin.Context) {
	month, err := parseMonth(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	out, err := s.reports.PaymentMethods(c, month)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Average ticket
// @Tags reportes
// @Produce json
// @Param mes query int true "Month 1-12"
// @Success 200 {object} domain.TicketAverage
// @Failure 400 {object} map[string]string
// @Router /reportes/ticket-promedio [get]
func (s *Server) reportAverageTicket(c *gin.Context) {
	month, err := parseMonth(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	out, err := s.reports.AverageTicket(c, month)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseMonth(c *gin.Context) (int, error) {
	return strconv.Atoi(c.Query("mes"))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNotEnoughStock),
		errors.Is(err, service.ErrNegativeStock),
		errors.Is(err, service.ErrUnknownCustomer),
		errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
