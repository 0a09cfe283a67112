package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/account"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	"github.com/smallbiznis/bizledger/internal/audit"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/customer"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/internal/employee"
	employeedomain "github.com/smallbiznis/bizledger/internal/employee/domain"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/internal/expense"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/observability"
	obslogger "github.com/smallbiznis/bizledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bizledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bizledger/internal/observability/tracing"
	"github.com/smallbiznis/bizledger/internal/project"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	"github.com/smallbiznis/bizledger/internal/providers/pdf"
	"github.com/smallbiznis/bizledger/internal/ratelimit"
	"github.com/smallbiznis/bizledger/internal/report"
	reportdomain "github.com/smallbiznis/bizledger/internal/report/domain"
	"github.com/smallbiznis/bizledger/internal/shop"
	shopdomain "github.com/smallbiznis/bizledger/internal/shop/domain"
	"github.com/smallbiznis/bizledger/internal/supplier"
	vendordomain "github.com/smallbiznis/bizledger/internal/supplier/domain"
	"github.com/smallbiznis/bizledger/internal/transaction"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var Module = fx.Module("http.server",
	audit.Module,
	events.Module,
	pdf.Module,
	ratelimit.Module,
	account.Module,
	transaction.Module,
	project.Module,
	customer.Module,
	supplier.Module,
	employee.Module,
	expense.Module,
	shop.Module,
	report.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config    `optional:"true"`
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		r.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	accountSvc  accountdomain.Service
	txSvc       transactiondomain.Service
	projectSvc  projectdomain.Service
	customerSvc customerdomain.Service
	vendorSvc   vendordomain.Service
	employeeSvc employeedomain.Service
	expenseSvc  expensedomain.Service
	shopSvc     shopdomain.Service
	reportSvc   reportdomain.Service
	auditSvc    auditdomain.Service
	hub         *events.Hub
	limiter     *ratelimit.WriteLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	AccountSvc  accountdomain.Service
	TxSvc       transactiondomain.Service
	ProjectSvc  projectdomain.Service
	CustomerSvc customerdomain.Service
	VendorSvc   vendordomain.Service
	EmployeeSvc employeedomain.Service
	ExpenseSvc  expensedomain.Service
	ShopSvc     shopdomain.Service
	ReportSvc   reportdomain.Service
	AuditSvc    auditdomain.Service
	Hub         *events.Hub             `optional:"true"`
	Limiter     *ratelimit.WriteLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		accountSvc:  p.AccountSvc,
		txSvc:       p.TxSvc,
		projectSvc:  p.ProjectSvc,
		customerSvc: p.CustomerSvc,
		vendorSvc:   p.VendorSvc,
		employeeSvc: p.EmployeeSvc,
		expenseSvc:  p.ExpenseSvc,
		shopSvc:     p.ShopSvc,
		reportSvc:   p.ReportSvc,
		auditSvc:    p.AuditSvc,
		hub:         p.Hub,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.WriteRateLimit())

	// -------- Accounting --------
	accounting := api.Group("/accounting")
	{
		accounting.GET("/accounts", s.ListAccounts)
		accounting.POST("/accounts", s.CreateAccount)
		accounting.GET("/accounts/:id", s.GetAccountByID)
		accounting.PUT("/accounts/:id", s.UpdateAccount)
		accounting.DELETE("/accounts/:id", s.DeleteAccount)

		accounting.GET("/transactions", s.ListTransactions)
		accounting.POST("/transactions", s.CreateTransaction)
		accounting.GET("/transactions/:id", s.GetTransactionByID)
		accounting.PUT("/transactions/:id", s.UpdateTransaction)
		accounting.DELETE("/transactions/:id", s.DeleteTransaction)

		accounting.GET("/reports", s.GetOverviewReport)
		accounting.GET("/reports/daily", s.GetDailyReport)
		accounting.GET("/reports/payment-schedule", s.GetPaymentSchedule)

		accounting.GET("/reference", s.GetReference)
	}

	// -------- Projects --------
	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProjectByID)
	api.PUT("/projects/:id", s.UpdateProject)
	api.DELETE("/projects/:id", s.DeleteProject)
	api.POST("/projects/:id/materials", s.AddProjectMaterial)
	api.POST("/projects/:id/labor", s.AddProjectLabor)

	// -------- Parties --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)

	api.GET("/vendors", s.ListVendors)
	api.POST("/vendors", s.CreateVendor)
	api.GET("/vendors/:id", s.GetVendorByID)

	api.GET("/employees", s.ListEmployees)
	api.POST("/employees", s.CreateEmployee)
	api.GET("/employees/:id", s.GetEmployeeByID)

	// -------- Expenses --------
	api.GET("/expenses", s.ListExpenses)
	api.POST("/expenses", s.CreateExpense)
	api.PUT("/expenses/:id", s.UpdateExpense)
	api.DELETE("/expenses/:id", s.DeleteExpense)

	// -------- Shop --------
	shopGroup := api.Group("/shop")
	{
		shopGroup.GET("/products", s.ListProducts)
		shopGroup.POST("/products", s.CreateProduct)
		shopGroup.GET("/accounts", s.ListShopAccounts)
		shopGroup.GET("/customers", s.ListShopCustomers)
		shopGroup.GET("/sales", s.ListSales)
		shopGroup.POST("/sales", s.Checkout)
		shopGroup.GET("/sales/:id/receipt", s.GetSaleReceipt)
	}

	// -------- Reports / audit / events --------
	api.GET("/reports/debts", s.GetDebtsReport)
	api.GET("/audit-logs", s.ListAuditLogs)
	api.GET("/events", s.StreamEvents)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
