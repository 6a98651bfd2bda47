package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finledger/backend/internal/config"
	"github.com/finledger/backend/internal/handler"
	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/middleware"
	"github.com/finledger/backend/internal/repository"
	"github.com/finledger/backend/internal/service/ledger"
	"github.com/finledger/backend/internal/service/report"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("finledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	cardRepo := repository.NewCardRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	userRepo := repository.NewUserRepository(db)

	ledgerSvc := ledger.NewService(
		accountRepo, transactionRepo, cardRepo, categoryRepo,
		payableRepo, receivableRepo, customerRepo, supplierRepo, db,
	)
	reportSvc := report.NewService(db)

	jwtExpiry := time.Duration(cfg.TokenExpiryMinutes) * time.Minute
	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	accountHandler := handler.NewAccountHandler(accountRepo)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	cardHandler := handler.NewCardHandler(cardRepo, ledgerSvc)
	partyHandler := handler.NewPartyHandler(customerRepo, supplierRepo)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	openItemHandler := handler.NewOpenItemHandler(ledgerSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/v1/accounts", accountHandler.Create)
	authed.HandleFunc("GET /api/v1/accounts", accountHandler.List)
	authed.HandleFunc("GET /api/v1/accounts/{id}", accountHandler.Get)
	authed.HandleFunc("PUT /api/v1/accounts/{id}", accountHandler.Update)
	authed.HandleFunc("DELETE /api/v1/accounts/{id}", accountHandler.Delete)

	authed.HandleFunc("POST /api/v1/categories", categoryHandler.Create)
	authed.HandleFunc("GET /api/v1/categories", categoryHandler.List)
	authed.HandleFunc("DELETE /api/v1/categories/{id}", categoryHandler.Delete)

	authed.HandleFunc("POST /api/v1/cards", cardHandler.Create)
	authed.HandleFunc("GET /api/v1/cards", cardHandler.List)
	authed.HandleFunc("GET /api/v1/cards/{id}", cardHandler.Get)
	authed.HandleFunc("GET /api/v1/cards/{id}/bill", cardHandler.GetBill)
	authed.HandleFunc("POST /api/v1/cards/{id}/pay-bill", cardHandler.PayBill)

	authed.HandleFunc("POST /api/v1/customers", partyHandler.CreateCustomer)
	authed.HandleFunc("GET /api/v1/customers", partyHandler.ListCustomers)
	authed.HandleFunc("POST /api/v1/suppliers", partyHandler.CreateSupplier)
	authed.HandleFunc("GET /api/v1/suppliers", partyHandler.ListSuppliers)

	authed.HandleFunc("POST /api/v1/transactions", transactionHandler.Create)
	authed.HandleFunc("GET /api/v1/transactions", transactionHandler.List)
	authed.HandleFunc("GET /api/v1/transactions/{id}", transactionHandler.Get)
	authed.HandleFunc("PUT /api/v1/transactions/{id}", transactionHandler.Update)
	authed.HandleFunc("DELETE /api/v1/transactions/{id}", transactionHandler.Delete)
	authed.HandleFunc("POST /api/v1/card-expenses", transactionHandler.CreateCardExpense)

	authed.HandleFunc("POST /api/v1/payables", openItemHandler.CreatePayable)
	authed.HandleFunc("GET /api/v1/payables", openItemHandler.ListPayables)
	authed.HandleFunc("GET /api/v1/payables/{id}", openItemHandler.GetPayable)
	authed.HandleFunc("POST /api/v1/payables/{id}/pay", openItemHandler.PayPayable)
	authed.HandleFunc("POST /api/v1/receivables", openItemHandler.CreateReceivable)
	authed.HandleFunc("GET /api/v1/receivables", openItemHandler.ListReceivables)
	authed.HandleFunc("POST /api/v1/receivables/{id}/receive", openItemHandler.ReceiveReceivable)

	authed.HandleFunc("GET /api/v1/reports/balance", reportHandler.Balance)
	authed.HandleFunc("GET /api/v1/reports/cash-flow", reportHandler.CashFlow)
	authed.HandleFunc("GET /api/v1/reports/monthly", reportHandler.Monthly)
	authed.HandleFunc("GET /api/v1/reports/aging", reportHandler.Aging)

	mux.Handle("/api/v1/", middleware.Auth(cfg.JWTSecret)(authed))

	chain := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
