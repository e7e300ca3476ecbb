package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/gasfluxo/backend/src/config"
	"github.com/username/gasfluxo/backend/src/database"
	"github.com/username/gasfluxo/backend/src/handlers"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/matching"
	"github.com/username/gasfluxo/backend/src/security"
	"github.com/username/gasfluxo/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":     true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("GasFluxo backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	summaryCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret)

	engine := matching.NewEngine(matching.Config{
		OrderTolerancePct:   config.Cfg.OrderTolerancePct,
		OrderToleranceDays:  config.Cfg.OrderToleranceDays,
		LedgerTolerancePct:  config.Cfg.LedgerTolerancePct,
		LedgerToleranceDays: config.Cfg.LedgerToleranceDays,
	})

	reconciliationService := services.NewReconciliationService(database.DB, engine, config.Cfg.LedgerLookbackDays, summaryCache)
	importService := services.NewImportService(database.DB, reconciliationService)
	manualLinkService := services.NewManualLinkService(database.DB, reconciliationService)

	importHandler := handlers.NewImportHandler(importService)
	reconcileHandler := handlers.NewReconcileHandler(reconciliationService)
	txHandler := handlers.NewTransactionHandler(manualLinkService)
	candidateHandler := handlers.NewCandidateHandler()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "GasFluxo Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Rotas Protegidas (token com a unidade de negócio)
		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(authService))

			r.Post("/statements/import", importHandler.HandleImport)

			r.Get("/transactions", txHandler.HandleListTransactions)
			r.Post("/transactions/{id}/link", txHandler.HandleLink)
			r.Post("/transactions/{id}/unlink", txHandler.HandleUnlink)
			r.Post("/transactions/{id}/accept", txHandler.HandleAccept)

			r.Post("/reconcile/run", reconcileHandler.HandleRun)
			r.Get("/reconcile/summary", reconcileHandler.HandleSummary)

			r.Get("/orders/unlinked", candidateHandler.HandleListUnlinkedOrders)
			r.Get("/ledger-movements", candidateHandler.HandleListLedgerMovements)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
