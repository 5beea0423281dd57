package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"mellioncoin-cloud/internal/audit"
	"mellioncoin-cloud/internal/auth"
	dashapp "mellioncoin-cloud/internal/dashboard/application"
	dashrepo "mellioncoin-cloud/internal/dashboard/infrastructure/postgres"
	dashhttp "mellioncoin-cloud/internal/dashboard/interfaces/http"
	mellionhttp "mellioncoin-cloud/internal/mellion/interfaces/http"
	"mellioncoin-cloud/internal/observability/metrics"
	ordersapp "mellioncoin-cloud/internal/orders/application"
	ordersrepo "mellioncoin-cloud/internal/orders/infrastructure/postgres"
	ordersinterfaces "mellioncoin-cloud/internal/orders/interfaces"
	ordershttp "mellioncoin-cloud/internal/orders/interfaces/http"
	storage "mellioncoin-cloud/internal/storage/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	ctx := context.Background()
	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.Fatalf("schema error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	userRepo := auth.NewUserRepository(db)
	if err := auth.SeedUsers(ctx, userRepo, cfg.seedAccounts()); err != nil {
		logger.Fatalf("user seed error: %v", err)
	}
	lockout := auth.NewLockoutTracker(nil)
	loginHandler, err := auth.NewLoginHandler(userRepo, lockout, []byte(cfg.JWTSecret), auditRepo)
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}

	orderRepo := ordersrepo.NewOrderRepository(db)
	simulationService, err := ordersapp.NewSimulationService(orderRepo, auditRepo, nil)
	if err != nil {
		logger.Fatalf("simulation service error: %v", err)
	}
	orderHandler, err := ordershttp.NewHandler(simulationService)
	if err != nil {
		logger.Fatalf("order handler error: %v", err)
	}

	analyticsRepo := dashrepo.NewAnalyticsRepository(db)
	dashboardService, err := dashapp.NewService(orderRepo, analyticsRepo)
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}
	dashboardHandler, err := dashhttp.NewHandler(dashboardService)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}

	exportHandler, err := ordersinterfaces.NewExportHandler(simulationService, dashboardService)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}
	backupHandler, err := ordersinterfaces.NewBackupHandler(simulationService, dashboardService)
	if err != nil {
		logger.Fatalf("backup handler error: %v", err)
	}

	projectionHandler := mellionhttp.NewProjectionHandler()
	auditListHandler := audit.NewListHandler(auditRepo)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/login"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/login", loginHandler)
	mux.Handle("/api/v1/simulations", orderHandler)
	mux.Handle("/api/v1/orders", orderHandler)
	mux.Handle("/api/v1/orders/", orderHandler)
	mux.Handle("/api/v1/projections", projectionHandler)
	mux.Handle("/api/v1/projections/", projectionHandler)
	mux.Handle("/api/v1/dashboard", dashboardHandler)
	mux.Handle("/api/v1/analytics", dashboardHandler)
	mux.Handle("/api/v1/exports/", exportHandler)
	mux.Handle("/api/v1/backup", backupHandler)
	mux.Handle("/api/v1/import", backupHandler)
	mux.Handle("/api/v1/security/audit", auditListHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type accountConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type config struct {
	DatabaseURL string          `yaml:"database_url"`
	HTTPAddr    string          `yaml:"http_addr"`
	JWTSecret   string          `yaml:"jwt_secret"`
	Accounts    []accountConfig `yaml:"accounts"`
}

// loadConfig reads env vars first, then an optional yaml file named by
// MELLION_CONFIG overrides them.
func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if path := os.Getenv("MELLION_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("config read error: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("config parse error: %v", err)
		}
	}
	if len(cfg.Accounts) == 0 {
		if password := os.Getenv("MELLION_ADMIN_PASSWORD"); password != "" {
			cfg.Accounts = append(cfg.Accounts, accountConfig{
				Username: getenvDefault("MELLION_ADMIN_USER", "admin"),
				Password: password,
				Role:     string(auth.RoleAdmin),
			})
		}
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func (c config) seedAccounts() []auth.SeedAccount {
	accounts := make([]auth.SeedAccount, 0, len(c.Accounts))
	for _, account := range c.Accounts {
		accounts = append(accounts, auth.SeedAccount{
			Username: account.Username,
			Password: account.Password,
			Role:     auth.Role(account.Role),
		})
	}
	return accounts
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
