package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pos-system/internal/app/audit"
	"pos-system/internal/app/catalog"
	"pos-system/internal/app/kitchen"
	"pos-system/internal/app/ledger"
	"pos-system/internal/app/printing"
	"pos-system/internal/app/reports"
	"pos-system/internal/app/staff"
	"pos-system/internal/app/tables"
	"pos-system/internal/common/httpx"
	"pos-system/internal/common/logger"
	"pos-system/internal/config"
	"pos-system/internal/connections/database"
	"pos-system/internal/connections/rabbitmq"
	"pos-system/internal/connections/redisx"
	"pos-system/internal/domain"
)

// Run assembles the whole POS service and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rabbit, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer rabbit.Close()

	if err := rabbit.DeclareAll(); err != nil {
		return fmt.Errorf("declare rabbitmq topology: %w", err)
	}

	rdb := redisx.New(cfg.Redis.Addr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		// the board caches are optional; run without them
		lg.Error("redis_unavailable", err, nil)
		rdb = nil
	}
	cache := redisx.NewCache(rdb)

	recorder := audit.NewRabbitRecorder(rabbit, lg)
	notifier := kitchen.NewRabbitNotifier(rabbit, lg)

	staffRepo := staff.NewRepository(pool)
	staffSvc := staff.NewService(staffRepo, recorder, cfg.Auth.JWTSecret)
	if err := staffSvc.EnsureAdmin(ctx, cfg.Auth.AdminPassword); err != nil {
		return err
	}

	catalogSvc := catalog.NewService(catalog.NewRepository(pool))
	ledgerSvc := ledger.NewService(ledger.NewRepository(pool), recorder, lg)
	tablesSvc := tables.NewService(tables.NewRepository(pool), ledgerSvc, cache, lg)
	kitchenSvc := kitchen.NewService(kitchen.NewRepository(pool), notifier, cache, lg)
	reportsSvc := reports.NewService(reports.NewRepository(pool))

	staffHandler := staff.NewHandler(staffSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc, catalogSvc)
	tablesHandler := tables.NewHandler(tablesSvc)
	kitchenHandler := kitchen.NewHandler(kitchenSvc)
	printingHandler := printing.NewHandler(printing.NewRepository(pool), ledgerSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"postgres": "ok", "rabbitmq": "ok"}
		code := http.StatusOK
		if err := pool.Ping(req.Context()); err != nil {
			status["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := rabbit.Ping(); err != nil {
			status["rabbitmq"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, status)
	})

	staffHandler.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(staff.Authenticate(staffSvc))

		catalogHandler.Register(r)
		tablesHandler.Register(r)
		ledgerHandler.Register(r)
		kitchenHandler.Register(r)
		printingHandler.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(staff.RequireRole(domain.RoleAdmin, domain.RoleOwner))
			staffHandler.RegisterAdmin(r)
			catalogHandler.RegisterAdmin(r)
			tablesHandler.RegisterAdmin(r)
			reportsHandler.Register(r)
		})
	})

	lg.Info("api_listening", map[string]any{"port": cfg.HTTP.Port})
	return httpx.New(fmt.Sprintf(":%d", cfg.HTTP.Port), r).Run(ctx)
}
