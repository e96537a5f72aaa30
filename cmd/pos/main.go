package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pos-system/internal/app/api"
	"pos-system/internal/app/audit"
	"pos-system/internal/common/logger"
	"pos-system/internal/config"
	"pos-system/internal/connections/database"
	"pos-system/internal/connections/rabbitmq"
)

func main() {
	mode := flag.String("mode", "", "service to run: api | audit-subscriber")
	configPath := flag.String("config", "config.yml", "path to the configuration file")
	flag.Parse()

	// .env is optional; the config file and environment take over from here
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		lg := logger.New("pos-api")
		if err := api.Run(ctx, cfg, lg); err != nil {
			lg.Error("service_failed", err, nil)
			os.Exit(1)
		}
	case "audit-subscriber":
		lg := logger.New("pos-audit")
		if err := runAuditSubscriber(ctx, cfg, lg); err != nil {
			lg.Error("service_failed", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: pos --mode api | audit-subscriber")
		os.Exit(2)
	}
}

func runAuditSubscriber(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
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

	return audit.NewSubscriber(rabbit, pool, lg).Run(ctx)
}
