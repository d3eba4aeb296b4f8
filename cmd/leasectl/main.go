package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/arrendamientos-api/internal/cli"
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/database"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/services"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	factory := func(ctx context.Context, clock services.Clock) (*services.Services, func(), error) {
		db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		svcs := services.NewServices(repository.NewRepositories(db), nil, cfg, clock, nil)
		return svcs, func() { _ = sqlDB.Close() }, nil
	}

	if err := cli.NewRootCommand(factory, cfg.Timezone).Execute(); err != nil {
		logger.Error("leasectl failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
