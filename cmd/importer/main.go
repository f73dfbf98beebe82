package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	orderrepo "storefront/internal/repository/order"

	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		currency string
	)
	flag.StringVar(&filePath, "file", "", "Path to legacy marketplace order CSV export")
	flag.StringVar(&currency, "currency", "", "Currency for rows without one (defaults to STORE_CURRENCY)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if currency == "" {
		currency = cfg.Currency
	}
	logger, err := logging.New(cfg.LogLevel, "importer")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.DBConnString == "" {
		logger.Fatal("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, orderrepo.NewPostgres(pool, logger), currency, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", count))
	}

	fmt.Printf("Imported %d orders in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
