// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/adapters/db"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/pkg/config"
	"github.com/ammerola/fieldstock-be/internal/pkg/logger"
)

const seededBy = "seeder"

// MasterData is the part of the master data repository the seeder writes
type MasterData interface {
	UpsertCenter(ctx context.Context, c *domain.Center) error
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertReseller(ctx context.Context, r *domain.Reseller) error
}

// Seeder writes a parsed workbook to the database
type Seeder struct {
	master MasterData
	uow    ports.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// Summary counts what a run wrote
type Summary struct {
	Centers        int
	Products       int
	Resellers      int
	LedgersCreated int
	LedgersSkipped int
	UnitsStocked   int
}

func main() {
	var (
		workbook = flag.String("workbook", "./seed.xlsx", "Workbook with Centers, Products, Resellers and Opening Stock sheets")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Parse and validate the workbook without writing")
		migrate  = flag.Bool("migrate", true, "Apply database migrations first")
		reset    = flag.Bool("reset", false, "Roll back every migration before seeding (development only)")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json").Logger

	data, err := loadWorkbook(*workbook)
	if err != nil {
		slogger.Error("failed to load workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slogger.Info("workbook loaded",
		slog.Int("centers", len(data.Centers)),
		slog.Int("products", len(data.Products)),
		slog.Int("resellers", len(data.Resellers)),
		slog.Int("opening_stock_rows", len(data.Stock)))

	if *dryRun {
		fmt.Println("[DRY RUN] workbook is valid, no changes were made to the database")
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	if *reset {
		if cfg.IsProduction() {
			slogger.Error("refusing to reset a production database")
			os.Exit(1)
		}
		if err := resetSchema(ctx, migrationConfig, slogger); err != nil {
			slogger.Error("failed to reset database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if *migrate || *reset {
		if err := db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     4,
		MinConnections:     1,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	seeder := &Seeder{
		master: db.NewMasterDataRepository(database, slogger),
		uow:    db.NewUnitOfWork(database, slogger),
		logger: slogger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	summary, err := seeder.Run(ctx, data)
	if err != nil {
		slogger.Error("seed operation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Centers:   %d\n", summary.Centers)
	fmt.Printf("Products:  %d\n", summary.Products)
	fmt.Printf("Resellers: %d\n", summary.Resellers)
	fmt.Printf("Ledgers:   %d created, %d already present\n", summary.LedgersCreated, summary.LedgersSkipped)
	fmt.Printf("Units:     %d\n", summary.UnitsStocked)

	slogger.Info("seed operation completed",
		slog.Int("ledgers_created", summary.LedgersCreated),
		slog.Int("units_stocked", summary.UnitsStocked))
}

// Run upserts master data, then opens a center ledger for every opening
// stock row. Ledgers that already exist are left alone so reruns are safe.
func (s *Seeder) Run(ctx context.Context, data *SeedData) (*Summary, error) {
	summary := &Summary{}

	for _, c := range data.Centers {
		if err := s.master.UpsertCenter(ctx, c); err != nil {
			return summary, err
		}
		summary.Centers++
	}
	for _, p := range data.Products {
		if err := s.master.UpsertProduct(ctx, p); err != nil {
			return summary, err
		}
		summary.Products++
	}
	for _, r := range data.Resellers {
		if err := s.master.UpsertReseller(ctx, r); err != nil {
			return summary, err
		}
		summary.Resellers++
	}

	for _, row := range data.Stock {
		product := data.ProductBySKU(row.SKU)
		created, err := s.openLedger(ctx, product, row)
		if err != nil {
			return summary, fmt.Errorf("opening stock %s at %s: %w", row.SKU, row.CenterID, err)
		}
		if !created {
			summary.LedgersSkipped++
			s.logger.InfoContext(ctx, "ledger already present, skipping",
				slog.String("center_id", row.CenterID.String()),
				slog.String("sku", row.SKU))
			continue
		}
		summary.LedgersCreated++
		summary.UnitsStocked += row.Quantity
	}

	return summary, nil
}

// resetSchema rolls back every migration and reports what was left
func resetSchema(ctx context.Context, cfg *db.MigrationConfig, logger *slog.Logger) error {
	migrator, err := db.NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Down(ctx); err != nil {
		return err
	}
	status, err := migrator.Status(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "database reset",
		slog.Uint64("version", uint64(status.CurrentVersion)),
		slog.Int("applied", len(status.Applied)))
	return nil
}

func (s *Seeder) openLedger(ctx context.Context, product *domain.Product, row OpeningStock) (bool, error) {
	created := false
	err := s.uow.Execute(ctx, func(ctx context.Context, store ports.StockStore) error {
		existing, err := store.Ledgers().Get(ctx, domain.LedgerCenter, row.CenterID, product.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		now := s.now()
		ledger := domain.NewStockLedger(domain.LedgerCenter, row.CenterID, row.CenterID, product.ID, now)
		units := make([]domain.SerialUnit, 0, len(row.Serials))
		for _, sn := range row.Serials {
			units = append(units, domain.NewSerialUnit(sn, row.CenterID, domain.SourceOpening))
		}
		if err := ledger.Restock(row.Quantity, units, domain.SourceOpening, uuid.Nil, seededBy, "opening stock", now); err != nil {
			return err
		}
		if err := store.Ledgers().Create(ctx, ledger); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
