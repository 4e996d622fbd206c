// Command import loads a YAML event catalog into the SQLite database, or
// exports the stored catalog back to YAML.
//
// Usage:
//
//	go run ./cmd/import -yaml catalog.yaml -db data/calendar.db
//	go run ./cmd/import -db data/calendar.db -export catalog.yaml
//	go run ./cmd/import -builtin -db data/calendar.db
//
// This tool:
// 1. Creates/opens the SQLite database
// 2. Runs migrations to ensure schema is current
// 3. Parses and validates the catalog (references, cycles, field checks)
// 4. Replaces the stored catalog in a single transaction
//
// The import replaces whatever catalog was stored before. A running server
// picks the new catalog up on POST /api/v1/admin/catalog/reload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/database"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
	"github.com/zapponejosh/yphilios-calendar/internal/logger"
	"github.com/zapponejosh/yphilios-calendar/internal/seed"
)

func main() {
	// Parse command line flags
	yamlPath := flag.String("yaml", "", "Path to the YAML catalog to import")
	builtin := flag.Bool("builtin", false, "Import the built-in catalog")
	exportPath := flag.String("export", "", "Write the stored catalog to this YAML file instead of importing")
	dbPath := flag.String("db", "data/calendar.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logger.New(os.Stdout, level, "text")

	var err error
	switch {
	case *exportPath != "":
		err = export(*dbPath, *exportPath, log)
	case *yamlPath != "" || *builtin:
		err = run(*yamlPath, *dbPath, log)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("import complete")
}

func openDB(ctx context.Context, dbPath string, log *slog.Logger) (*database.DB, error) {
	log.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrated, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", migrated))
	return db, nil
}

func run(yamlPath, dbPath string, log *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse the catalog
	// =========================================================================
	var (
		f   events.File
		err error
	)
	if yamlPath == "" {
		log.Info("using built-in catalog")
		f, err = events.DefaultFile()
	} else {
		log.Info("reading catalog", slog.String("path", yamlPath))
		f, err = events.LoadFile(yamlPath)
	}
	if err != nil {
		return err
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	db, err := openDB(ctx, dbPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// =========================================================================
	// Step 3: Replace the stored catalog
	// =========================================================================
	stats, err := seed.Import(ctx, db, f)
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import by loading it back
	// =========================================================================
	catalog, err := seed.LoadCatalog(ctx, db, calendar.New())
	if err != nil {
		return fmt.Errorf("verify catalog: %w", err)
	}
	tags, err := db.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	elapsed := time.Since(startTime)
	log.Info("import verified",
		slog.Int("entries", stats.Total()),
		slog.Int("recurring_events", catalog.Registry().Len()),
		slog.Int("tags", len(tags)),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Recurring events:    %d\n", stats.Events)
	fmt.Printf("Previous campaigns:  %d\n", stats.PreviousCampaigns)
	fmt.Printf("Campaign sessions:   %d\n", stats.Campaigns)
	fmt.Printf("Notes:               %d\n", stats.Notes)
	fmt.Printf("Distinct tags:       %d\n", len(tags))
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

func export(dbPath, outPath string, log *slog.Logger) error {
	ctx := context.Background()

	db, err := openDB(ctx, dbPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListEntries(ctx, "")
	if err != nil {
		return err
	}
	f, err := seed.File(entries)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := events.WriteFile(out, f); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}

	log.Info("catalog exported",
		slog.String("path", outPath),
		slog.Int("entries", len(entries)),
	)
	return nil
}
