package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/davidhsv/lunchable-splitlunch/internal/ledger"
	"github.com/davidhsv/lunchable-splitlunch/internal/reconcile"
	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Tokens usually live in a .env next to the binary; missing file is fine
	godotenv.Load()

	fs := ff.NewFlagSet("splitlunch")
	var (
		port             = fs.IntLong("port", 8080, "HTTP server port")
		dbPath           = fs.StringLong("db", "splitlunch.db", "Database file path")
		splitwiseToken   = fs.StringLong("splitwise-token", "", "Splitwise personal access token (or set SPLITLUNCH_SPLITWISE_TOKEN)")
		splitwiseURL     = fs.StringLong("splitwise-url", "", "Splitwise API base URL (default: public API)")
		ledgerToken      = fs.StringLong("ledger-token", "", "Budgeting ledger API token (or set SPLITLUNCH_LEDGER_TOKEN)")
		ledgerURL        = fs.StringLong("ledger-url", "", "Budgeting ledger API base URL (default: hosted API)")
		assetID          = fs.IntLong("asset-id", 0, "Ledger asset id mirroring the Splitwise balance (0 disables balance updates)")
		lookbackDays     = fs.IntLong("lookback-days", 90, "How many days back the first sync reaches")
		interval         = fs.DurationLong("interval", 6*time.Hour, "Time between background sync passes")
		once             = fs.BoolLong("once", "Run a single sync pass and exit")
		reimbursementTag = fs.StringLong("reimbursement-tag", "splitwise-reimbursable", "Tag attached to reimbursable ledger entries")
		authUser         = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass         = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion      = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SPLITLUNCH"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *splitwiseToken == "" {
		slog.Error("Splitwise token is required. Set --splitwise-token flag or SPLITLUNCH_SPLITWISE_TOKEN environment variable")
		os.Exit(1)
	}
	if *ledgerToken == "" {
		slog.Error("Ledger token is required. Set --ledger-token flag or SPLITLUNCH_LEDGER_TOKEN environment variable")
		os.Exit(1)
	}

	slog.Info("Initializing database...")
	db, err := reconcile.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	source := splitwise.NewClient(*splitwiseURL, *splitwiseToken)
	ldg := ledger.NewClient(*ledgerURL, *ledgerToken)

	service := reconcile.NewService(db, source, ldg, reconcile.Config{
		Lookback:         time.Duration(*lookbackDays) * 24 * time.Hour,
		AssetID:          int64(*assetID),
		ReimbursementTag: *reimbursementTag,
	})

	if *once {
		result, err := service.Sync(context.Background())
		if err != nil {
			slog.Error("Sync failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Sync finished", "fetched", result.Fetched, "synced", result.Synced, "skipped", result.Skipped)
		if *assetID != 0 {
			if _, err := service.UpdateBalance(context.Background()); err != nil {
				slog.Error("Balance update failed", "error", err)
				os.Exit(1)
			}
		}
		return
	}

	basicAuth := reconcile.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := reconcile.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Background sync loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			if _, err := service.Sync(ctx); err != nil {
				slog.Error("Sync failed", "error", err)
			}
			if *assetID != 0 {
				if _, err := service.UpdateBalance(ctx); err != nil {
					slog.Error("Balance update failed", "error", err)
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
