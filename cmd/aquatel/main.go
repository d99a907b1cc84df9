// Package main implements the aquatel scheduled telemetry job: on each
// tick it provisions wallet credentials from object storage, connects to
// the database, and inserts a batch of synthetic water-usage records.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aquatel/aquatel/internal/config"
	"github.com/aquatel/aquatel/internal/gateway"
	"github.com/aquatel/aquatel/internal/generator"
	"github.com/aquatel/aquatel/internal/job"
	"github.com/aquatel/aquatel/internal/observability"
	"github.com/aquatel/aquatel/internal/storage"
	"github.com/aquatel/aquatel/internal/wallet"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		interval    time.Duration
		batchSize   int
		runOnce     bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.DurationVar(&interval, "interval", 0, "Time between scheduled runs (overrides config)")
	flag.IntVar(&batchSize, "batch-size", 0, "Records generated per run (overrides config)")
	flag.BoolVar(&runOnce, "once", false, "Execute a single run and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Aquatel - Synthetic Water Usage Telemetry Job\n\n")
		fmt.Fprintf(os.Stderr, "Usage: aquatel [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  aquatel --config /etc/aquatel/config.yaml\n")
		fmt.Fprintf(os.Stderr, "  aquatel --once --batch-size 100\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_STORAGE_TYPE        Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_S3_BUCKET           S3 bucket holding credential artifacts\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_CONFIG_CONTAINER    Container/prefix for wallet files\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_WALLET_LOCATION     Local wallet staging directory\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_DB_USER             Database username\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_DB_PASSWORD         Database password\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_DB_DSN              Net service alias or literal DSN\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_DB_WALLET_PASSWORD  Wallet password\n")
		fmt.Fprintf(os.Stderr, "  AQUATEL_JOB_INTERVAL        Time between runs (e.g. 10s)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("aquatel version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Local .env files are honored the way the deployed function
	// environment resolves its settings; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, interval, batchSize)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, stats, err := buildRunner(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to assemble job: %v", err)
	}

	if runOnce {
		now := time.Now()
		res := runner.Run(ctx, job.Trigger{ScheduledFor: now, FiredAt: now})
		if res.State != job.StateDone {
			os.Exit(1)
		}
		return
	}

	sched := job.NewScheduler(runner, job.SchedulerConfig{
		Interval:      cfg.Job.Interval,
		RunOnStart:    cfg.Job.RunOnStart,
		LateTolerance: cfg.Job.LateTolerance,
	})
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Printf("Received signal: %v", sig)

	if err := sched.Stop(); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}

	snap := stats.Snapshot()
	log.Printf("aquatel: %d runs (%d done, %d aborted), %d rows inserted, %d late triggers",
		snap.TotalRuns, snap.ByState[string(job.StateDone)],
		snap.ByState[string(job.StateAborted)], snap.RowsInserted, snap.LateTriggers)
}

// loadConfig merges defaults, file, environment, and flag overrides.
func loadConfig(configFile string, interval time.Duration, batchSize int) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if interval > 0 {
		cfg.Job.Interval = interval
	}
	if batchSize > 0 {
		cfg.Job.BatchSize = batchSize
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildRunner wires storage, provisioner, gateway and generator.
func buildRunner(ctx context.Context, cfg *config.Config) (*job.Runner, *observability.RunStats, error) {
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	prov := wallet.NewProvisioner(store, cfg.Wallet.Container, cfg.Wallet.WalletDir)

	gw := &job.SQLGateway{
		Params: gateway.ConnectParams{
			Driver:         cfg.Database.Driver,
			ConfigDir:      cfg.Wallet.WalletDir,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			DSN:            cfg.Database.DSN,
			WalletPassword: cfg.Database.WalletPassword,
			Table:          cfg.Database.Table,
		},
		Bootstrap: cfg.Database.CreateTable,
	}

	stats := observability.NewRunStats()
	runner := job.NewRunner(prov, gw, generator.NewGenerator(nil), cfg.Job.BatchSize, stats)
	return runner, stats, nil
}

// newStorage selects the object storage backend.
func newStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	switch cfg.Storage.Type {
	case "s3":
		return storage.NewS3Storage(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
			// Custom endpoints (MinIO, LocalStack) need path style
			UsePathStyle: cfg.Storage.S3.Endpoint != "",
		})
	case "local":
		return storage.NewLocalStorage(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
