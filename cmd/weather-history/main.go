package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weather-history/internal/api/http"
	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/scheduler"
	"github.com/i474232898/weather-history/internal/store"
	"github.com/i474232898/weather-history/internal/weather"
	"github.com/i474232898/weather-history/internal/weather/providers"
)

func main() {
	migrate := flag.Bool("migrate", false, "create the database tables and exit")
	once := flag.Bool("once", false, "run a single ingest batch and exit")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCfg := store.Config{
		DSN:          cfg.DatabaseURL,
		LogLevel:     cfg.DBLogLevel,
		MaxOpenConns: cfg.DBMaxOpenConn,
	}

	if *migrate {
		if err := runMigrations(ctx, storeCfg); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("INFO: tables are up to date")
		return
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	httpCfg := providers.HTTPClientConfig{
		Client:  httpClient,
		Backoff: providers.DefaultBackoff,
		Limiter: rate.NewLimiter(rate.Limit(cfg.OutboundRPS), 1),
	}

	geo, err := newGeocoder(cfg, httpCfg)
	if err != nil {
		log.Fatalf("failed to configure geocoder: %v", err)
	}

	source := weather.FallbackSource{
		Primary:  providers.NewArchiveSource(httpCfg, cfg.ArchiveBaseURL, nil),
		Fallback: weather.NewSyntheticSource(nil, nil),
	}

	// Batches acquire their own store; the API keeps a long-lived reader.
	var (
		opener weather.StoreOpener
		reader weather.Reader
	)
	switch cfg.StoreDriver {
	case "memory":
		mem := store.NewMemoryStore()
		opener, reader = store.MemoryOpener(mem), mem
	default:
		opener = store.PostgresOpener(storeCfg)
	}

	runner := weather.NewRunner(opener, geo, source, weather.PipelineConfig{
		LookbackDays: cfg.LookbackDays,
	})

	if *once {
		report, err := runner.RunBatch(ctx, cfg.Locations)
		if err != nil {
			log.Fatalf("batch %s failed: %v", report.RunID, err)
		}
		return
	}

	if reader == nil {
		pg, err := store.OpenPostgres(ctx, storeCfg)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer pg.Close()
		reader = pg
	}

	// Scheduler that periodically ingests the configured locations.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, runner)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(reader, runner)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func runMigrations(ctx context.Context, cfg store.Config) error {
	pg, err := store.OpenPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()
	return pg.Migrate(ctx)
}

func newGeocoder(cfg *config.AppConfig, httpCfg providers.HTTPClientConfig) (weather.Geocoder, error) {
	if cfg.Geocoder == "google" {
		g, err := providers.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, httpCfg.Limiter)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return providers.NewOpenMeteoGeocoder(httpCfg, cfg.GeocodingBaseURL), nil
}
