package main

import (
	"context"
	"database/sql"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/events"
	"github.com/kervinch/storefront-api/internal/jsonlog"
	"github.com/kervinch/storefront-api/internal/migrations"
	"github.com/kervinch/storefront-api/internal/s3"
	"github.com/kervinch/storefront-api/internal/telemetry"

	_ "github.com/lib/pq"
)

var (
	buildTime string
	version   string
)

// config holds every setting the server reads at startup. Each flag defaults
// to the matching environment variable so a .env file can drive local runs.
type config struct {
	port     int
	env      string
	logLevel string
	db       struct {
		dsn          string
		maxOpenConns int
		maxIdleConns int
		migrate      bool
	}
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}
	cors struct {
		trustedOrigins []string
	}
	s3 struct {
		bucket    string
		region    string
		publicURL string
	}
	nats struct {
		url     string
		subject string
	}
	catalog struct {
		galleryPolicy string
	}
}

// application holds the dependencies of the HTTP handlers, helpers and
// middleware.
type application struct {
	config         config
	logger         *jsonlog.Logger
	models         data.Models
	storage        imageStorage
	notifier       events.Notifier
	reconciler     *catalog.Reconciler
	catalogMetrics *telemetry.CatalogMetrics
	registry       *prometheus.Registry
	sanitizer      *bluemonday.Policy
	wg             sync.WaitGroup
}

func main() {
	// A missing .env is fine, the environment or the flags win anyway.
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", envInt("PORT", 4000), "API server port")
	flag.StringVar(&cfg.env, "env", env("ENV", "development"), "Environment (development|staging|production)")
	flag.StringVar(&cfg.logLevel, "log-level", env("LOG_LEVEL", "info"), "Minimum log level (info|error|fatal|off)")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", envInt("DB_MAX_IDLE_CONNS", 25), "PostgreSQL max idle connections")
	flag.BoolVar(&cfg.db.migrate, "db-migrate", envBool("DB_MIGRATE", true), "Apply schema migrations on startup")

	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", envFloat("LIMITER_RPS", 2), "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", envInt("LIMITER_BURST", 4), "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", envBool("LIMITER_ENABLED", true), "Enable rate limiter")

	cfg.cors.trustedOrigins = strings.Fields(os.Getenv("CORS_TRUSTED_ORIGINS"))
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space seperated)", func(val string) error {
		cfg.cors.trustedOrigins = strings.Fields(val)
		return nil
	})

	flag.StringVar(&cfg.s3.bucket, "s3-bucket", env("S3_BUCKET", "storefront-public"), "S3 bucket for catalog images")
	flag.StringVar(&cfg.s3.region, "s3-region", env("S3_REGION", s3.REGION), "S3 region")
	flag.StringVar(&cfg.s3.publicURL, "s3-public-url", os.Getenv("S3_PUBLIC_URL"), "Public base URL of the image bucket")

	flag.StringVar(&cfg.nats.url, "nats-url", os.Getenv("NATS_URL"), "NATS server URL (empty applies category updates in-process)")
	flag.StringVar(&cfg.nats.subject, "nats-subject", env("NATS_SUBJECT", events.DefaultSubject), "NATS subject for category value notifications")

	flag.StringVar(&cfg.catalog.galleryPolicy, "gallery-policy", env("GALLERY_POLICY", string(catalog.GalleryMerge)), "Gallery handling on full variation replace (merge|replace)")

	displayVersion := flag.Bool("version", false, "Display versions and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		os.Exit(0)
	}

	logger := jsonlog.New(os.Stdout, jsonlog.ParseLevel(cfg.logLevel))
	defer logger.Sync()

	policy, err := catalog.ParseGalleryPolicy(cfg.catalog.galleryPolicy)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	db, gormDB, err := openDB(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	defer db.Close()

	logger.PrintInfo("database connection pool established", nil)

	if cfg.db.migrate {
		err = migrations.Up(db)
		if err != nil {
			logger.PrintFatal(err, nil)
		}

		logger.PrintInfo("database migrations applied", nil)
	}

	storage, err := s3.New(cfg.s3.bucket, cfg.s3.region, cfg.s3.publicURL)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	models := data.NewModels(gormDB)

	var notifier events.Notifier = events.Recorder{Categories: models.ProductCategories}

	if cfg.nats.url != "" {
		nc, err := nats.Connect(cfg.nats.url, nats.Name("storefront-api"))
		if err != nil {
			logger.PrintFatal(err, map[string]string{"nats_url": cfg.nats.url})
		}

		defer nc.Drain()

		_, err = events.Subscribe(nc, cfg.nats.subject, notifier, func(err error) {
			logger.PrintError(err, map[string]string{"subject": cfg.nats.subject})
		})
		if err != nil {
			logger.PrintFatal(err, nil)
		}

		notifier = events.NewPublisher(nc, cfg.nats.subject)

		logger.PrintInfo("nats connection established", map[string]string{"subject": cfg.nats.subject})
	}

	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() interface{} {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))

	app := &application{
		config:         cfg,
		logger:         logger,
		models:         models,
		storage:        storage,
		notifier:       notifier,
		reconciler:     catalog.NewReconciler(policy),
		catalogMetrics: telemetry.NewCatalogMetrics(registry, ""),
		registry:       registry,
		sanitizer:      bluemonday.UGCPolicy(),
	}

	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

func openDB(cfg config) (*sql.DB, *gorm.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	return db, gormDB, nil
}

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
