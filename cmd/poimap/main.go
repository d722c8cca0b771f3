package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"poimap/internal/api"
	"poimap/pkg/catalog"
	"poimap/pkg/config"
	"poimap/pkg/db"
	"poimap/pkg/logging"
	"poimap/pkg/scorer"
	"poimap/pkg/session"
	"poimap/pkg/store"
	"poimap/pkg/version"
)

var (
	configPath = flag.String("config", "configs/poimap.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load(".env")

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("PoiMap Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	cat, err := loadCatalog(appCfg)
	if err != nil {
		return err
	}

	sessions := session.NewManager(cat, st, &appCfg.Map)
	sessions.SetIdleTTL(time.Duration(appCfg.Server.SessionTTL))
	defer sessions.CloseAll()

	return runServer(ctx, appCfg, sessions)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// loadCatalog reads the catalog and its side tables, then scores it.
func loadCatalog(appCfg *config.Config) (*catalog.Catalog, error) {
	var opts catalog.Options
	var err error

	if p := appCfg.Scorer.RulesPath; p != "" {
		if opts.Rules, err = scorer.LoadRules(p); err != nil {
			return nil, err
		}
	}
	if p := appCfg.Catalog.ImportancePath; p != "" {
		if opts.Overrides, err = scorer.LoadOverrides(p); err != nil {
			return nil, err
		}
	}
	if opts.Links, err = catalog.LoadLinks(appCfg.Catalog.LinksPath); err != nil {
		return nil, err
	}

	src, err := catalog.LoadFile(appCfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	cat, report, err := catalog.Build(src, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	if len(report.Rejected) > 0 {
		slog.Warn("Catalog loaded with rejected points", "accepted", report.Accepted, "rejected", len(report.Rejected))
	}
	return cat, nil
}

func runServer(ctx context.Context, cfg *config.Config, sessions *session.Manager) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address, api.NewSessionHandler(sessions), shutdownFunc)
	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
