package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"sam-requests/internal/adapters/auth/idp"
	"sam-requests/internal/adapters/storage/postgres"
	"sam-requests/internal/platform/config"
	"sam-requests/internal/platform/logger"
	"sam-requests/internal/ports/auth"
	"sam-requests/internal/router"
)

// @title SAM Requests API
// @version 1.0
// @description Coordinación de solicitudes de servicio del campus
// @BasePath /
func main() {
	configPath := flag.String("config", "", "ruta del archivo de configuración YAML (opcional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "sam-requests",
	})

	// Sin IdP configurado queda el modo dev con headers X-Debug-User-*.
	var verifier auth.AuthVerifier
	if base := os.Getenv("SAM_IDP_BASE_URL"); base != "" {
		client, err := idp.NewClient(idp.Config{
			BaseURL: base,
			APIKey:  os.Getenv("SAM_IDP_API_KEY"),
		})
		if err != nil {
			log.Error("idp client init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = idp.NewVerifier(client)
	} else {
		log.Warn("no IdP configured, running in dev auth mode", nil)
	}

	opts := router.Options{
		AuthVerifier: verifier,
		SQLitePath:   cfg.SQLitePath,
		ExpoPushURL:  cfg.ExpoPushURL,
		SeedDemoData: cfg.SeedDemoData,
		Log:          log,
	}
	if cfg.DatabaseDSN != "" {
		db, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("postgres connection failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // el stream SSE no tolera write deadline global
		IdleTimeout:  120 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
