// Package app wires Quanta's configuration, storage, clients, and
// services into a single composition root shared by the entry points.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/quanta/internal/clients/eodhd"
	"github.com/bobmcallan/quanta/internal/clients/gemini"
	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/services/analysis"
	"github.com/bobmcallan/quanta/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Store           interfaces.MarketStore
	MarketClient    interfaces.MarketDataClient
	Commentary      interfaces.CommentaryClient
	AnalysisService interfaces.AnalysisService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic
// is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Check provided path, QUANTA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("QUANTA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "quanta.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/quanta.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := surrealdb.NewStore(logger, config.Storage.SurrealDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	eodhdKey, err := common.ResolveAPIKey(ctx, store, "eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - market data will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey(ctx, store, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - consensus runs will be unavailable")
	}

	var marketClient interfaces.MarketDataClient
	if eodhdKey != "" {
		marketClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	var commentary interfaces.CommentaryClient
	if geminiKey != "" {
		geminiClient, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			commentary = geminiClient
		}
	}

	analysisService := analysis.NewService(marketClient, commentary, store, logger, config)

	app := &App{
		Config:          config,
		Logger:          logger,
		Store:           store,
		MarketClient:    marketClient,
		Commentary:      commentary,
		AnalysisService: analysisService,
		StartupTime:     startupStart,
	}

	logger.Info().
		Dur("startup", time.Since(startupStart)).
		Str("environment", config.Environment).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
