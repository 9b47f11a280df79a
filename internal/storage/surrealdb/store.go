// Package surrealdb implements Quanta's storage layer on SurrealDB.
package surrealdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store implements interfaces.MarketStore on a SurrealDB connection.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStore connects to SurrealDB and prepares the tables Quanta uses.
func NewStore(logger *common.Logger, cfg common.SurrealDBConfig) (*Store, error) {
	ctx := context.Background()

	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying non-existent tables.
	tables := []string{"market_data", "consensus_report", "system_kv"}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	logger.Info().
		Str("url", cfg.URL).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB store initialized")

	return &Store{db: db, logger: logger}, nil
}

// --- Market data ---

func (s *Store) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	data, err := surrealdb.Select[models.MarketData](ctx, s.db, surrealmodels.NewRecordID("market_data", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select market data: %w", err)
	}
	if data == nil || data.Ticker == "" {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *Store) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("market_data", data.Ticker), "data": data}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.MarketData](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save market data after retries: %w", lastErr)
}

func (s *Store) DeleteMarketData(ctx context.Context, ticker string) error {
	_, err := surrealdb.Delete[models.MarketData](ctx, s.db, surrealmodels.NewRecordID("market_data", ticker))
	if err != nil {
		return fmt.Errorf("failed to delete market data: %w", err)
	}
	return nil
}

// --- Consensus reports ---

// SaveConsensusReport stores the latest consensus run for a ticker.
// Runs are keyed by ticker so each ticker holds its most recent report.
func (s *Store) SaveConsensusReport(ctx context.Context, report *models.ConsensusReport) error {
	sql := "UPSERT $rid CONTENT $report"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("consensus_report", report.Ticker), "report": report}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.ConsensusReport](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save consensus report after retries: %w", lastErr)
}

func (s *Store) GetConsensusReport(ctx context.Context, ticker string) (*models.ConsensusReport, error) {
	report, err := surrealdb.Select[models.ConsensusReport](ctx, s.db, surrealmodels.NewRecordID("consensus_report", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select consensus report: %w", err)
	}
	if report == nil || report.RunID == "" {
		return nil, ErrNotFound
	}
	return report, nil
}

// --- System KV ---

type sysKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Store) GetSystemKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[sysKV](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil || kv == nil || kv.Key == "" {
		return "", ErrNotFound
	}
	return kv.Value, nil
}

func (s *Store) SetSystemKV(ctx context.Context, key, value string) error {
	kv := sysKV{Key: key, Value: value}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]sysKV](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to set system KV after retries: %w", lastErr)
}

func (s *Store) Close() error {
	s.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.MarketStore = (*Store)(nil)
