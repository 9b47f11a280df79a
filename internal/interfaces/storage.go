package interfaces

import (
	"context"

	"github.com/bobmcallan/quanta/internal/models"
)

// SystemKV provides system-level key-value storage (API keys, settings)
type SystemKV interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}

// MarketStore persists market data and consensus runs
type MarketStore interface {
	SystemKV

	// GetMarketData returns cached data for a ticker, or nil when absent
	GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error)
	SaveMarketData(ctx context.Context, data *models.MarketData) error
	DeleteMarketData(ctx context.Context, ticker string) error

	SaveConsensusReport(ctx context.Context, report *models.ConsensusReport) error
	GetConsensusReport(ctx context.Context, ticker string) (*models.ConsensusReport, error)

	Close() error
}
