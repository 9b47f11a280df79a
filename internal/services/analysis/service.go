// Package analysis orchestrates market data retrieval and the
// quantitative engines behind the dashboard endpoints.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

// Service implements interfaces.AnalysisService.
type Service struct {
	client     interfaces.MarketDataClient
	commentary interfaces.CommentaryClient
	store      interfaces.MarketStore
	logger     *common.Logger

	analysts     []string
	lookbackDays int
	cacheTTL     time.Duration
}

// NewService creates the analysis service.
func NewService(
	client interfaces.MarketDataClient,
	commentary interfaces.CommentaryClient,
	store interfaces.MarketStore,
	logger *common.Logger,
	config *common.Config,
) *Service {
	return &Service{
		client:       client,
		commentary:   commentary,
		store:        store,
		logger:       logger,
		analysts:     config.Analysts,
		lookbackDays: config.Analysis.CandleLookbackDays,
		cacheTTL:     config.Analysis.GetCacheTTL(),
	}
}

// GetMarketData returns candles and fundamentals for a ticker. Cached
// data within the TTL is served directly; otherwise the provider is
// queried and the cache refreshed. A stale cache still serves as a
// fallback when the provider is unreachable.
func (s *Service) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	cached, err := s.store.GetMarketData(ctx, ticker)
	if err == nil && cached != nil && time.Since(cached.LastUpdated) < s.cacheTTL {
		s.logger.Debug().Str("ticker", ticker).Msg("Serving market data from cache")
		return cached, nil
	}

	from := time.Now().AddDate(0, 0, -s.lookbackDays)
	candles, err := s.client.GetCandles(ctx, ticker, interfaces.WithDateRange(from, time.Now()))
	if err != nil {
		if cached != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Provider unavailable, serving stale cache")
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", ticker, err)
	}

	fundamentals, err := s.client.GetFundamentals(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Fundamentals unavailable")
		fundamentals = nil
	}

	data := &models.MarketData{
		Ticker:       ticker,
		Candles:      candles,
		Fundamentals: fundamentals,
		LastUpdated:  time.Now(),
	}

	if err := s.store.SaveMarketData(ctx, data); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache market data")
	}

	return data, nil
}

// GetEtfHoldings resolves top holdings for each ETF ticker. Tickers that
// are not ETFs, or have no holdings data, are skipped with a warning.
func (s *Service) GetEtfHoldings(ctx context.Context, tickers []string) ([]models.EtfHoldings, error) {
	holdings := make([]models.EtfHoldings, 0, len(tickers))
	for _, ticker := range tickers {
		data, err := s.GetMarketData(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if data.Fundamentals == nil || !data.Fundamentals.IsETF {
			s.logger.Warn().Str("ticker", ticker).Msg("Ticker is not an ETF, skipping")
			continue
		}
		holdings = append(holdings, models.EtfHoldings{
			Symbol:   ticker,
			Holdings: data.Fundamentals.TopHoldings,
		})
	}
	return holdings, nil
}

// GetQuote fetches a real-time price snapshot. Quotes are never cached;
// the whole point is freshness.
func (s *Service) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	if s.client == nil {
		return nil, fmt.Errorf("market data provider not configured")
	}
	return s.client.GetQuote(ctx, ticker)
}

// RunConsensus generates a note per configured analyst persona, extracts
// signals from each note, and aggregates them into a consensus report.
// Note generation is sequential (the commentary provider is rate limited)
// while extraction fans out per analyst.
func (s *Service) RunConsensus(ctx context.Context, ticker string) (*models.ConsensusReport, error) {
	data, err := s.GetMarketData(ctx, ticker)
	if err != nil {
		return nil, err
	}

	notes := make([]models.AnalystNote, 0, len(s.analysts))
	for _, analystID := range s.analysts {
		text, err := s.commentary.GenerateNote(ctx, analystID, ticker, data)
		if err != nil {
			return nil, fmt.Errorf("failed to generate note for analyst %s: %w", analystID, err)
		}
		notes = append(notes, models.AnalystNote{AnalystID: analystID, Text: text})
	}

	report := BuildReport(notes)
	report.Ticker = ticker

	if err := s.store.SaveConsensusReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to persist consensus report")
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("run_id", report.RunID).
		Str("sentiment", string(report.Consensus.OverallSentiment)).
		Float64("agreement", report.Consensus.AgreementPercentage).
		Msg("Consensus run complete")

	return report, nil
}

// BuildReport extracts signals from each note concurrently and
// aggregates them. Signal order follows note order regardless of
// goroutine completion order, and aggregation starts only after every
// extraction has finished.
func BuildReport(notes []models.AnalystNote) *models.ConsensusReport {
	signals := make([]models.ExtractedSignals, len(notes))

	var wg sync.WaitGroup
	for i, note := range notes {
		wg.Add(1)
		go func(i int, note models.AnalystNote) {
			defer wg.Done()
			signals[i] = quant.ExtractSignals(note.AnalystID, note.Text)
		}(i, note)
	}
	wg.Wait()

	return &models.ConsensusReport{
		RunID:       uuid.NewString(),
		Signals:     signals,
		Consensus:   quant.CalculateConsensus(signals),
		GeneratedAt: time.Now(),
	}
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
