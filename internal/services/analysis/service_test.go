package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
)

type stubClient struct {
	candles      []models.Candle
	fundamentals *models.Fundamentals
	quote        *models.Quote
	err          error
	candleCalls  int
}

func (c *stubClient) GetCandles(ctx context.Context, ticker string, opts ...interfaces.CandleOption) ([]models.Candle, error) {
	c.candleCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.candles, nil
}

func (c *stubClient) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.fundamentals, nil
}

func (c *stubClient) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.quote, nil
}

type stubCommentary struct {
	notes map[string]string
}

func (c *stubCommentary) GenerateNote(ctx context.Context, analystID, ticker string, data *models.MarketData) (string, error) {
	text, ok := c.notes[analystID]
	if !ok {
		return "", errors.New("unknown analyst")
	}
	return text, nil
}

type stubStore struct {
	market  map[string]*models.MarketData
	reports map[string]*models.ConsensusReport
	kv      map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{
		market:  make(map[string]*models.MarketData),
		reports: make(map[string]*models.ConsensusReport),
		kv:      make(map[string]string),
	}
}

func (s *stubStore) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	data, ok := s.market[ticker]
	if !ok {
		return nil, errors.New("record not found")
	}
	return data, nil
}

func (s *stubStore) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	s.market[data.Ticker] = data
	return nil
}

func (s *stubStore) DeleteMarketData(ctx context.Context, ticker string) error {
	delete(s.market, ticker)
	return nil
}

func (s *stubStore) SaveConsensusReport(ctx context.Context, report *models.ConsensusReport) error {
	s.reports[report.Ticker] = report
	return nil
}

func (s *stubStore) GetConsensusReport(ctx context.Context, ticker string) (*models.ConsensusReport, error) {
	report, ok := s.reports[ticker]
	if !ok {
		return nil, errors.New("record not found")
	}
	return report, nil
}

func (s *stubStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	val, ok := s.kv[key]
	if !ok {
		return "", errors.New("record not found")
	}
	return val, nil
}

func (s *stubStore) SetSystemKV(ctx context.Context, key, value string) error {
	s.kv[key] = value
	return nil
}

func (s *stubStore) Close() error { return nil }

func testCandles(n int) []models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		price := 100 + float64(i)
		out[i] = models.Candle{
			Time:  base.AddDate(0, 0, i),
			Open:  price,
			High:  price + 1,
			Low:   price - 1,
			Close: price,
		}
	}
	return out
}

func newTestService(client *stubClient, commentary *stubCommentary, store *stubStore, analysts ...string) *Service {
	cfg := common.NewDefaultConfig()
	if len(analysts) > 0 {
		cfg.Analysts = analysts
	}
	return NewService(client, commentary, store, common.NewSilentLogger(), cfg)
}

func TestGetMarketDataFetchesAndCaches(t *testing.T) {
	client := &stubClient{
		candles:      testCandles(30),
		fundamentals: &models.Fundamentals{Ticker: "AAPL", Sector: "Technology"},
	}
	store := newStubStore()
	svc := newTestService(client, nil, store)

	data, err := svc.GetMarketData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, data.Candles, 30)
	assert.Equal(t, 1, client.candleCalls)

	// Cached copy serves the second call.
	_, err = svc.GetMarketData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, client.candleCalls)

	cached, ok := store.market["AAPL"]
	require.True(t, ok)
	assert.Equal(t, "Technology", cached.Fundamentals.Sector)
}

func TestGetMarketDataRefreshesStaleCache(t *testing.T) {
	client := &stubClient{candles: testCandles(10)}
	store := newStubStore()
	store.market["AAPL"] = &models.MarketData{
		Ticker:      "AAPL",
		Candles:     testCandles(5),
		LastUpdated: time.Now().Add(-48 * time.Hour),
	}
	svc := newTestService(client, nil, store)

	data, err := svc.GetMarketData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, client.candleCalls)
	assert.Len(t, data.Candles, 10)
}

func TestGetMarketDataFallsBackToStaleCache(t *testing.T) {
	client := &stubClient{err: errors.New("provider down")}
	store := newStubStore()
	store.market["AAPL"] = &models.MarketData{
		Ticker:      "AAPL",
		Candles:     testCandles(5),
		LastUpdated: time.Now().Add(-48 * time.Hour),
	}
	svc := newTestService(client, nil, store)

	data, err := svc.GetMarketData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, data.Candles, 5)
}

func TestGetMarketDataProviderErrorNoCache(t *testing.T) {
	client := &stubClient{err: errors.New("provider down")}
	svc := newTestService(client, nil, newStubStore())

	_, err := svc.GetMarketData(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetEtfHoldingsSkipsNonEtf(t *testing.T) {
	store := newStubStore()
	store.market["VOO"] = &models.MarketData{
		Ticker: "VOO",
		Fundamentals: &models.Fundamentals{
			Ticker: "VOO",
			IsETF:  true,
			TopHoldings: []models.EtfHolding{
				{Symbol: "AAPL", HoldingPercent: 0.07},
			},
		},
		LastUpdated: time.Now(),
	}
	store.market["AAPL"] = &models.MarketData{
		Ticker:       "AAPL",
		Fundamentals: &models.Fundamentals{Ticker: "AAPL", Sector: "Technology"},
		LastUpdated:  time.Now(),
	}
	svc := newTestService(&stubClient{}, nil, store)

	holdings, err := svc.GetEtfHoldings(context.Background(), []string{"VOO", "AAPL"})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "VOO", holdings[0].Symbol)
	require.Len(t, holdings[0].Holdings, 1)
}

func TestGetQuote(t *testing.T) {
	client := &stubClient{quote: &models.Quote{Ticker: "AAPL", Price: 198.5}}
	svc := newTestService(client, nil, newStubStore())

	quote, err := svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 198.5, quote.Price)
}

func TestGetQuoteNoProvider(t *testing.T) {
	svc := NewService(nil, nil, newStubStore(), common.NewSilentLogger(), common.NewDefaultConfig())

	_, err := svc.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestRunConsensus(t *testing.T) {
	client := &stubClient{candles: testCandles(60)}
	commentary := &stubCommentary{notes: map[string]string{
		"momentum":  "Strong bullish breakout with a clear uptrend. Resistance at 120.",
		"value":     "Undervalued here; accumulate on any rally.",
		"technical": "Bearish breakdown risk below support at 95.",
	}}
	store := newStubStore()
	svc := newTestService(client, commentary, store, "momentum", "value", "technical")

	report, err := svc.RunConsensus(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "AAPL", report.Ticker)
	require.Len(t, report.Signals, 3)
	// Signal order follows analyst order.
	assert.Equal(t, "momentum", report.Signals[0].AnalystID)
	assert.Equal(t, "value", report.Signals[1].AnalystID)
	assert.Equal(t, "technical", report.Signals[2].AnalystID)

	assert.Equal(t, models.SentimentBullish, report.Signals[0].Sentiment)
	assert.Equal(t, models.SentimentBullish, report.Signals[1].Sentiment)
	assert.Equal(t, models.SentimentBearish, report.Signals[2].Sentiment)

	// Persisted for later retrieval.
	saved, err := store.GetConsensusReport(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, saved.RunID)
}

func TestRunConsensusCommentaryError(t *testing.T) {
	client := &stubClient{candles: testCandles(60)}
	commentary := &stubCommentary{notes: map[string]string{}}
	svc := newTestService(client, commentary, newStubStore(), "momentum")

	_, err := svc.RunConsensus(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestBuildReportOrdering(t *testing.T) {
	notes := []models.AnalystNote{
		{AnalystID: "a1", Text: "bullish breakout rally"},
		{AnalystID: "a2", Text: "bearish sell correction"},
		{AnalystID: "a3", Text: "sideways consolidation hold"},
		{AnalystID: "a4", Text: ""},
		{AnalystID: "a5", Text: "strong bullish uptrend with higher highs"},
	}

	report := BuildReport(notes)

	require.Len(t, report.Signals, len(notes))
	for i, note := range notes {
		assert.Equal(t, note.AnalystID, report.Signals[i].AnalystID)
	}
	assert.Equal(t, 2, report.Consensus.SentimentCounts.Bullish)
	assert.Equal(t, 1, report.Consensus.SentimentCounts.Bearish)
	assert.Equal(t, 2, report.Consensus.SentimentCounts.Neutral)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.GeneratedAt.IsZero())
}
