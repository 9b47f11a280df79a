// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	maxTopHoldings = 25
)

// Client implements the MarketDataClient interface against EODHD
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          float64     `json:"open"`
	High          float64     `json:"high"`
	Low           float64     `json:"low"`
	Close         float64     `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        int64       `json:"volume"`
}

// GetCandles retrieves end-of-day bars, returned in ascending time order.
func (c *Client) GetCandles(ctx context.Context, ticker string, opts ...interfaces.CandleOption) ([]models.Candle, error) {
	params := &interfaces.CandleParams{
		Period: "d",
	}
	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", "a") // ascending, oldest first

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", ticker)

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			c.logger.Warn().Str("ticker", ticker).Str("date", bar.Date).Msg("Skipping bar with unparseable date")
			continue
		}
		candles = append(candles, models.Candle{
			Time:   date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	// Guard ordering and duplicate dates regardless of provider behavior.
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	deduped := candles[:0]
	for i, cd := range candles {
		if i > 0 && cd.Time.Equal(candles[i-1].Time) {
			deduped[len(deduped)-1] = cd
			continue
		}
		deduped = append(deduped, cd)
	}

	return deduped, nil
}

// realTimeResponse represents the API response for live quotes
type realTimeResponse struct {
	Code          string      `json:"code"`
	Timestamp     int64       `json:"timestamp"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangePercent flexFloat64 `json:"change_p"`
	Volume        flexFloat64 `json:"volume"`
}

// GetQuote retrieves a real-time price snapshot for a ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	path := fmt.Sprintf("/real-time/%s", ticker)

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	quote := &models.Quote{
		Ticker:        ticker,
		Price:         float64(resp.Close),
		Change:        float64(resp.Change),
		ChangePercent: float64(resp.ChangePercent),
		Open:          float64(resp.Open),
		High:          float64(resp.High),
		Low:           float64(resp.Low),
		PreviousClose: float64(resp.PreviousClose),
		Volume:        int64(resp.Volume),
		Timestamp:     time.Unix(resp.Timestamp, 0).UTC(),
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Float64("price", quote.Price).
		Msg("Real-time quote")

	return quote, nil
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code     string `json:"Code"`
		Name     string `json:"Name"`
		Type     string `json:"Type"` // "Common Stock", "ETF", etc.
		Sector   string `json:"Sector"`
		Industry string `json:"Industry"`
	} `json:"General"`
	ETFData struct {
		NetExpenseRatio flexFloat64 `json:"Net_Expense_Ratio"`
		Holdings        map[string]struct {
			Name          string      `json:"Name"`
			AssetsPercent flexFloat64 `json:"Assets_%"`
		} `json:"Holdings"`
	} `json:"ETF_Data"`
}

// GetFundamentals retrieves identity, sector, and ETF composition data.
// Holding weights are converted from the provider's 0-100 percentages to
// fractions in [0,1].
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", ticker)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	isETF := resp.General.Type == "ETF" ||
		(resp.General.Sector == "" && resp.General.Industry == "" && resp.ETFData.NetExpenseRatio > 0) ||
		strings.Contains(strings.ToUpper(resp.General.Name), " ETF")

	fundamentals := &models.Fundamentals{
		Ticker:      ticker,
		Name:        resp.General.Name,
		Sector:      resp.General.Sector,
		Industry:    resp.General.Industry,
		IsETF:       isETF,
		LastUpdated: time.Now(),
	}

	if isETF && len(resp.ETFData.Holdings) > 0 {
		holdings := make([]models.EtfHolding, 0, len(resp.ETFData.Holdings))
		for symbol, h := range resp.ETFData.Holdings {
			holdings = append(holdings, models.EtfHolding{
				Symbol:         normalizeSymbol(symbol),
				HoldingName:    h.Name,
				HoldingPercent: float64(h.AssetsPercent) / 100,
			})
		}
		sort.Slice(holdings, func(i, j int) bool {
			if holdings[i].HoldingPercent != holdings[j].HoldingPercent {
				return holdings[i].HoldingPercent > holdings[j].HoldingPercent
			}
			return holdings[i].Symbol < holdings[j].Symbol
		})
		if len(holdings) > maxTopHoldings {
			holdings = holdings[:maxTopHoldings]
		}
		fundamentals.TopHoldings = holdings
	}

	return fundamentals, nil
}

// normalizeSymbol strips the exchange suffix EODHD appends to holding
// keys ("AAPL.US" -> "AAPL").
func normalizeSymbol(symbol string) string {
	if i := strings.Index(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
