// Package models defines data structures for Quanta
package models

import (
	"time"
)

// Candle represents a single OHLCV price sample for a time bucket.
// Series are ordered ascending by time with no duplicate times.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// EtfHolding represents a single position within an ETF.
// HoldingPercent is a fraction in [0,1]; holdings are not required to sum
// to 1 across a fund (small positions may be omitted by the provider).
type EtfHolding struct {
	Symbol         string  `json:"symbol"`
	HoldingName    string  `json:"holding_name"`
	HoldingPercent float64 `json:"holding_percent"`
}

// EtfHoldings holds the resolved top holdings for one ETF.
type EtfHoldings struct {
	Symbol   string       `json:"symbol"`
	Holdings []EtfHolding `json:"holdings"`
}

// Quote is a real-time price snapshot for a ticker.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

// Fundamentals contains the slice of fundamental data the analysis
// surfaces need: identity, sector classification, and ETF composition.
type Fundamentals struct {
	Ticker      string       `json:"ticker"`
	Name        string       `json:"name"`
	Sector      string       `json:"sector"`
	Industry    string       `json:"industry"`
	IsETF       bool         `json:"is_etf"`
	TopHoldings []EtfHolding `json:"top_holdings,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
}

// MarketData is the cached snapshot for a ticker. Caching happens at the
// boundary only; the analysis engines operate on plain value inputs.
type MarketData struct {
	Ticker       string        `json:"ticker"`
	Candles      []Candle      `json:"candles"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	LastUpdated  time.Time     `json:"last_updated"`
}
