// Package models defines data structures for Quanta
package models

import (
	"time"
)

// IndicatorPoint is one indicator output sample, aligned to the candle
// that produced it.
type IndicatorPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// BollingerSeries holds the three parallel Bollinger Band series.
type BollingerSeries struct {
	Upper  []IndicatorPoint `json:"upper"`
	Middle []IndicatorPoint `json:"middle"`
	Lower  []IndicatorPoint `json:"lower"`
}

// MACDSeries holds the MACD line, signal line, and histogram.
// The histogram is only populated where the signal line is valid.
type MACDSeries struct {
	MACD      []IndicatorPoint `json:"macd"`
	Signal    []IndicatorPoint `json:"signal"`
	Histogram []IndicatorPoint `json:"histogram"`
}

// Sentiment is a directional classification of analyst text.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
	SentimentMixed   Sentiment = "mixed" // consensus-level only
)

// KeyLevels holds price levels extracted from analyst text.
// Support is sorted descending, resistance ascending.
type KeyLevels struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

// PriceTargets holds the first upside/downside targets found in text.
type PriceTargets struct {
	Upside   *float64 `json:"upside,omitempty"`
	Downside *float64 `json:"downside,omitempty"`
}

// ExtractedSignals is the structured output of one analyst's free text.
type ExtractedSignals struct {
	AnalystID    string       `json:"analyst_id"`
	Sentiment    Sentiment    `json:"sentiment"`
	Confidence   float64      `json:"confidence"`
	Patterns     []string     `json:"patterns"`
	KeyLevels    KeyLevels    `json:"key_levels"`
	PriceTargets PriceTargets `json:"price_targets"`
}

// SentimentCounts tallies per-analyst sentiments.
type SentimentCounts struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
}

// PatternMention is a chart pattern named by two or more analysts.
type PatternMention struct {
	Pattern  string   `json:"pattern"`
	Count    int      `json:"count"`
	Analysts []string `json:"analysts"`
}

// ConsensusResult aggregates extracted signals across analysts.
type ConsensusResult struct {
	SentimentCounts     SentimentCounts  `json:"sentiment_counts"`
	OverallSentiment    Sentiment        `json:"overall_sentiment"`
	AgreementPercentage float64          `json:"agreement_percentage"`
	CommonPatterns      []PatternMention `json:"common_patterns"`
	KeyAgreements       []string         `json:"key_agreements"`
	KeyDisagreements    []string         `json:"key_disagreements"`
	ConfidenceScore     float64          `json:"confidence_score"`
}

// AnalystNote is one block of analyst commentary supplied for extraction.
type AnalystNote struct {
	AnalystID string `json:"analyst_id"`
	Text      string `json:"text"`
}

// ConsensusReport is the full output of a multi-analyst consensus run.
type ConsensusReport struct {
	RunID       string             `json:"run_id"`
	Ticker      string             `json:"ticker,omitempty"`
	Signals     []ExtractedSignals `json:"signals"`
	Consensus   ConsensusResult    `json:"consensus"`
	GeneratedAt time.Time          `json:"generated_at"`
}
