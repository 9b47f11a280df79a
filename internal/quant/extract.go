package quant

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/quanta/internal/models"
)

const (
	baseConfidence       = 50.0
	confidenceStep       = 10.0
	neutralConfidenceCap = 60.0
)

// Key levels: a number following "support" or "resistance", optionally
// separated by "at", "around", or "near". Price targets: the first
// number following "upside target" / "target price" / "price target"
// (upside) or "downside target" (downside).
var (
	supportLevelRe    = regexp.MustCompile(`(?i)support\s+(?:(?:at|around|near)\s+)?\$?(\d+(?:\.\d+)?)`)
	resistanceLevelRe = regexp.MustCompile(`(?i)resistance\s+(?:(?:at|around|near)\s+)?\$?(\d+(?:\.\d+)?)`)
	upsideTargetRe    = regexp.MustCompile(`(?i)(?:upside\s+target|target\s+price|price\s+target)\s*(?:of|at|is|:)?\s*\$?(\d+(?:\.\d+)?)`)
	downsideTargetRe  = regexp.MustCompile(`(?i)downside\s+target\s*(?:of|at|is|:)?\s*\$?(\d+(?:\.\d+)?)`)
)

// ExtractSignals classifies one analyst's free text into structured
// signals using the fixed lexicons. Deterministic and total: empty or
// unrecognized text produces a neutral result, never an error.
func ExtractSignals(analystID, text string) models.ExtractedSignals {
	lower := strings.ToLower(text)

	bullish := countOccurrences(lower, bullishKeywords)
	bearish := countOccurrences(lower, bearishKeywords)
	neutral := countOccurrences(lower, neutralKeywords)

	sentiment := classifySentiment(bullish, bearish, neutral)

	confidence := baseConfidence
	confidence += confidenceStep * float64(countOccurrences(lower, highConfidenceKeywords))
	confidence -= confidenceStep * float64(countOccurrences(lower, lowConfidenceKeywords))
	if sentiment == models.SentimentNeutral && confidence > neutralConfidenceCap {
		confidence = neutralConfidenceCap
	}
	confidence = clamp(confidence, 0, 100)

	patterns := []string{}
	for _, p := range patternCatalogue {
		if strings.Contains(lower, p) {
			patterns = append(patterns, p)
		}
	}

	support := extractLevels(text, supportLevelRe)
	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	resistance := extractLevels(text, resistanceLevelRe)
	sort.Float64s(resistance)

	return models.ExtractedSignals{
		AnalystID:  analystID,
		Sentiment:  sentiment,
		Confidence: confidence,
		Patterns:   patterns,
		KeyLevels:  models.KeyLevels{Support: support, Resistance: resistance},
		PriceTargets: models.PriceTargets{
			Upside:   extractFirstTarget(text, upsideTargetRe),
			Downside: extractFirstTarget(text, downsideTargetRe),
		},
	}
}

// classifySentiment applies the per-analyst tie rules: a strict neutral
// majority wins; bullish and bearish counts within 1 of each other with
// both present read as a mixed signal and classify neutral; otherwise
// the strictly larger directional count wins and a dead tie is neutral.
// This rule is deliberately distinct from the consensus-level "mixed"
// rule, which operates across analysts.
func classifySentiment(bullish, bearish, neutral int) models.Sentiment {
	switch {
	case neutral > bullish && neutral > bearish:
		return models.SentimentNeutral
	case bullish > 0 && bearish > 0 && absInt(bullish-bearish) <= 1:
		return models.SentimentNeutral
	case bullish > bearish:
		return models.SentimentBullish
	case bearish > bullish:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func countOccurrences(lower string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		total += strings.Count(lower, kw)
	}
	return total
}

func extractLevels(text string, re *regexp.Regexp) []float64 {
	matches := re.FindAllStringSubmatch(text, -1)
	seen := make(map[float64]bool, len(matches))
	levels := []float64{}
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
	}
	return levels
}

func extractFirstTarget(text string, re *regexp.Regexp) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
