package quant

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bobmcallan/quanta/internal/models"
)

// Consensus aggregation constants.
const (
	majorityThreshold     = 0.6  // directional call needs 60% of analysts
	fallbackThreshold     = 0.5  // else a simple majority still carries
	levelProximityPct     = 0.02 // two levels within 2% count as agreement
	patternBonusLarge     = 10.0
	patternBonusSmall     = 5.0
	levelAgreementBonus   = 10.0
	contradictionPenalty  = 20.0
	highConvictionCutoff  = 70.0
	maxAgreementPatterns  = 3
	maxLonePatternCallout = 2
)

// CalculateConsensus aggregates extracted signals across analysts into
// a consensus view. Handles any input size including empty: an empty
// list returns the zeroed neutral default rather than an error.
func CalculateConsensus(signals []models.ExtractedSignals) models.ConsensusResult {
	result := models.ConsensusResult{
		OverallSentiment: models.SentimentNeutral,
		CommonPatterns:   []models.PatternMention{},
		KeyAgreements:    []string{},
		KeyDisagreements: []string{},
	}

	total := len(signals)
	if total == 0 {
		return result
	}

	counts := models.SentimentCounts{}
	for _, s := range signals {
		switch s.Sentiment {
		case models.SentimentBullish:
			counts.Bullish++
		case models.SentimentBearish:
			counts.Bearish++
		default:
			counts.Neutral++
		}
	}
	result.SentimentCounts = counts

	result.OverallSentiment = overallSentiment(counts, total)
	result.AgreementPercentage = agreementPercentage(counts, total)

	mentions := patternMentions(signals)
	for _, m := range mentions {
		if m.Count >= 2 {
			result.CommonPatterns = append(result.CommonPatterns, m)
		}
	}
	sort.SliceStable(result.CommonPatterns, func(i, j int) bool {
		return result.CommonPatterns[i].Count > result.CommonPatterns[j].Count
	})

	result.KeyAgreements = keyAgreements(result, counts, total)
	result.KeyDisagreements = keyDisagreements(signals, counts, mentions)
	result.ConfidenceScore = confidenceScore(signals, result)

	return result
}

// overallSentiment applies the consensus-level rules in order: a strict
// neutral plurality reads neutral; bullish and bearish within 1 of each
// other with both present reads mixed; otherwise the leading direction
// carries at a 60% majority, falls back to a 50% simple majority, and
// reads neutral below that. Note the mixed rule here is distinct from
// the per-analyst neutral tie-break in classifySentiment.
func overallSentiment(c models.SentimentCounts, total int) models.Sentiment {
	if c.Neutral > c.Bullish && c.Neutral > c.Bearish {
		return models.SentimentNeutral
	}
	if c.Bullish > 0 && c.Bearish > 0 && absInt(c.Bullish-c.Bearish) <= 1 {
		return models.SentimentMixed
	}

	direction := models.SentimentBullish
	count := c.Bullish
	if c.Bearish > c.Bullish {
		direction = models.SentimentBearish
		count = c.Bearish
	}
	if count == 0 {
		return models.SentimentNeutral
	}

	ratio := float64(count) / float64(total)
	if ratio >= majorityThreshold {
		return direction
	}
	if ratio >= fallbackThreshold {
		return direction
	}
	return models.SentimentNeutral
}

// agreementPercentage maps the leading sentiment's share of analysts
// through fixed bands: unanimity is 100; [0.8,1) and [0.6,0.8) map
// through directly; [0.5,0.6) is remapped onto [40,60); below 0.5 is
// compressed onto [30,40). The breakpoints are load-bearing.
func agreementPercentage(c models.SentimentCounts, total int) float64 {
	maxCount := c.Bullish
	if c.Bearish > maxCount {
		maxCount = c.Bearish
	}
	if c.Neutral > maxCount {
		maxCount = c.Neutral
	}

	r := float64(maxCount) / float64(total)
	switch {
	case maxCount == total:
		return 100
	case r >= 0.8:
		return 80 + (r-0.8)*100
	case r >= 0.6:
		return r * 100
	case r >= 0.5:
		return 40 + (r-0.5)*200
	default:
		return 30 + r*20
	}
}

// patternMentions tallies who mentioned which pattern, in catalogue
// order so output is deterministic regardless of input map ordering.
func patternMentions(signals []models.ExtractedSignals) []models.PatternMention {
	byPattern := make(map[string][]string)
	for _, s := range signals {
		for _, p := range s.Patterns {
			byPattern[p] = append(byPattern[p], s.AnalystID)
		}
	}

	mentions := []models.PatternMention{}
	for _, p := range patternCatalogue {
		analysts, ok := byPattern[p]
		if !ok {
			continue
		}
		mentions = append(mentions, models.PatternMention{
			Pattern:  p,
			Count:    len(analysts),
			Analysts: analysts,
		})
	}
	return mentions
}

func keyAgreements(result models.ConsensusResult, c models.SentimentCounts, total int) []string {
	agreements := []string{}

	if result.OverallSentiment != models.SentimentMixed {
		count := c.Neutral
		switch result.OverallSentiment {
		case models.SentimentBullish:
			count = c.Bullish
		case models.SentimentBearish:
			count = c.Bearish
		}
		if count > 0 {
			agreements = append(agreements, fmt.Sprintf("%d of %d analysts are %s",
				count, total, result.OverallSentiment))
		}
	}

	for i, cp := range result.CommonPatterns {
		if i >= maxAgreementPatterns {
			break
		}
		agreements = append(agreements, fmt.Sprintf("%s identified by %s",
			cp.Pattern, strings.Join(cp.Analysts, ", ")))
	}

	return agreements
}

func keyDisagreements(signals []models.ExtractedSignals, c models.SentimentCounts, mentions []models.PatternMention) []string {
	disagreements := []string{}

	if c.Bullish > 0 && c.Bearish > 0 {
		var bullIDs, bearIDs []string
		for _, s := range signals {
			switch s.Sentiment {
			case models.SentimentBullish:
				bullIDs = append(bullIDs, s.AnalystID)
			case models.SentimentBearish:
				bearIDs = append(bearIDs, s.AnalystID)
			}
		}
		disagreements = append(disagreements, fmt.Sprintf("Sentiment is split: %s bullish vs %s bearish",
			strings.Join(bullIDs, ", "), strings.Join(bearIDs, ", ")))
	}

	lone := 0
	for _, m := range mentions {
		if m.Count != 1 {
			continue
		}
		disagreements = append(disagreements, fmt.Sprintf("Only %s mentions %s", m.Analysts[0], m.Pattern))
		lone++
		if lone >= maxLonePatternCallout {
			break
		}
	}

	return disagreements
}

// confidenceScore starts at the agreement percentage and adjusts for
// shared patterns, clustered price levels, and direct high-conviction
// contradictions, clamped to [0,100].
func confidenceScore(signals []models.ExtractedSignals, result models.ConsensusResult) float64 {
	score := result.AgreementPercentage

	switch {
	case len(result.CommonPatterns) >= 3:
		score += patternBonusLarge
	case len(result.CommonPatterns) == 2:
		score += patternBonusSmall
	}

	var supports, resistances []float64
	for _, s := range signals {
		supports = append(supports, s.KeyLevels.Support...)
		resistances = append(resistances, s.KeyLevels.Resistance...)
	}
	if levelsCluster(supports) || levelsCluster(resistances) {
		score += levelAgreementBonus
	}

	var convincedBull, convincedBear bool
	for _, s := range signals {
		if s.Confidence > highConvictionCutoff {
			switch s.Sentiment {
			case models.SentimentBullish:
				convincedBull = true
			case models.SentimentBearish:
				convincedBear = true
			}
		}
	}
	if convincedBull && convincedBear {
		score -= contradictionPenalty
	}

	return clamp(score, 0, 100)
}

// levelsCluster reports whether any two levels sit within 2% of each
// other, relative to the larger of the pair.
func levelsCluster(levels []float64) bool {
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			larger := math.Max(math.Abs(levels[i]), math.Abs(levels[j]))
			if larger == 0 {
				continue
			}
			if math.Abs(levels[i]-levels[j]) <= levelProximityPct*larger {
				return true
			}
		}
	}
	return false
}
