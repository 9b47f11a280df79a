package quant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/quanta/internal/models"
)

// Overlap engine thresholds.
const (
	universalExposureThreshold = 0.05 // avg weight above which a fund-wide holding warns
	cumulativeOverlapThreshold = 0.25 // cumulative universal exposure triggering the top-N warning
)

// PairOverlap computes the overlap between two ETFs: the sum over
// shared holding symbols of the minimum weight either fund assigns,
// expressed as a fraction. Symmetric in its arguments.
func PairOverlap(a, b models.EtfHoldings) models.PairwiseOverlap {
	weightsA := make(map[string]float64, len(a.Holdings))
	for _, h := range a.Holdings {
		weightsA[h.Symbol] = h.HoldingPercent
	}

	var overlap float64
	shared := 0
	for _, h := range b.Holdings {
		wa, ok := weightsA[h.Symbol]
		if !ok {
			continue
		}
		shared++
		if wa < h.HoldingPercent {
			overlap += wa
		} else {
			overlap += h.HoldingPercent
		}
	}

	return models.PairwiseOverlap{EtfA: a.Symbol, EtfB: b.Symbol, Overlap: overlap, SharedCount: shared}
}

// AnalyzeOverlap computes pairwise overlaps for every unordered pair of
// the supplied ETFs, the cross-ETF holding table, and diversification
// warnings. Insufficient input yields empty slices, never an error.
func AnalyzeOverlap(etfs []models.EtfHoldings) models.OverlapResult {
	result := models.OverlapResult{
		Pairwise:    []models.PairwiseOverlap{},
		Overlapping: []models.HoldingOverlap{},
		AllHoldings: []models.HoldingOverlap{},
		Warnings:    []models.Warning{},
	}

	for i := 0; i < len(etfs); i++ {
		for j := i + 1; j < len(etfs); j++ {
			result.Pairwise = append(result.Pairwise, PairOverlap(etfs[i], etfs[j]))
		}
	}

	rows := buildHoldingTable(etfs)
	result.AllHoldings = rows
	for _, row := range rows {
		if row.EtfCount >= 2 {
			result.Overlapping = append(result.Overlapping, row)
		}
	}

	result.Warnings = overlapWarnings(rows, len(etfs))
	return result
}

// buildHoldingTable aggregates every holding symbol across the supplied
// ETFs into one row per symbol, sorted descending by average exposure.
// Map insertion order is irrelevant; the sort defines output order.
func buildHoldingTable(etfs []models.EtfHoldings) []models.HoldingOverlap {
	bySymbol := make(map[string]*models.HoldingOverlap)
	for _, etf := range etfs {
		for _, h := range etf.Holdings {
			row, ok := bySymbol[h.Symbol]
			if !ok {
				row = &models.HoldingOverlap{
					Symbol:  h.Symbol,
					Name:    h.HoldingName,
					Weights: make(map[string]float64),
				}
				bySymbol[h.Symbol] = row
			}
			if row.Name == "" {
				row.Name = h.HoldingName
			}
			row.Weights[etf.Symbol] = h.HoldingPercent
		}
	}

	rows := make([]models.HoldingOverlap, 0, len(bySymbol))
	for _, row := range bySymbol {
		var sum float64
		for _, w := range row.Weights {
			sum += w
		}
		row.EtfCount = len(row.Weights)
		row.AverageExposure = sum / float64(row.EtfCount)
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AverageExposure != rows[j].AverageExposure {
			return rows[i].AverageExposure > rows[j].AverageExposure
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	return rows
}

// overlapWarnings emits diversification warnings over the holding
// table. A holding held by every supplied ETF with average exposure
// above 5% warns individually; the minimal descending-exposure prefix
// of fund-wide holdings whose cumulative exposure crosses 25% warns
// once, then the walk stops.
func overlapWarnings(rows []models.HoldingOverlap, etfCount int) []models.Warning {
	warnings := []models.Warning{}
	if etfCount == 0 {
		return warnings
	}

	universal := make([]models.HoldingOverlap, 0, len(rows))
	for _, row := range rows {
		if row.EtfCount == etfCount {
			universal = append(universal, row)
		}
	}

	for _, row := range universal {
		if row.AverageExposure > universalExposureThreshold {
			warnings = append(warnings, models.Warning{
				Type:     models.WarnSingleStockConcentration,
				Severity: models.SeverityHigh,
				Message: fmt.Sprintf("%s is held by all %d funds at an average weight of %.1f%%",
					row.Symbol, etfCount, row.AverageExposure*100),
				Symbols: []string{row.Symbol},
			})
		}
	}

	var cumulative float64
	prefix := []string{}
	for _, row := range universal {
		cumulative += row.AverageExposure
		prefix = append(prefix, row.Symbol)
		if cumulative > cumulativeOverlapThreshold {
			warnings = append(warnings, models.Warning{
				Type:     models.WarnTopNConcentration,
				Severity: models.SeverityMedium,
				Message: fmt.Sprintf("Top %d shared holdings (%s) account for %.1f%% average exposure",
					len(prefix), strings.Join(prefix, ", "), cumulative*100),
				Symbols: append([]string(nil), prefix...),
			})
			break
		}
	}

	return warnings
}

// AnalyzeWeightedOverlap scales pairwise overlaps and per-holding
// exposure by each ETF's weight within the caller's portfolio. Supplied
// weights are normalized to sum to 100 when the total is positive; a
// zero total falls back to the raw values unnormalized. That fallback
// is a defined but unlikely input state.
func AnalyzeWeightedOverlap(etfs []models.EtfHoldings, weights map[string]float64) models.WeightedOverlapResult {
	result := models.WeightedOverlapResult{
		Pairs:             []models.WeightedPairOverlap{},
		Holdings:          []models.WeightedHoldingExposure{},
		NormalizedWeights: map[string]float64{},
	}

	var total float64
	for _, etf := range etfs {
		total += weights[etf.Symbol]
	}
	for _, etf := range etfs {
		w := weights[etf.Symbol]
		if total > 0 {
			w = w / total * 100
		}
		result.NormalizedWeights[etf.Symbol] = w
	}

	for i := 0; i < len(etfs); i++ {
		for j := i + 1; j < len(etfs); j++ {
			pair := PairOverlap(etfs[i], etfs[j])
			wa := result.NormalizedWeights[pair.EtfA]
			wb := result.NormalizedWeights[pair.EtfB]
			result.Pairs = append(result.Pairs, models.WeightedPairOverlap{
				EtfA:             pair.EtfA,
				EtfB:             pair.EtfB,
				Overlap:          pair.Overlap,
				EffectiveOverlap: pair.Overlap * (wa / 100) * (wb / 100) * 100,
			})
		}
	}

	type entry struct {
		name     string
		exposure float64
	}
	bySymbol := make(map[string]*entry)
	for _, etf := range etfs {
		etfWeight := result.NormalizedWeights[etf.Symbol]
		for _, h := range etf.Holdings {
			e, ok := bySymbol[h.Symbol]
			if !ok {
				e = &entry{name: h.HoldingName}
				bySymbol[h.Symbol] = e
			}
			e.exposure += h.HoldingPercent * etfWeight / 100
		}
	}

	for symbol, e := range bySymbol {
		result.Holdings = append(result.Holdings, models.WeightedHoldingExposure{
			Symbol:            symbol,
			Name:              e.name,
			EffectiveExposure: e.exposure,
		})
	}
	sort.Slice(result.Holdings, func(i, j int) bool {
		if result.Holdings[i].EffectiveExposure != result.Holdings[j].EffectiveExposure {
			return result.Holdings[i].EffectiveExposure > result.Holdings[j].EffectiveExposure
		}
		return result.Holdings[i].Symbol < result.Holdings[j].Symbol
	})

	return result
}
