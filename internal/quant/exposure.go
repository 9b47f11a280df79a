package quant

import (
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/quanta/internal/models"
)

// Exposure engine thresholds, in portfolio percentage points.
const (
	singleStockThreshold   = 15.0
	topFiveThreshold       = 40.0
	allocationTolerancePct = 0.1
)

// AnalyzeExposure flattens a portfolio into per-company exposure: direct
// allocations plus ETF-derived contributions. etfData supplies the
// resolved holdings for each ETF entry; entries without resolved
// holdings contribute nothing. Rows are sorted descending by total
// exposure.
func AnalyzeExposure(portfolio []models.PortfolioHolding, etfData []models.EtfHoldings) models.ExposureResult {
	holdingsByEtf := make(map[string][]models.EtfHolding, len(etfData))
	for _, etf := range etfData {
		holdingsByEtf[etf.Symbol] = etf.Holdings
	}

	rows := make(map[string]*models.ExposureBreakdown)
	row := func(symbol string) *models.ExposureBreakdown {
		r, ok := rows[symbol]
		if !ok {
			r = &models.ExposureBreakdown{
				Symbol:      symbol,
				CompanyName: symbol,
				FromEtfs:    []models.EtfContribution{},
			}
			rows[symbol] = r
		}
		return r
	}

	// Direct positions first. Duplicate entries of the same symbol
	// accumulate even though the UI prevents them.
	for _, h := range portfolio {
		if h.IsEtf {
			continue
		}
		row(h.Symbol).DirectAllocation += h.Allocation
	}

	// Fan each ETF position out across its underlying holdings.
	for _, h := range portfolio {
		if !h.IsEtf {
			continue
		}
		for _, u := range holdingsByEtf[h.Symbol] {
			r := row(u.Symbol)
			if r.CompanyName == r.Symbol && u.HoldingName != "" {
				r.CompanyName = u.HoldingName
			}
			r.FromEtfs = append(r.FromEtfs, models.EtfContribution{
				EtfSymbol:    h.Symbol,
				Contribution: h.Allocation * u.HoldingPercent,
			})
		}
	}

	exposures := make([]models.ExposureBreakdown, 0, len(rows))
	for _, r := range rows {
		r.TotalExposure = r.DirectAllocation
		for _, c := range r.FromEtfs {
			r.TotalExposure += c.Contribution
		}
		exposures = append(exposures, *r)
	}
	sort.Slice(exposures, func(i, j int) bool {
		if exposures[i].TotalExposure != exposures[j].TotalExposure {
			return exposures[i].TotalExposure > exposures[j].TotalExposure
		}
		return exposures[i].Symbol < exposures[j].Symbol
	})

	return models.ExposureResult{
		Exposures: exposures,
		Warnings:  exposureWarnings(portfolio, exposures),
	}
}

func exposureWarnings(portfolio []models.PortfolioHolding, exposures []models.ExposureBreakdown) []models.Warning {
	warnings := []models.Warning{}

	for _, e := range exposures {
		if e.TotalExposure > singleStockThreshold {
			warnings = append(warnings, models.Warning{
				Type:     models.WarnSingleStockConcentration,
				Severity: models.SeverityHigh,
				Message: fmt.Sprintf("%s makes up %.1f%% of the portfolio (direct and via ETFs), above the %.0f%% threshold",
					e.Symbol, e.TotalExposure, singleStockThreshold),
				Symbols: []string{e.Symbol},
			})
		}
	}

	if len(exposures) > 5 {
		var topFive float64
		symbols := make([]string, 0, 5)
		for _, e := range exposures[:5] {
			topFive += e.TotalExposure
			symbols = append(symbols, e.Symbol)
		}
		if topFive > topFiveThreshold {
			warnings = append(warnings, models.Warning{
				Type:     models.WarnTopNConcentration,
				Severity: models.SeverityMedium,
				Message: fmt.Sprintf("Top 5 positions account for %.1f%% of the portfolio, above the %.0f%% threshold",
					topFive, topFiveThreshold),
				Symbols: symbols,
			})
		}
	}

	var allocated float64
	for _, h := range portfolio {
		allocated += h.Allocation
	}
	if len(portfolio) > 0 && math.Abs(allocated-100) > allocationTolerancePct {
		warnings = append(warnings, models.Warning{
			Type:     models.WarnAllocationMismatch,
			Severity: models.SeverityLow,
			Message: fmt.Sprintf("Portfolio allocations sum to %.1f%%, not 100%% (cash positions are fine, this is informational)",
				allocated),
		})
	}

	return warnings
}
