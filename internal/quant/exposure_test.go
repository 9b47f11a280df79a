package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

func TestAnalyzeExposureDirectOnly(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "AAPL", Allocation: 30},
		{Symbol: "MSFT", Allocation: 70},
	}

	result := AnalyzeExposure(portfolio, nil)

	require.Len(t, result.Exposures, 2)
	assert.Equal(t, "MSFT", result.Exposures[0].Symbol)
	assert.InDelta(t, 70.0, result.Exposures[0].TotalExposure, 1e-9)
	assert.InDelta(t, 70.0, result.Exposures[0].DirectAllocation, 1e-9)
	assert.Empty(t, result.Exposures[0].FromEtfs)
}

func TestAnalyzeExposureEtfFanOut(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "AAPL", Allocation: 2},
		{Symbol: "VOO", Allocation: 50, IsEtf: true},
	}
	etfData := []models.EtfHoldings{
		{Symbol: "VOO", Holdings: []models.EtfHolding{
			{Symbol: "AAPL", HoldingName: "Apple Inc", HoldingPercent: 0.10},
			{Symbol: "MSFT", HoldingName: "Microsoft Corp", HoldingPercent: 0.08},
		}},
	}

	result := AnalyzeExposure(portfolio, etfData)

	require.Len(t, result.Exposures, 2)

	apple := result.Exposures[0]
	assert.Equal(t, "AAPL", apple.Symbol)
	assert.Equal(t, "Apple Inc", apple.CompanyName)
	assert.InDelta(t, 2.0, apple.DirectAllocation, 1e-9)
	require.Len(t, apple.FromEtfs, 1)
	assert.Equal(t, "VOO", apple.FromEtfs[0].EtfSymbol)
	assert.InDelta(t, 5.0, apple.FromEtfs[0].Contribution, 1e-9) // 50 * 0.10
	assert.InDelta(t, 7.0, apple.TotalExposure, 1e-9)

	msft := result.Exposures[1]
	assert.InDelta(t, 4.0, msft.TotalExposure, 1e-9) // 50 * 0.08
	assert.InDelta(t, 0.0, msft.DirectAllocation, 1e-12)
}

func TestAnalyzeExposureDuplicateDirectEntries(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "AAPL", Allocation: 5},
		{Symbol: "AAPL", Allocation: 3},
	}

	result := AnalyzeExposure(portfolio, nil)

	require.Len(t, result.Exposures, 1)
	assert.InDelta(t, 8.0, result.Exposures[0].DirectAllocation, 1e-9)
}

func TestAnalyzeExposureTotalInvariant(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "AAPL", Allocation: 10},
		{Symbol: "VTI", Allocation: 40, IsEtf: true},
		{Symbol: "VOO", Allocation: 30, IsEtf: true},
	}
	etfData := []models.EtfHoldings{
		{Symbol: "VTI", Holdings: []models.EtfHolding{
			{Symbol: "AAPL", HoldingPercent: 0.07},
			{Symbol: "NVDA", HoldingPercent: 0.05},
		}},
		{Symbol: "VOO", Holdings: []models.EtfHolding{
			{Symbol: "AAPL", HoldingPercent: 0.06},
		}},
	}

	result := AnalyzeExposure(portfolio, etfData)

	var totalSum, directSum float64
	for _, e := range result.Exposures {
		totalSum += e.TotalExposure
		directSum += e.DirectAllocation

		var contributions float64
		for _, c := range e.FromEtfs {
			contributions += c.Contribution
		}
		assert.InDelta(t, e.DirectAllocation+contributions, e.TotalExposure, 1e-9)
	}
	assert.GreaterOrEqual(t, totalSum, directSum)
}

func TestSingleStockConcentrationThreshold(t *testing.T) {
	tests := []struct {
		name       string
		allocation float64
		wantWarn   bool
	}{
		{name: "20% direct fires", allocation: 20, wantWarn: true},
		{name: "10% direct does not", allocation: 10, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portfolio := []models.PortfolioHolding{
				{Symbol: "AAPL", Allocation: tt.allocation},
				{Symbol: "CASH", Allocation: 100 - tt.allocation},
			}
			result := AnalyzeExposure(portfolio, nil)

			var found bool
			for _, w := range result.Warnings {
				if w.Type == models.WarnSingleStockConcentration {
					found = true
				}
			}
			assert.Equal(t, tt.wantWarn, found)
		})
	}
}

func TestTopFiveConcentrationWarning(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "A", Allocation: 9},
		{Symbol: "B", Allocation: 9},
		{Symbol: "C", Allocation: 9},
		{Symbol: "D", Allocation: 9},
		{Symbol: "E", Allocation: 9},
		{Symbol: "F", Allocation: 9},
	}

	result := AnalyzeExposure(portfolio, nil)

	var found bool
	for _, w := range result.Warnings {
		if w.Type == models.WarnTopNConcentration {
			found = true
			assert.Equal(t, models.SeverityMedium, w.Severity)
			assert.Len(t, w.Symbols, 5)
		}
	}
	assert.True(t, found, "top 5 at 45%% with 6 holdings should warn")
}

func TestTopFiveRequiresMoreThanFiveHoldings(t *testing.T) {
	portfolio := []models.PortfolioHolding{
		{Symbol: "A", Allocation: 10},
		{Symbol: "B", Allocation: 10},
		{Symbol: "C", Allocation: 10},
		{Symbol: "D", Allocation: 10},
		{Symbol: "E", Allocation: 10},
	}

	result := AnalyzeExposure(portfolio, nil)

	for _, w := range result.Warnings {
		assert.NotEqual(t, models.WarnTopNConcentration, w.Type)
	}
}

func TestAllocationMismatchWarning(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		wantWarn bool
	}{
		{name: "half allocated", total: 50, wantWarn: true},
		{name: "fully allocated", total: 100, wantWarn: false},
		{name: "within tolerance", total: 99.95, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portfolio := []models.PortfolioHolding{{Symbol: "AAPL", Allocation: tt.total}}
			result := AnalyzeExposure(portfolio, nil)

			var found bool
			for _, w := range result.Warnings {
				if w.Type == models.WarnAllocationMismatch {
					found = true
					assert.Equal(t, models.SeverityLow, w.Severity)
				}
			}
			assert.Equal(t, tt.wantWarn, found)
		})
	}
}

func TestAnalyzeExposureEmptyPortfolio(t *testing.T) {
	result := AnalyzeExposure(nil, nil)
	assert.Empty(t, result.Exposures)
	assert.Empty(t, result.Warnings)
}
