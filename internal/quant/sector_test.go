package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

func exposureRow(symbol string, total float64) models.ExposureBreakdown {
	return models.ExposureBreakdown{Symbol: symbol, TotalExposure: total}
}

func TestAnalyzeSectorsGrouping(t *testing.T) {
	exposures := []models.ExposureBreakdown{
		exposureRow("AAPL", 30),
		exposureRow("MSFT", 20),
		exposureRow("JNJ", 10),
		exposureRow("ZZZZ", 5),
	}
	sectors := map[string]string{
		"AAPL": "Technology",
		"MSFT": "Technology",
		"JNJ":  "Healthcare",
	}

	result := AnalyzeSectors(exposures, sectors)

	require.Len(t, result.Sectors, 3)
	assert.Equal(t, "Technology", result.Sectors[0].Sector)
	assert.InDelta(t, 50.0, result.Sectors[0].TotalExposure, 1e-9)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, result.Sectors[0].Companies)
	assert.Equal(t, "Healthcare", result.Sectors[1].Sector)
	assert.Equal(t, UnknownSector, result.Sectors[2].Sector)
	assert.InDelta(t, 5.0, result.Sectors[2].TotalExposure, 1e-9)

	// Only mapped symbols count toward the categorized total.
	assert.InDelta(t, 60.0, result.TotalCategorized, 1e-9)
}

func TestAnalyzeSectorsEmptySectorMapsToUnknown(t *testing.T) {
	exposures := []models.ExposureBreakdown{exposureRow("AAPL", 10)}
	result := AnalyzeSectors(exposures, map[string]string{"AAPL": ""})

	require.Len(t, result.Sectors, 1)
	assert.Equal(t, UnknownSector, result.Sectors[0].Sector)
	assert.InDelta(t, 0.0, result.TotalCategorized, 1e-12)
}

func TestSectorConcentrationWarnings(t *testing.T) {
	exposures := []models.ExposureBreakdown{
		exposureRow("AAPL", 70),
		exposureRow("JNJ", 30),
	}
	sectors := map[string]string{"AAPL": "Technology", "JNJ": "Healthcare"}

	result := AnalyzeSectors(exposures, sectors)

	require.Len(t, result.Warnings, 2)
	// Technology at 70% of total is high, Healthcare at 30% is medium.
	assert.Equal(t, models.WarnSectorConcentration, result.Warnings[0].Type)
	assert.Equal(t, models.SeverityHigh, result.Warnings[0].Severity)
	assert.Contains(t, result.Warnings[0].Message, "Technology")
	assert.Equal(t, models.SeverityMedium, result.Warnings[1].Severity)
	assert.Contains(t, result.Warnings[1].Message, "Healthcare")
}

func TestSectorWarningThresholdsAreStrict(t *testing.T) {
	// Shares land exactly on the 40% and 25% boundaries; neither fires.
	exposures := []models.ExposureBreakdown{
		exposureRow("A", 40),
		exposureRow("B", 25),
		exposureRow("C", 35),
	}
	sectors := map[string]string{"A": "Technology", "B": "Healthcare", "C": "Energy"}

	result := AnalyzeSectors(exposures, sectors)

	for _, w := range result.Warnings {
		assert.NotContains(t, w.Message, "Technology represents 40.0%")
		assert.NotContains(t, w.Message, "Healthcare")
	}
	// Energy at exactly 35% is medium.
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "Energy")
	assert.Equal(t, models.SeverityMedium, result.Warnings[0].Severity)
}

func TestSectorWarningsSkipUnknown(t *testing.T) {
	exposures := []models.ExposureBreakdown{
		exposureRow("ZZZZ", 80),
		exposureRow("AAPL", 20),
	}
	sectors := map[string]string{"AAPL": "Technology"}

	result := AnalyzeSectors(exposures, sectors)

	// Unknown/Other dominates but never warns.
	assert.Empty(t, result.Warnings)
}

func TestSectorColor(t *testing.T) {
	assert.Equal(t, "#3b82f6", SectorColor("Technology"))
	assert.Equal(t, "#9ca3af", SectorColor(UnknownSector))
	assert.Equal(t, "#6b7280", SectorColor("Cryptocurrency"))
}

func TestAnalyzeSectorsAssignsColors(t *testing.T) {
	exposures := []models.ExposureBreakdown{
		exposureRow("AAPL", 50),
		exposureRow("ZZZZ", 50),
	}
	result := AnalyzeSectors(exposures, map[string]string{"AAPL": "Technology"})

	for _, s := range result.Sectors {
		assert.Equal(t, SectorColor(s.Sector), s.Color)
	}
}

func TestAnalyzeSectorsEmpty(t *testing.T) {
	result := AnalyzeSectors(nil, nil)
	assert.Empty(t, result.Sectors)
	assert.Empty(t, result.Warnings)
	assert.InDelta(t, 0.0, result.TotalCategorized, 1e-12)
}
