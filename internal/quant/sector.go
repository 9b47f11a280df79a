package quant

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/quanta/internal/models"
)

// UnknownSector is the bucket for symbols with no sector classification.
const UnknownSector = "Unknown/Other"

// Sector-share thresholds as a percentage of total exposure.
const (
	sectorHighThreshold   = 40.0
	sectorMediumThreshold = 25.0
)

// sectorPalette is the closed color palette keyed by sector name.
var sectorPalette = map[string]string{
	"Technology":             "#3b82f6",
	"Healthcare":             "#10b981",
	"Financial Services":     "#f59e0b",
	"Consumer Cyclical":      "#ef4444",
	"Communication Services": "#8b5cf6",
	"Industrials":            "#6366f1",
	"Consumer Defensive":     "#14b8a6",
	"Energy":                 "#f97316",
	"Basic Materials":        "#a16207",
	"Real Estate":            "#ec4899",
	"Utilities":              "#84cc16",
	UnknownSector:            "#9ca3af",
}

const fallbackSectorColor = "#6b7280"

// SectorColor returns the palette color for a sector, or gray for
// sectors outside the palette.
func SectorColor(sector string) string {
	if c, ok := sectorPalette[sector]; ok {
		return c
	}
	return fallbackSectorColor
}

// AnalyzeSectors groups flattened exposure rows by the supplied
// symbol-to-sector map. Symbols with no mapping land in Unknown/Other.
// Sectors are sorted descending by total exposure; TotalCategorized
// counts only exposure that had a known sector.
func AnalyzeSectors(exposures []models.ExposureBreakdown, sectors map[string]string) models.SectorBreakdown {
	type bucket struct {
		total     float64
		companies []string
	}
	buckets := make(map[string]*bucket)
	var totalCategorized float64

	for _, e := range exposures {
		sector, ok := sectors[e.Symbol]
		if !ok || sector == "" {
			sector = UnknownSector
		} else {
			totalCategorized += e.TotalExposure
		}

		b, exists := buckets[sector]
		if !exists {
			b = &bucket{}
			buckets[sector] = b
		}
		b.total += e.TotalExposure
		b.companies = append(b.companies, e.Symbol)
	}

	result := models.SectorBreakdown{
		Sectors:          make([]models.SectorExposure, 0, len(buckets)),
		TotalCategorized: totalCategorized,
		Warnings:         []models.Warning{},
	}

	var grandTotal float64
	for sector, b := range buckets {
		grandTotal += b.total
		result.Sectors = append(result.Sectors, models.SectorExposure{
			Sector:        sector,
			TotalExposure: b.total,
			Companies:     b.companies,
			Color:         SectorColor(sector),
		})
	}
	sort.Slice(result.Sectors, func(i, j int) bool {
		if result.Sectors[i].TotalExposure != result.Sectors[j].TotalExposure {
			return result.Sectors[i].TotalExposure > result.Sectors[j].TotalExposure
		}
		return result.Sectors[i].Sector < result.Sectors[j].Sector
	})

	if grandTotal > 0 {
		for _, s := range result.Sectors {
			if s.Sector == UnknownSector {
				continue
			}
			share := s.TotalExposure / grandTotal * 100
			severity := ""
			switch {
			case share > sectorHighThreshold:
				severity = models.SeverityHigh
			case share > sectorMediumThreshold:
				severity = models.SeverityMedium
			default:
				continue
			}
			result.Warnings = append(result.Warnings, models.Warning{
				Type:     models.WarnSectorConcentration,
				Severity: severity,
				Message: fmt.Sprintf("%s represents %.1f%% of total exposure",
					s.Sector, share),
			})
		}
	}

	return result
}
