// Package models defines data structures for Quanta
package models

// PortfolioHolding is one user-entered portfolio position.
// Allocation is a percentage of the portfolio (0-100); allocations need
// not sum to 100 since cash positions are legitimate.
type PortfolioHolding struct {
	Symbol     string  `json:"symbol"`
	Allocation float64 `json:"allocation"`
	IsEtf      bool    `json:"is_etf"`
}

// Warning severity levels.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Warning types emitted by the analysis engines.
const (
	WarnSingleStockConcentration = "single_stock_concentration"
	WarnTopNConcentration        = "top_n_concentration"
	WarnAllocationMismatch       = "allocation_mismatch"
	WarnSectorConcentration      = "sector_concentration"
)

// Warning is a caller-visible advisory. Warnings are data, not errors:
// they are always returned alongside normal results, never thrown.
type Warning struct {
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Symbols  []string `json:"symbols,omitempty"`
}

// EtfContribution is the exposure a single ETF contributes to an
// underlying company, in portfolio percentage points.
type EtfContribution struct {
	EtfSymbol    string  `json:"etf_symbol"`
	Contribution float64 `json:"contribution"`
}

// ExposureBreakdown is the flattened exposure to one underlying company:
// direct allocation plus every ETF-derived contribution.
// Invariant: TotalExposure = DirectAllocation + sum of contributions.
type ExposureBreakdown struct {
	Symbol           string            `json:"symbol"`
	CompanyName      string            `json:"company_name"`
	DirectAllocation float64           `json:"direct_allocation"`
	FromEtfs         []EtfContribution `json:"from_etfs"`
	TotalExposure    float64           `json:"total_exposure"`
}

// ExposureResult is the portfolio x-ray output.
type ExposureResult struct {
	Exposures []ExposureBreakdown `json:"exposures"`
	Warnings  []Warning           `json:"warnings"`
}

// SectorExposure aggregates exposure for one sector.
type SectorExposure struct {
	Sector        string   `json:"sector"`
	TotalExposure float64  `json:"total_exposure"`
	Companies     []string `json:"companies"`
	Color         string   `json:"color"`
}

// SectorBreakdown groups portfolio exposure by sector.
// TotalCategorized is the exposure carried by symbols with a known
// sector; callers use it to report the share lacking sector data.
type SectorBreakdown struct {
	Sectors          []SectorExposure `json:"sectors"`
	TotalCategorized float64          `json:"total_categorized"`
	Warnings         []Warning        `json:"warnings"`
}

// PairwiseOverlap is the overlap between one unordered pair of ETFs.
// Overlap is a fraction: the sum over shared symbols of the minimum
// weight either fund assigns.
type PairwiseOverlap struct {
	EtfA        string  `json:"etf_a"`
	EtfB        string  `json:"etf_b"`
	Overlap     float64 `json:"overlap"`
	SharedCount int     `json:"shared_count"`
}

// HoldingOverlap is one row of the cross-ETF holding table.
type HoldingOverlap struct {
	Symbol          string             `json:"symbol"`
	Name            string             `json:"name"`
	EtfCount        int                `json:"etf_count"`
	AverageExposure float64            `json:"average_exposure"`
	Weights         map[string]float64 `json:"weights"`
}

// OverlapResult is the unweighted ETF overlap analysis.
type OverlapResult struct {
	Pairwise    []PairwiseOverlap `json:"pairwise"`
	Overlapping []HoldingOverlap  `json:"overlapping"`
	AllHoldings []HoldingOverlap  `json:"all_holdings"`
	Warnings    []Warning         `json:"warnings"`
}

// WeightedPairOverlap carries a pair overlap scaled by the portfolio
// weight of each ETF. EffectiveOverlap is in whole-portfolio
// percentage points.
type WeightedPairOverlap struct {
	EtfA             string  `json:"etf_a"`
	EtfB             string  `json:"etf_b"`
	Overlap          float64 `json:"overlap"`
	EffectiveOverlap float64 `json:"effective_overlap"`
}

// WeightedHoldingExposure is the portfolio-level exposure to one
// holding through all weighted ETFs.
type WeightedHoldingExposure struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	EffectiveExposure float64 `json:"effective_exposure"`
}

// WeightedOverlapResult is the weighted ETF overlap analysis.
type WeightedOverlapResult struct {
	Pairs             []WeightedPairOverlap     `json:"pairs"`
	Holdings          []WeightedHoldingExposure `json:"holdings"`
	NormalizedWeights map[string]float64        `json:"normalized_weights"`
}
