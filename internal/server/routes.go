package server

import "net/http"

// registerRoutes wires the REST API endpoints.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Pure analysis: request bodies in, computed results out
	mux.HandleFunc("/api/analysis/indicators", s.handleIndicators)
	mux.HandleFunc("/api/analysis/overlap", s.handleOverlap)
	mux.HandleFunc("/api/analysis/exposure", s.handleExposure)
	mux.HandleFunc("/api/analysis/sectors", s.handleSectors)
	mux.HandleFunc("/api/analysis/extract", s.handleExtract)
	mux.HandleFunc("/api/analysis/consensus", s.handleConsensus)
	mux.HandleFunc("/api/analysis/notes", s.handleNoteUpload)

	// Market data backed by the provider and cache
	mux.HandleFunc("/api/market/candles/", s.handleCandles)
	mux.HandleFunc("/api/market/quote/", s.handleQuote)
	mux.HandleFunc("/api/market/holdings/", s.handleHoldings)
	mux.HandleFunc("/api/market/chart/", s.handleChart)
	mux.HandleFunc("/api/market/consensus/", s.handleMarketConsensus)
}
