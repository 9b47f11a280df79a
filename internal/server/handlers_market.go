package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/quanta/internal/storage/surrealdb"
)

// handleCandles returns cached or freshly fetched market data for a
// ticker.
func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.ToUpper(PathParam(r, "/api/market/candles/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	data, err := s.app.AnalysisService.GetMarketData(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load market data: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, data)
}

// handleQuote returns a real-time price snapshot for a ticker.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.ToUpper(PathParam(r, "/api/market/quote/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	quote, err := s.app.AnalysisService.GetQuote(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to fetch quote: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// handleHoldings returns ETF holdings for one or more comma-separated
// tickers.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	raw := PathParam(r, "/api/market/holdings/", "")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "at least one ticker is required")
		return
	}

	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		WriteError(w, http.StatusBadRequest, "at least one ticker is required")
		return
	}

	holdings, err := s.app.AnalysisService.GetEtfHoldings(r.Context(), tickers)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load holdings: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, holdings)
}

// handleChart renders a price chart PNG for a ticker. The moving
// average period defaults to 20 and can be overridden with ?period=.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.ToUpper(PathParam(r, "/api/market/chart/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	period := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			WriteError(w, http.StatusBadRequest, "period must be a positive integer")
			return
		}
		period = p
	}

	png, err := s.app.AnalysisService.RenderChart(r.Context(), ticker, period)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to render chart: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleMarketConsensus serves the stored consensus report for a
// ticker on GET and triggers a fresh consensus run on POST.
func (s *Server) handleMarketConsensus(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(PathParam(r, "/api/market/consensus/", ""))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := s.app.Store.GetConsensusReport(r.Context(), ticker)
		if err != nil {
			if errors.Is(err, surrealdb.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "no consensus report for "+ticker)
				return
			}
			WriteError(w, http.StatusInternalServerError, "failed to load consensus report: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, report)
	case http.MethodPost:
		report, err := s.app.AnalysisService.RunConsensus(r.Context(), ticker)
		if err != nil {
			WriteError(w, http.StatusBadGateway, "consensus run failed: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, report)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
