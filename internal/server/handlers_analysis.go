package server

import (
	"net/http"

	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
	"github.com/bobmcallan/quanta/internal/services/analysis"
)

type bollingerParams struct {
	Period     int     `json:"period"`
	Multiplier float64 `json:"multiplier"`
}

type macdParams struct {
	Fast   int `json:"fast"`
	Slow   int `json:"slow"`
	Signal int `json:"signal"`
}

type indicatorsRequest struct {
	Candles   []models.Candle  `json:"candles"`
	SMA       []int            `json:"sma,omitempty"`
	EMA       []int            `json:"ema,omitempty"`
	Bollinger *bollingerParams `json:"bollinger,omitempty"`
	RSI       *int             `json:"rsi,omitempty"`
	MACD      *macdParams      `json:"macd,omitempty"`
}

type indicatorsResponse struct {
	SMA       map[int][]models.IndicatorPoint `json:"sma,omitempty"`
	EMA       map[int][]models.IndicatorPoint `json:"ema,omitempty"`
	Bollinger *models.BollingerSeries         `json:"bollinger,omitempty"`
	RSI       []models.IndicatorPoint         `json:"rsi,omitempty"`
	MACD      *models.MACDSeries              `json:"macd,omitempty"`
}

// handleIndicators computes the requested indicator series over a
// supplied candle series.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req indicatorsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Candles) == 0 {
		WriteError(w, http.StatusBadRequest, "candles are required")
		return
	}

	resp := indicatorsResponse{}

	if len(req.SMA) > 0 {
		resp.SMA = make(map[int][]models.IndicatorPoint, len(req.SMA))
		for _, period := range req.SMA {
			resp.SMA[period] = quant.SMA(req.Candles, period)
		}
	}
	if len(req.EMA) > 0 {
		resp.EMA = make(map[int][]models.IndicatorPoint, len(req.EMA))
		for _, period := range req.EMA {
			resp.EMA[period] = quant.EMA(req.Candles, period)
		}
	}
	if req.Bollinger != nil {
		bands := quant.BollingerBands(req.Candles, req.Bollinger.Period, req.Bollinger.Multiplier)
		resp.Bollinger = &bands
	}
	if req.RSI != nil {
		resp.RSI = quant.RSI(req.Candles, *req.RSI)
	}
	if req.MACD != nil {
		macd := quant.MACD(req.Candles, req.MACD.Fast, req.MACD.Slow, req.MACD.Signal)
		resp.MACD = &macd
	}

	WriteJSON(w, http.StatusOK, resp)
}

type overlapRequest struct {
	Etfs    []models.EtfHoldings `json:"etfs"`
	Weights map[string]float64   `json:"weights,omitempty"`
}

type overlapResponse struct {
	Overlap  *models.OverlapResult         `json:"overlap,omitempty"`
	Weighted *models.WeightedOverlapResult `json:"weighted,omitempty"`
}

// handleOverlap analyzes pairwise ETF overlap; when portfolio weights
// are supplied the weighted analysis is included as well.
func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req overlapRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Etfs) == 0 {
		WriteError(w, http.StatusBadRequest, "etfs are required")
		return
	}

	resp := overlapResponse{}
	result := quant.AnalyzeOverlap(req.Etfs)
	resp.Overlap = &result

	if req.Weights != nil {
		weighted := quant.AnalyzeWeightedOverlap(req.Etfs, req.Weights)
		resp.Weighted = &weighted
	}

	WriteJSON(w, http.StatusOK, resp)
}

type exposureRequest struct {
	Portfolio []models.PortfolioHolding `json:"portfolio"`
	Etfs      []models.EtfHoldings      `json:"etfs,omitempty"`
}

// handleExposure flattens a mixed stock/ETF portfolio into true
// per-stock exposure.
func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req exposureRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Portfolio) == 0 {
		WriteError(w, http.StatusBadRequest, "portfolio is required")
		return
	}

	WriteJSON(w, http.StatusOK, quant.AnalyzeExposure(req.Portfolio, req.Etfs))
}

type sectorsRequest struct {
	Exposures []models.ExposureBreakdown `json:"exposures"`
	Sectors   map[string]string          `json:"sectors"`
}

// handleSectors groups flattened exposures into sector buckets.
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req sectorsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Exposures) == 0 {
		WriteError(w, http.StatusBadRequest, "exposures are required")
		return
	}

	WriteJSON(w, http.StatusOK, quant.AnalyzeSectors(req.Exposures, req.Sectors))
}

// handleExtract extracts structured signals from one analyst note.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var note models.AnalystNote
	if !DecodeJSON(w, r, &note) {
		return
	}
	if note.AnalystID == "" {
		WriteError(w, http.StatusBadRequest, "analyst_id is required")
		return
	}

	WriteJSON(w, http.StatusOK, quant.ExtractSignals(note.AnalystID, note.Text))
}

type consensusRequest struct {
	Notes []models.AnalystNote `json:"notes"`
}

// handleConsensus runs the two-stage extraction and aggregation over
// supplied analyst notes.
func (s *Server) handleConsensus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req consensusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	for _, note := range req.Notes {
		if note.AnalystID == "" {
			WriteError(w, http.StatusBadRequest, "every note requires an analyst_id")
			return
		}
	}

	WriteJSON(w, http.StatusOK, analysis.BuildReport(req.Notes))
}

const maxNoteUploadBytes = 16 << 20 // 16MB

// handleNoteUpload extracts plain text from an uploaded PDF analyst
// note. The multipart field name is "file".
func (s *Server) handleNoteUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxNoteUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	text, err := s.app.AnalysisService.ExtractNoteText(file, header.Size)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "failed to extract text: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"filename": header.Filename,
		"text":     text,
	})
}
