package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/quanta/internal/common"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig returns a redacted view of the running configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": cfg.Environment,
		"analysts":    cfg.Analysts,
		"server": map[string]interface{}{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		},
		"analysis": map[string]interface{}{
			"candle_lookback_days": cfg.Analysis.CandleLookbackDays,
			"cache_ttl":            cfg.Analysis.GetCacheTTL().String(),
		},
		"clients": map[string]interface{}{
			"eodhd": map[string]interface{}{
				"base_url":    cfg.Clients.EODHD.BaseURL,
				"rate_limit":  cfg.Clients.EODHD.RateLimit,
				"api_key_set": cfg.Clients.EODHD.APIKey != "",
				"timeout":     cfg.Clients.EODHD.GetTimeout().String(),
			},
			"gemini": map[string]interface{}{
				"model":       cfg.Clients.Gemini.Model,
				"api_key_set": cfg.Clients.Gemini.APIKey != "",
			},
		},
	})
}
