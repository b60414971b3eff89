package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/factor"
	"github.com/wonny/alphalens/internal/marketdata"
	"github.com/wonny/alphalens/internal/report"
	"github.com/wonny/alphalens/pkg/logger"
)

const dateLayout = "2006-01-02"

// TearSheetRunner produces tear sheets
type TearSheetRunner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.TearSheet, error)
	Config() *analysisconfig.Config
}

// PriceCache is the price fetch cache exposed for invalidation
type PriceCache interface {
	InvalidateTicker(ctx context.Context, ticker string) (int, error)
	Stats() marketdata.CacheStats
}

// TearSheetHandler handles tear sheet and cache endpoints
// ⭐ SSOT: 티어시트 API 핸들러는 이 구조체에서만
type TearSheetHandler struct {
	runner TearSheetRunner
	cache  PriceCache // nil when caching is disabled
	logger *logger.Logger
}

// NewTearSheetHandler creates a new tear sheet handler
func NewTearSheetHandler(runner TearSheetRunner, cache PriceCache, log *logger.Logger) *TearSheetHandler {
	return &TearSheetHandler{
		runner: runner,
		cache:  cache,
		logger: log,
	}
}

// GetTearSheet runs the analysis for one ticker
// GET /api/tearsheet/{ticker}?from=YYYY-MM-DD&to=YYYY-MM-DD&format=json|text&tail=N
func (h *TearSheetHandler) GetTearSheet(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	query := r.URL.Query()

	req := analysis.Request{Ticker: ticker}
	var err error
	if req.Start, err = parseDate(query.Get("from")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
		return
	}
	if req.End, err = parseDate(query.Get("to")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD")
		return
	}

	sheet, err := h.runner.Run(r.Context(), req)
	if err != nil {
		status, message := errorStatus(err)
		h.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": status,
		}).WithError(err).Warn("Tear sheet request failed")
		respondError(w, status, message)
		return
	}

	if strings.EqualFold(query.Get("format"), report.FormatText) {
		tail := report.DefaultTail
		if v := query.Get("tail"); v != "" {
			if tail, err = strconv.Atoi(v); err != nil || tail < 0 {
				respondError(w, http.StatusBadRequest, "Invalid 'tail', expected a non-negative integer")
				return
			}
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, sheet, report.Options{Tail: tail}); err != nil {
			h.logger.WithError(err).Error("Failed to render tear sheet")
			respondError(w, http.StatusInternalServerError, "Failed to render tear sheet")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	respondJSON(w, http.StatusOK, sheet)
}

// GetConfig returns the analysis configuration with its hash and warnings
// GET /api/config
func (h *TearSheetHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.runner.Config()
	hash, err := analysisconfig.Hash(cfg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash analysis config")
		respondError(w, http.StatusInternalServerError, "Failed to hash analysis config")
		return
	}

	warnings := analysisconfig.Warn(cfg)
	if warnings == nil {
		warnings = []analysisconfig.Warning{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"config":   cfg,
		"hash":     hash,
		"warnings": warnings,
	})
}

// InvalidateCache drops every cached price range of a ticker
// DELETE /api/cache/{ticker}
func (h *TearSheetHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusNotFound, "Price cache is disabled")
		return
	}

	ticker := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	removed, err := h.cache.InvalidateTicker(r.Context(), ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to invalidate cache")
		respondError(w, http.StatusInternalServerError, "Failed to invalidate cache")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"removed": removed,
	})
}

// GetCacheStats returns price cache counters
// GET /api/cache/stats
func (h *TearSheetHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusNotFound, "Price cache is disabled")
		return
	}
	respondJSON(w, http.StatusOK, h.cache.Stats())
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// errorStatus maps run failures to an HTTP status and user-facing message
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrNoPriceData):
		return http.StatusNotFound, "No price data found for ticker"
	case errors.Is(err, analysis.ErrNoFactor):
		return http.StatusUnprocessableEntity, "Could not generate factor data"
	case errors.Is(err, analysis.ErrTickerRequired):
		return http.StatusBadRequest, "Ticker is required"
	case errors.Is(err, analysis.ErrInvalidRange):
		return http.StatusBadRequest, "'from' must not be after 'to'"
	case errors.Is(err, factor.ErrMissingPriceColumn):
		return http.StatusBadGateway, "Price data has no usable close column"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Data source timed out"
	default:
		return http.StatusInternalServerError, "Failed to generate tear sheet"
	}
}
