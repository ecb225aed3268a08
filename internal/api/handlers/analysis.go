package handlers

import (
	"errors"
	"net/http"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/report"
	"github.com/asheworth/portfolio-analyzer/internal/service"
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Run executes a full analysis and returns the result.
//
// Endpoint: POST /api/analysis
// Response: 200 OK with the complete analysis result
// Error: 409 Conflict when an analysis is already running
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysisService.Run(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisRunning) {
			respondError(w, http.StatusConflict, "analysis already running", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "analysis failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Latest returns the most recent analysis result.
//
// Endpoint: GET /api/analysis/latest
// Error: 404 Not Found when no analysis has completed yet
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysisService.Latest()
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			respondError(w, http.StatusNotFound, "no analysis available", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load analysis", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Report renders the most recent analysis as a markdown report.
//
// Endpoint: GET /api/analysis/report
// Response: 200 OK with text/markdown body
// Error: 404 Not Found when no analysis has completed yet
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysisService.Latest()
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			respondError(w, http.StatusNotFound, "no analysis available", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load analysis", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.NewGenerator(result).Generate()))
}
