package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/model"
	"github.com/asheworth/portfolio-analyzer/internal/testutil"
)

func setupAnalysisHandler(t *testing.T) (*AnalysisHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	path := testutil.WriteHoldingsFile(t, model.HoldingsSnapshot{})
	svc := testutil.NewTestAnalysisService(t, db, path)
	return NewAnalysisHandler(svc), db
}

// TestAnalysisHandler_Run tests the analysis trigger endpoint.
//
// WHY: This is the engine's main entry point. It must return the full
// result as JSON and map domain errors onto the right status codes.
func TestAnalysisHandler_Run(t *testing.T) {
	t.Run("runs an analysis and returns the result", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)

		testutil.NewTransaction().WithDate("2024-01-01").Build(t, db)
		testutil.NewTransaction().Sell().WithDate("2024-06-01").Build(t, db)

		req := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)
		w := httptest.NewRecorder()

		handler.Run(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.AnalysisResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.ID == "" {
			t.Error("Expected a run ID in the response")
		}
		if result.TotalTransactions != 2 {
			t.Errorf("Expected 2 transactions, got %d", result.TotalTransactions)
		}
	})

	t.Run("works on an empty ledger", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)
		w := httptest.NewRecorder()

		handler.Run(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

// TestAnalysisHandler_Latest tests retrieval of the stored result.
func TestAnalysisHandler_Latest(t *testing.T) {
	t.Run("returns 404 before any run", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/analysis/latest", nil)
		w := httptest.NewRecorder()

		handler.Latest(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("returns the stored result after a run", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)

		testutil.NewTransaction().Build(t, db)

		runReq := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)
		handler.Run(httptest.NewRecorder(), runReq)

		req := httptest.NewRequest(http.MethodGet, "/api/analysis/latest", nil)
		w := httptest.NewRecorder()

		handler.Latest(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.AnalysisResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.TotalTransactions != 1 {
			t.Errorf("Expected 1 transaction, got %d", result.TotalTransactions)
		}
	})
}

// TestAnalysisHandler_Report tests the markdown report endpoint.
func TestAnalysisHandler_Report(t *testing.T) {
	t.Run("returns 404 before any run", func(t *testing.T) {
		handler, _ := setupAnalysisHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/analysis/report", nil)
		w := httptest.NewRecorder()

		handler.Report(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("renders markdown after a run", func(t *testing.T) {
		handler, db := setupAnalysisHandler(t)

		testutil.NewTransaction().Build(t, db)

		runReq := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)
		handler.Run(httptest.NewRecorder(), runReq)

		req := httptest.NewRequest(http.MethodGet, "/api/analysis/report", nil)
		w := httptest.NewRecorder()

		handler.Report(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
			t.Errorf("Expected markdown content type, got %q", ct)
		}
		if !strings.Contains(w.Body.String(), "# Portfolio Transaction Analysis") {
			t.Error("Expected the report title in the body")
		}
	})
}
