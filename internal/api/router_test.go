package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/api"
	"github.com/asheworth/portfolio-analyzer/internal/config"
	"github.com/asheworth/portfolio-analyzer/internal/model"
	"github.com/asheworth/portfolio-analyzer/internal/service"
	"github.com/asheworth/portfolio-analyzer/internal/testutil"
)

// TestNewRouter tests route registration end to end.
//
// WHY: Handlers are unit-tested directly; this catches routes that were
// registered on the wrong path or method after a refactor.
func TestNewRouter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	path := testutil.WriteHoldingsFile(t, model.HoldingsSnapshot{})
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	router := api.NewRouter(
		service.NewSystemService(db),
		testutil.NewTestAnalysisService(t, db, path),
		cfg,
	)

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/api/system/health", http.StatusOK},
		{http.MethodGet, "/api/system/version", http.StatusOK},
		{http.MethodPost, "/api/analysis/", http.StatusOK},
		{http.MethodGet, "/api/analysis/latest", http.StatusOK},
		{http.MethodGet, "/api/analysis/report", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/system/health", http.StatusMethodNotAllowed},
	}

	// Ordered so the analysis run happens before latest/report
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.target, tc.status, w.Code)
		}
	}
}
