package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-studio/api"
	"flyer-studio/models"
	"flyer-studio/render"
	"flyer-studio/services"
	"flyer-studio/telemetry"
)

type stubExporter struct {
	err    error
	format render.Format
}

func (s *stubExporter) Export(_ context.Context, doc *models.GeneratedDocument, format render.Format) ([]byte, error) {
	s.format = format
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 " + doc.Metadata.DesignSystemID), nil
}

func setupTestRouter(t *testing.T, exporter api.Exporter) (*gin.Engine, *services.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := services.NewStyleCatalog()
	require.NoError(t, err)
	metrics := telemetry.New()
	engine := services.NewLearningEngine(services.DefaultLearningConfig(), services.DefaultSeeds(catalog, time.Now()), nil, metrics)
	orch := services.NewOrchestrator(catalog, engine, 2, nil, metrics)

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	h := api.NewHandler(orch, renderer, exporter, nil)
	return api.NewRouter(h, metrics, nil), orch
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(t.Context(), method, path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateFlyer_Success(t *testing.T) {
	router, orch := setupTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/v1/flyers",
		`{"style":"premium-luxury","property":{"address":"1 Harbor View","bedrooms":"4"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.GenerationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Document)
	assert.Equal(t, "premium-luxury", result.Document.Metadata.DesignSystemID)

	kinds := make([]models.SectionKind, 0, len(result.Document.Sections))
	for _, s := range result.Document.Sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, models.SectionOrder, kinds)

	orch.Flush()
	assert.Equal(t, 1, orch.LearningStatus().Totals.Succeeded)
}

func TestGenerateFlyer_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"style":`},
		{"wrong type", `{"property": 42}`},
		{"unknown kind", `{"kind":"billboard"}`},
		{"empty body", ``},
	}

	router, orch := setupTestRouter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/flyers", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want %d: %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
			assert.Contains(t, w.Body.String(), `"kind":"validation"`)
		})
	}

	orch.Flush()
	assert.Equal(t, len(tests), orch.LearningStatus().Totals.Failed)
}

func TestRenderFlyer(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/v1/flyers/render", `{"style":"no-such-style"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, string(models.WarnUnknownStyle), w.Header().Get("X-Flyer-Warning"))
	assert.Contains(t, w.Body.String(), "<style>")
	assert.Contains(t, w.Body.String(), `data-style="`+services.DefaultStyleID+`"`)
}

func TestExportFlyer(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil)
		w := do(t, router, http.MethodPost, "/api/v1/flyers/export", `{}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("pdf", func(t *testing.T) {
		exp := &stubExporter{}
		router, _ := setupTestRouter(t, exp)
		w := do(t, router, http.MethodPost, "/api/v1/flyers/export", `{"style":"urban-loft"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, render.FormatPDF, exp.format)
		assert.Contains(t, w.Body.String(), "urban-loft")
	})

	t.Run("saved copy", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		catalog, err := services.NewStyleCatalog()
		require.NoError(t, err)
		orch := services.NewOrchestrator(catalog, nil, 1, nil, nil)
		renderer, err := render.NewHTMLRenderer()
		require.NoError(t, err)

		dir := t.TempDir()
		h := api.NewHandler(orch, renderer, &stubExporter{}, nil).WithExportDir(dir)
		router := api.NewRouter(h, nil, nil)

		w := do(t, router, http.MethodPost, "/api/v1/flyers/export", `{"requestId":"req-42"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, filepath.Join(dir, "req-42.pdf"), w.Header().Get("X-Flyer-Saved"))
		_, err = os.Stat(filepath.Join(dir, "req-42.pdf"))
		assert.NoError(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubExporter{})
		w := do(t, router, http.MethodPost, "/api/v1/flyers/export?format=gif", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("browser failure", func(t *testing.T) {
		router, _ := setupTestRouter(t, &stubExporter{err: errors.New("chrome not found")})
		w := do(t, router, http.MethodPost, "/api/v1/flyers/export?format=png", `{}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAnalyzeMarkup(t *testing.T) {
	router, orch := setupTestRouter(t, nil)
	body := `{"style":"premium-luxury","property":{"address":"1 Harbor View"}}`

	w := do(t, router, http.MethodPost, "/api/v1/flyers", body)
	require.Equal(t, http.StatusOK, w.Code)
	var result models.GenerationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	want := services.AnalyzeDocument(result.Document)

	page := do(t, router, http.MethodPost, "/api/v1/flyers/render", body)
	require.Equal(t, http.StatusOK, page.Code)

	w = do(t, router, http.MethodPost, "/api/v1/analyze", page.Body.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.RecordAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.False(t, got.Design.Degraded)
	assert.Equal(t, want.Layout.Grid, got.Design.Layout.Grid)
	assert.Equal(t, want.Color.Colors, got.Design.Color.Colors)
	assert.NotEmpty(t, got.Patterns[models.CategoryColorUsage])

	w = do(t, router, http.MethodPost, "/api/v1/analyze", "  ")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orch.Flush()
	assert.Equal(t, 2, orch.LearningStatus().Totals.Generated, "analysis is not recorded")
}

func TestListStyles(t *testing.T) {
	router, orch := setupTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/styles", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Styles []struct {
			ID string `json:"id"`
		} `json:"styles"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(orch.Styles()), resp.Count)
	assert.Len(t, resp.Styles, resp.Count)
}

func TestLearningEndpoints(t *testing.T) {
	router, orch := setupTestRouter(t, nil)

	for i := 0; i < 5; i++ {
		w := do(t, router, http.MethodPost, "/api/v1/flyers", `{"style":"luxury-real-estate"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	orch.Flush()

	w := do(t, router, http.MethodGet, "/api/v1/learning/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Status      models.LearningStatus `json:"status"`
		SuccessRate float64               `json:"success_rate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 5, status.Status.Totals.Succeeded)
	assert.Equal(t, 1.0, status.SuccessRate)

	w = do(t, router, http.MethodGet, "/api/v1/learning/patterns?style=luxury-real-estate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#d4af37")

	w = do(t, router, http.MethodGet, "/api/v1/learning/patterns?style=missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/learning/patterns", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap models.PatternLibrarySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.Incorporated)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	do(t, router, http.MethodPost, "/api/v1/flyers", `{"style":"premium-luxury"}`)
	w = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flyer_studio_generations_total")
}
