// Package api exposes flyer generation and the learning engine over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"flyer-studio/models"
	"flyer-studio/render"
	"flyer-studio/utils"
)

// FlyerService is the part of the orchestrator the handlers need.
type FlyerService interface {
	GenerateFromJSON(data []byte) (*models.GenerationResult, error)
	LearningStatus() models.LearningStatus
	ExportPatternLibrary() models.PatternLibrarySnapshot
	Styles() []models.DesignSystem
	AnalyzeMarkup(markup string) models.RecordAnalysis
}

// Exporter prints a document to a binary format.
type Exporter interface {
	Export(ctx context.Context, doc *models.GeneratedDocument, format render.Format) ([]byte, error)
}

// Handler serves the flyer endpoints.
type Handler struct {
	svc      FlyerService
	renderer render.Renderer
	exporter Exporter
	logger   *utils.Logger

	exportDir string
}

// NewHandler creates a Handler. exporter may be nil, in which case the
// export endpoint answers 503.
func NewHandler(svc FlyerService, renderer render.Renderer, exporter Exporter, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Handler{svc: svc, renderer: renderer, exporter: exporter, logger: logger}
}

// WithExportDir makes the export endpoint keep a copy of every file it
// serves under dir.
func (h *Handler) WithExportDir(dir string) *Handler {
	h.exportDir = dir
	return h
}

// generate reads the body, runs generation and writes the error response
// itself when generation fails.
func (h *Handler) generate(c *gin.Context) (*models.GenerationResult, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return nil, false
	}

	result, err := h.svc.GenerateFromJSON(body)
	if err != nil {
		var gerr *models.GenerationError
		if errors.As(err, &gerr) && gerr.Kind == models.ErrKindValidation {
			c.JSON(http.StatusBadRequest, gin.H{"error": gerr})
			return nil, false
		}
		h.logger.Error("[api] generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return result, true
}

// GenerateFlyer handles POST /api/v1/flyers.
func (h *Handler) GenerateFlyer(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// RenderFlyer handles POST /api/v1/flyers/render.
func (h *Handler) RenderFlyer(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}

	page, err := h.renderer.Render(result.Document)
	if err != nil {
		h.logger.Error("[api] render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, w := range result.Warnings {
		c.Writer.Header().Add("X-Flyer-Warning", string(w.Kind))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// ExportFlyer handles POST /api/v1/flyers/export?format=pdf|png.
func (h *Handler) ExportFlyer(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export is not configured"})
		return
	}

	format := render.Format(c.DefaultQuery("format", string(render.FormatPDF)))
	var contentType string
	switch format {
	case render.FormatPDF:
		contentType = "application/pdf"
	case render.FormatPNG:
		contentType = "image/png"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be pdf or png"})
		return
	}

	result, ok := h.generate(c)
	if !ok {
		return
	}

	data, err := h.exporter.Export(c.Request.Context(), result.Document, format)
	if err != nil {
		h.logger.Error("[api] export failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if h.exportDir != "" {
		path, err := render.Save(h.exportDir, result.Document, format, data)
		if err != nil {
			h.logger.Warn("[api] could not keep export: %v", err)
		} else {
			c.Header("X-Flyer-Saved", path)
		}
	}
	c.Data(http.StatusOK, contentType, data)
}

// AnalyzeMarkup handles POST /api/v1/analyze. The body is rendered flyer
// HTML or a bare stylesheet.
func (h *Handler) AnalyzeMarkup(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
		return
	}
	c.JSON(http.StatusOK, h.svc.AnalyzeMarkup(string(body)))
}

type styleSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Grid   string `json:"grid"`
	Accent string `json:"accent"`
}

// ListStyles handles GET /api/v1/styles.
func (h *Handler) ListStyles(c *gin.Context) {
	styles := h.svc.Styles()
	out := make([]styleSummary, 0, len(styles))
	for _, ds := range styles {
		out = append(out, styleSummary{ID: ds.ID, Name: ds.Name, Grid: ds.Layout.Grid, Accent: ds.Colors.Accent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, gin.H{"styles": out, "count": len(out)})
}

// LearningStatus handles GET /api/v1/learning/status.
func (h *Handler) LearningStatus(c *gin.Context) {
	st := h.svc.LearningStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":       st,
		"success_rate": st.Totals.SuccessRate(),
	})
}

// LearningPatterns handles GET /api/v1/learning/patterns. An optional
// ?style= narrows the library to one style.
func (h *Handler) LearningPatterns(c *gin.Context) {
	snap := h.svc.ExportPatternLibrary()
	style := c.Query("style")
	if style == "" {
		c.JSON(http.StatusOK, snap)
		return
	}

	patterns, ok := snap.Styles[style]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no patterns for style " + style})
		return
	}
	c.JSON(http.StatusOK, gin.H{"style": style, "patterns": patterns})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
